package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"careerforge/internal/auth"
	"careerforge/internal/database"
	"careerforge/internal/page"
)

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	service, err := auth.NewAuthService(privatePEM, publicPEM, 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func newTestAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	h := NewAuthHandler(db, newTestAuthService(t), newTestRedis(t), nil, 100, 100, time.Minute, "")
	return h, db
}

func TestRegister_CreatesCompanyAndUser(t *testing.T) {
	h, db := newTestAuthHandler(t)

	body := map[string]string{
		"company_name": "Acme Robotics",
		"email":        "Founder@Acme.example",
		"password":     "super-secret-pass",
	}
	w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		CompanySlug string `json:"company_slug"`
	}
	decodeBody(t, w, &resp)
	if resp.CompanySlug != "acme-robotics" {
		t.Fatalf("unexpected slug %q", resp.CompanySlug)
	}

	var company database.Company
	if err := db.Where("slug = ?", "acme-robotics").First(&company).Error; err != nil {
		t.Fatalf("load company: %v", err)
	}
	branding := decodeBranding(company.Branding)
	if branding != page.DefaultBranding() {
		t.Fatalf("new company must start with default branding, got %+v", branding)
	}

	var user database.User
	if err := db.Where("company_id = ?", company.ID).First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Email != "founder@acme.example" {
		t.Fatalf("email must be lowercased, got %q", user.Email)
	}
	if user.PasswordHash == "super-secret-pass" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	body := map[string]string{
		"company_name": "Acme",
		"email":        "dup@acme.example",
		"password":     "super-secret-pass",
	}
	if w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	body["company_name"] = "Other Co"
	w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestRegister_CompanyNameCollisionGetsSuffixedSlug(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	first := map[string]string{"company_name": "Acme", "email": "a@acme.example", "password": "super-secret-pass"}
	second := map[string]string{"company_name": "Acme", "email": "b@acme.example", "password": "super-secret-pass"}
	if w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", first, 0); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", second, 0)
	if w.Code != http.StatusCreated {
		t.Fatalf("second register: %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		CompanySlug string `json:"company_slug"`
	}
	decodeBody(t, w, &resp)
	if resp.CompanySlug != "acme-1" {
		t.Fatalf("expected suffixed slug acme-1, got %q", resp.CompanySlug)
	}
}

func TestLogin(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	register := map[string]string{
		"company_name": "Acme",
		"email":        "login@acme.example",
		"password":     "super-secret-pass",
	}
	if w := performJSON(t, h.Register, http.MethodPost, "/v1/auth/register", register, 0); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	w := performJSON(t, h.Login, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    "Login@Acme.example",
		"password": "super-secret-pass",
	}, 0)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp tokenResponse
	decodeBody(t, w, &resp)
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected token response %+v", resp)
	}

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, refreshTokenCookieName+"=") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("expected HttpOnly refresh cookie, got %q", cookie)
	}

	w = performJSON(t, h.Login, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    "login@acme.example",
		"password": "wrong-password",
	}, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password must 401, got %d", w.Code)
	}
}
