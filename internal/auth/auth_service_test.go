package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func newTestAuthService(t *testing.T, accessTTL, refreshTTL time.Duration) *AuthService {
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

	service, err := NewAuthService(privatePEM, publicPEM, accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func TestTokenPairRoundTrip(t *testing.T) {
	service := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)

	pair, err := service.GenerateTokenPair(42, 7)
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	access, err := service.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if access.UserID != 42 || access.CompanyID != 7 {
		t.Fatalf("unexpected claims %+v", access)
	}
	if access.TokenType != "access" {
		t.Fatalf("expected access type, got %q", access.TokenType)
	}
	if access.ID != "" {
		t.Fatal("access token must not carry a jti")
	}

	refresh, err := service.ValidateToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if refresh.TokenType != "refresh" {
		t.Fatalf("expected refresh type, got %q", refresh.TokenType)
	}
	if refresh.ID == "" {
		t.Fatal("refresh token must carry a jti for revocation")
	}
}

func TestValidateToken_RejectsForeignKey(t *testing.T) {
	issuer := newTestAuthService(t, time.Minute, time.Hour)
	verifier := newTestAuthService(t, time.Minute, time.Hour)

	pair, err := issuer.GenerateTokenPair(1, 1)
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := verifier.ValidateToken(pair.AccessToken); err == nil {
		t.Fatal("token signed by another key must fail validation")
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	service := newTestAuthService(t, -time.Minute, time.Hour)

	pair, err := service.GenerateTokenPair(1, 1)
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := service.ValidateToken(pair.AccessToken); err == nil {
		t.Fatal("expired token must fail validation")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Fatal("valid password must verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password must not verify")
	}
}
