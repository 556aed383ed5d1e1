package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"careerforge/internal/database"
	"careerforge/internal/page"
)

func newPublicRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewPublicHandler(db, newTestRedis(t), nil, nil, "https://careers.example.com")
	router := gin.New()
	router.GET("/:companySlug/careers", h.CareersPage)
	return router
}

func publishPage(t *testing.T, db *gorm.DB, companyID uint, components []page.Component, branding page.Branding) {
	t.Helper()
	componentsJSON, err := json.Marshal(components)
	if err != nil {
		t.Fatalf("marshal components: %v", err)
	}
	brandingJSON, err := json.Marshal(branding)
	if err != nil {
		t.Fatalf("marshal branding: %v", err)
	}
	now := time.Now().UTC()
	row := database.CareerPage{
		CompanyID:           companyID,
		Components:          datatypes.JSON(componentsJSON),
		DraftBranding:       datatypes.JSON(brandingJSON),
		PublishedComponents: datatypes.JSON(componentsJSON),
		PublishedBranding:   datatypes.JSON(brandingJSON),
		IsPublished:         true,
		PublishedAt:         &now,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed career page: %v", err)
	}
}

func TestCareersPage_UnknownSlug(t *testing.T) {
	db := newTestDB(t)
	router := newPublicRouter(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nobody/careers", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "noindex") {
		t.Fatal("404 page must carry a noindex robots tag")
	}
	if strings.Contains(body, "gorm") || strings.Contains(body, "sql") {
		t.Fatal("error page must not leak internals")
	}
}

func TestCareersPage_UnpublishedIsHidden(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	router := newPublicRouter(t, db)

	componentsJSON, _ := json.Marshal([]page.Component{{ID: "a", Kind: page.KindAbout, Order: 0}})
	row := database.CareerPage{
		CompanyID:  company.ID,
		Components: datatypes.JSON(componentsJSON),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed career page: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/acme/careers", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft-only page must 404, got %d", w.Code)
	}
}

func TestCareersPage_RendersPublishedSnapshot(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	router := newPublicRouter(t, db)

	publishPage(t, db, company.ID, []page.Component{
		{ID: "banner-1", Kind: page.KindBanner, Order: 0, Config: page.Config{"text": "Join the Acme team"}},
		{ID: "jobs-1", Kind: page.KindJobs, Order: 1},
	}, page.Branding{PrimaryColor: "#123456"})

	posted := time.Now().UTC().Add(-48 * time.Hour)
	active := database.Job{
		CompanyID: company.ID, Title: "Platform Engineer", Slug: "platform-engineer",
		WorkPolicy: "Remote", EmploymentType: "Full time", ExperienceLevel: "Senior",
		JobType: "Permanent", Status: "active", PostedDate: &posted,
	}
	draft := database.Job{
		CompanyID: company.ID, Title: "Secret Role", Slug: "secret-role",
		WorkPolicy: "On-site", EmploymentType: "Full time", ExperienceLevel: "Mid",
		JobType: "Permanent", Status: "draft",
	}
	if err := db.Create(&active).Error; err != nil {
		t.Fatalf("seed active job: %v", err)
	}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("seed draft job: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/acme/careers", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if got := w.Header().Get("X-Robots-Tag"); got != "index, follow" {
		t.Fatalf("unexpected X-Robots-Tag %q", got)
	}

	body := w.Body.String()
	for _, want := range []string{
		"Acme - Careers",
		"Join the Acme team",
		"Platform Engineer",
		"JobPosting",
		"https://careers.example.com/acme/careers",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, "Secret Role") {
		t.Fatal("draft jobs must not appear on the public page")
	}
}
