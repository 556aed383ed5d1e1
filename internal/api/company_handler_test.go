package api

import (
	"net/http"
	"testing"

	"careerforge/internal/page"
)

func TestUpdateBranding_MergesFields(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCompanyHandler(db, nil, nil, "")

	body := map[string]string{"primaryColor": "ff0000"}
	w := performJSON(t, h.UpdateBranding, http.MethodPatch, "/v1/companies/branding", body, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Branding page.Branding `json:"branding"`
	}
	decodeBody(t, w, &resp)
	if resp.Branding.PrimaryColor != "#FF0000" {
		t.Fatalf("expected normalized #FF0000, got %q", resp.Branding.PrimaryColor)
	}
	// 未提交的字段保持原值。
	if resp.Branding.SecondaryColor != page.DefaultSecondaryColor {
		t.Fatalf("unexpected secondary %q", resp.Branding.SecondaryColor)
	}
}

func TestUpdateBranding_RejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCompanyHandler(db, nil, nil, "")

	w := performJSON(t, h.UpdateBranding, http.MethodPatch, "/v1/companies/branding", map[string]string{"primaryColor": "#12345"}, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid color must 400, got %d", w.Code)
	}

	w = performJSON(t, h.UpdateBranding, http.MethodPatch, "/v1/companies/branding", map[string]string{"accentColor": "#123456"}, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field must 400, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCompanyHandler(db, nil, nil, "")

	w := performJSON(t, h.GetProfile, http.MethodGet, "/v1/companies/me", nil, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Name     string        `json:"name"`
		Slug     string        `json:"slug"`
		Branding page.Branding `json:"branding"`
	}
	decodeBody(t, w, &resp)
	if resp.Name != "Acme" || resp.Slug != "acme" {
		t.Fatalf("unexpected profile %+v", resp)
	}
	if resp.Branding != page.DefaultBranding() {
		t.Fatalf("unexpected branding %+v", resp.Branding)
	}
}
