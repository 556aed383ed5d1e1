package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careerforge/internal/database"
	"careerforge/internal/page"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"career_pages", "jobs", "users", "companies"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return db
}

// newTestRedis 返回指向不存在地址的客户端：缓存/队列失效被
// 处理器容忍，测试只关心数据库语义。
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
}

func seedCompany(t *testing.T, db *gorm.DB, name, slug string) database.Company {
	t.Helper()
	branding, err := json.Marshal(page.DefaultBranding())
	if err != nil {
		t.Fatalf("marshal branding: %v", err)
	}
	company := database.Company{Name: name, Slug: slug, Branding: datatypes.JSON(branding)}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, target string, body any, companyID uint) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))
	c.Set("companyID", companyID)

	handler(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestGetDraft_EmptyWithoutRow(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	w := performJSON(t, h.GetDraft, http.MethodGet, "/v1/career-pages", nil, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp careerPageResponse
	decodeBody(t, w, &resp)
	if len(resp.Components) != 0 {
		t.Fatalf("expected empty components, got %d", len(resp.Components))
	}
	if resp.Branding.PrimaryColor != page.DefaultPrimaryColor {
		t.Fatalf("expected company branding fallback, got %+v", resp.Branding)
	}
	if resp.IsPublished {
		t.Fatal("fresh page must not be published")
	}

	// 惰性空文档不落库。
	var count int64
	if err := db.Model(&database.CareerPage{}).Where("company_id = ?", company.ID).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no persisted row, got %d", count)
	}
}

func TestSaveDraft_NormalizesOrder(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	body := saveDraftRequest{
		Components: []page.Component{
			{Kind: page.KindFooter, Order: 9},
			{Kind: page.KindAbout, Order: 2, Config: page.Config{"heading": "About us"}},
		},
	}
	w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", body, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp careerPageResponse
	decodeBody(t, w, &resp)
	if len(resp.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(resp.Components))
	}
	if resp.Components[0].Kind != page.KindAbout || resp.Components[0].Order != 0 {
		t.Fatalf("expected about first with order 0, got %+v", resp.Components[0])
	}
	if resp.Components[1].Kind != page.KindFooter || resp.Components[1].Order != 1 {
		t.Fatalf("expected footer second with order 1, got %+v", resp.Components[1])
	}
	for _, comp := range resp.Components {
		if comp.ID == "" {
			t.Fatal("component must get an id assigned")
		}
	}

	var row database.CareerPage
	if err := db.Where("company_id = ?", company.ID).First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.IsPublished {
		t.Fatal("saving a draft must not publish")
	}
}

func TestSaveDraft_RejectsUnknownKind(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	body := map[string]any{
		"components": []map[string]any{{"type": "carousel", "order": 0}},
	}
	w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", body, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSaveDraft_RejectsInvalidBrandingColor(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	body := map[string]any{
		"components": []map[string]any{},
		"branding":   map[string]string{"primaryColor": "not-a-color"},
	}
	w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", body, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPublish_WithoutDocument(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	w := performJSON(t, h.Publish, http.MethodPost, "/v1/career-pages/publish", nil, company.ID)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestPublish_PromotesDraft(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	draft := saveDraftRequest{
		Components: []page.Component{
			{Kind: page.KindBanner, Order: 0, Config: page.Config{"text": "We're hiring"}},
		},
		Branding: page.Branding{PrimaryColor: "#123456"},
	}
	if w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", draft, company.ID); w.Code != http.StatusOK {
		t.Fatalf("save draft: %d body=%s", w.Code, w.Body.String())
	}

	w := performJSON(t, h.Publish, http.MethodPost, "/v1/career-pages/publish", nil, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp publishResponse
	decodeBody(t, w, &resp)
	if !resp.IsPublished || resp.PublishedAt == nil {
		t.Fatalf("expected published response, got %+v", resp)
	}
	if resp.PublicURL != "http://localhost:8080/acme/careers" {
		t.Fatalf("unexpected public url %q", resp.PublicURL)
	}
	if len(resp.Components) != 1 || resp.Components[0].Kind != page.KindBanner {
		t.Fatalf("expected banner snapshot, got %+v", resp.Components)
	}

	// 草稿品牌色随发布同步到公司。
	var reloaded database.Company
	if err := db.First(&reloaded, company.ID).Error; err != nil {
		t.Fatalf("reload company: %v", err)
	}
	var companyBranding page.Branding
	if err := json.Unmarshal(reloaded.Branding, &companyBranding); err != nil {
		t.Fatalf("decode company branding: %v", err)
	}
	if companyBranding.PrimaryColor != "#123456" {
		t.Fatalf("expected company branding updated, got %+v", companyBranding)
	}
}

func TestPublish_DraftEditsDoNotLeak(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	first := saveDraftRequest{
		Components: []page.Component{{Kind: page.KindAbout, Order: 0, Config: page.Config{"heading": "v1"}}},
	}
	if w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", first, company.ID); w.Code != http.StatusOK {
		t.Fatalf("save draft: %d", w.Code)
	}
	if w := performJSON(t, h.Publish, http.MethodPost, "/v1/career-pages/publish", nil, company.ID); w.Code != http.StatusOK {
		t.Fatalf("publish: %d", w.Code)
	}

	second := saveDraftRequest{
		Components: []page.Component{{Kind: page.KindAbout, Order: 0, Config: page.Config{"heading": "v2"}}},
	}
	if w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", second, company.ID); w.Code != http.StatusOK {
		t.Fatalf("save draft again: %d", w.Code)
	}

	var row database.CareerPage
	if err := db.Where("company_id = ?", company.ID).First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	published := decodeComponents(row.PublishedComponents)
	if len(published) != 1 {
		t.Fatalf("expected 1 published component, got %d", len(published))
	}
	heading, _ := published[0].Config["heading"].(string)
	if heading != "v1" {
		t.Fatalf("published snapshot must keep v1, got %q", heading)
	}
	if !row.IsPublished {
		t.Fatal("re-saving a draft must keep the page published")
	}
}

func TestPreview_RejectsBadParams(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	w := performJSON(t, h.Preview, http.MethodGet, "/v1/career-pages/preview?mode=live", nil, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mode, got %d", w.Code)
	}
	w = performJSON(t, h.Preview, http.MethodGet, "/v1/career-pages/preview?view=tablet", nil, company.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for view, got %d", w.Code)
	}
}

func TestPreview_ReturnsDraftTree(t *testing.T) {
	db := newTestDB(t)
	company := seedCompany(t, db, "Acme", "acme")
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	draft := saveDraftRequest{
		Components: []page.Component{
			{Kind: page.KindAbout, Order: 0, Config: page.Config{"heading": "Life at Acme"}},
		},
	}
	if w := performJSON(t, h.SaveDraft, http.MethodPut, "/v1/career-pages", draft, company.ID); w.Code != http.StatusOK {
		t.Fatalf("save draft: %d", w.Code)
	}

	w := performJSON(t, h.Preview, http.MethodGet, "/v1/career-pages/preview?mode=draft&view=mobile", nil, company.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Mode string          `json:"mode"`
		View string          `json:"view"`
		Tree json.RawMessage `json:"tree"`
	}
	decodeBody(t, w, &resp)
	if resp.Mode != "draft" || resp.View != "mobile" {
		t.Fatalf("unexpected mode/view %q/%q", resp.Mode, resp.View)
	}
	if !bytes.Contains(resp.Tree, []byte("Life at Acme")) {
		t.Fatalf("tree missing draft content: %s", resp.Tree)
	}
}

func TestPalette_ListsAllKinds(t *testing.T) {
	db := newTestDB(t)
	h := NewCareerPageHandler(db, newTestRedis(t), nil, nil, "http://localhost:8080")

	w := performJSON(t, h.Palette, http.MethodGet, "/v1/career-pages/components", nil, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	var resp struct {
		Components []struct {
			Kind string `json:"kind"`
		} `json:"components"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Components) != len(page.Kinds()) {
		t.Fatalf("expected %d palette entries, got %d", len(page.Kinds()), len(resp.Components))
	}
	seen := map[string]bool{}
	for _, entry := range resp.Components {
		seen[entry.Kind] = true
	}
	for _, kind := range page.Kinds() {
		if !seen[string(kind)] {
			t.Fatalf("palette missing kind %q", kind)
		}
	}
}
