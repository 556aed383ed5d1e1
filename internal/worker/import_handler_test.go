package worker

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"careerforge/internal/database"
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

func TestImportRows(t *testing.T) {
	db := newTestDB(t)
	company := database.Company{Name: "Acme", Slug: "acme"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	h := NewImportTaskHandler(db, nil, nil, nil)

	csvData := strings.Join([]string{
		"title,workPolicy,location,department,status",
		"Platform Engineer,Remote,Berlin,Engineering,active",
		"Designer,,Munich,Design,",
		",Remote,Berlin,Engineering,active",
		"Bad Row,Moon,Berlin,Engineering,active",
	}, "\n")

	imported, skipped, err := h.importRows(context.Background(), company.ID, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import rows: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imported, got %d", imported)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %v", skipped)
	}

	var rows []database.Job
	if err := db.Where("company_id = ?", company.ID).Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load jobs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 persisted jobs, got %d", len(rows))
	}

	engineer := rows[0]
	if engineer.Slug != "platform-engineer" || engineer.Status != "active" {
		t.Fatalf("unexpected first row %+v", engineer)
	}
	if engineer.PostedDate == nil {
		t.Fatal("active import must set posted date")
	}

	designer := rows[1]
	if designer.WorkPolicy != database.DefaultWorkPolicy || designer.Status != database.DefaultJobStatus {
		t.Fatalf("defaults not applied: %+v", designer)
	}
	if designer.PostedDate != nil {
		t.Fatal("draft import must not set posted date")
	}
}

func TestImportRows_RequiresTitleColumn(t *testing.T) {
	db := newTestDB(t)
	h := NewImportTaskHandler(db, nil, nil, nil)

	_, _, err := h.importRows(context.Background(), 1, strings.NewReader("name,location\nFoo,Berlin"))
	if err == nil {
		t.Fatal("missing title column must fail the task")
	}
}

func TestBuildJobRow_SlugCollisionWithinImport(t *testing.T) {
	db := newTestDB(t)
	company := database.Company{Name: "Acme", Slug: "acme"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	h := NewImportTaskHandler(db, nil, nil, nil)

	csvData := "title\nEngineer\nEngineer"
	imported, skipped, err := h.importRows(context.Background(), company.ID, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import rows: %v", err)
	}
	if imported != 2 || len(skipped) != 0 {
		t.Fatalf("expected 2 imported without skips, got %d/%v", imported, skipped)
	}

	var slugs []string
	if err := db.Model(&database.Job{}).Where("company_id = ?", company.ID).Order("id").Pluck("slug", &slugs).Error; err != nil {
		t.Fatalf("load slugs: %v", err)
	}
	if len(slugs) != 2 || slugs[0] != "engineer" || slugs[1] != "engineer-1" {
		t.Fatalf("expected engineer/engineer-1, got %v", slugs)
	}
}
