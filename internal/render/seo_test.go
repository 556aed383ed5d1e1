package render

import (
	"strings"
	"testing"
	"time"
)

func TestBuildMetaTagsCountsOpenPositions(t *testing.T) {
	jobs := []Job{{Title: "A"}, {Title: "B"}}
	meta := BuildMetaTags("Acme", "acme", "", "https://careers.example.com", jobs)

	if meta.Title != "Acme - Careers" {
		t.Fatalf("unexpected title %q", meta.Title)
	}
	if !strings.Contains(meta.Description, "2 open positions available.") {
		t.Fatalf("unexpected description %q", meta.Description)
	}
	if meta.Canonical != "https://careers.example.com/acme/careers" {
		t.Fatalf("unexpected canonical %q", meta.Canonical)
	}
}

func TestBuildMetaTagsSingularAndEmpty(t *testing.T) {
	meta := BuildMetaTags("Acme", "acme", "", "https://x.test", []Job{{Title: "A"}})
	if !strings.Contains(meta.Description, "1 open position available.") {
		t.Fatalf("unexpected description %q", meta.Description)
	}

	meta = BuildMetaTags("Acme", "acme", "", "https://x.test", nil)
	if !strings.Contains(meta.Description, "Explore career opportunities.") {
		t.Fatalf("unexpected description %q", meta.Description)
	}
}

func TestParseSalaryRange(t *testing.T) {
	cases := []struct {
		raw      string
		min, max int
		ok       bool
	}{
		{"$90,000 - $120,000", 90000, 120000, true},
		{"80000-100000", 80000, 100000, true},
		{"$75,000", 75000, 75000, true},
		{"Competitive", 0, 0, false},
	}
	for _, tc := range cases {
		min, max, ok := parseSalaryRange(tc.raw)
		if ok != tc.ok || min != tc.min || max != tc.max {
			t.Errorf("parseSalaryRange(%q) = (%d, %d, %v), expected (%d, %d, %v)",
				tc.raw, min, max, ok, tc.min, tc.max, tc.ok)
		}
	}
}

func TestJobPostingsLDMapsEmploymentType(t *testing.T) {
	posted := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{{ID: 7, Title: "Engineer", EmploymentType: "Full time", PostedDate: &posted}}

	postings := JobPostingsLD(jobs, "Acme", "", "https://x.test/acme/careers", testNow)
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p["employmentType"] != "FULL_TIME" {
		t.Errorf("expected FULL_TIME, got %v", p["employmentType"])
	}
	if p["datePosted"] != "2025-06-01" {
		t.Errorf("unexpected datePosted %v", p["datePosted"])
	}
	if p["validThrough"] != "2025-07-01" {
		t.Errorf("validThrough should be posted+30d, got %v", p["validThrough"])
	}
}

func TestJobPostingsLDUnknownEmploymentTypePassesThrough(t *testing.T) {
	postings := JobPostingsLD([]Job{{Title: "X", EmploymentType: "Freelance"}}, "Acme", "", "https://x.test", testNow)
	if postings[0]["employmentType"] != "Freelance" {
		t.Errorf("unmapped type should pass through, got %v", postings[0]["employmentType"])
	}
}

func TestJobPostingsLDOpaqueSalaryPassthrough(t *testing.T) {
	postings := JobPostingsLD([]Job{{Title: "X", SalaryRange: "Competitive"}}, "Acme", "", "https://x.test", testNow)
	salary, ok := postings[0]["baseSalary"].(map[string]any)
	if !ok {
		t.Fatal("expected baseSalary present")
	}
	value := salary["value"].(map[string]any)
	if value["value"] != "Competitive" {
		t.Errorf("unparseable salary should pass through as text, got %v", value["value"])
	}
}

func TestJobPostingsLDRemoteLocationType(t *testing.T) {
	postings := JobPostingsLD([]Job{
		{Title: "A", WorkPolicy: "Remote"},
		{Title: "B", WorkPolicy: "On-site"},
	}, "Acme", "", "https://x.test", testNow)
	if postings[0]["jobLocationType"] != "TELECOMMUTE" {
		t.Errorf("remote job should be TELECOMMUTE, got %v", postings[0]["jobLocationType"])
	}
	if postings[1]["jobLocationType"] != "PHYSICAL" {
		t.Errorf("on-site job should be PHYSICAL, got %v", postings[1]["jobLocationType"])
	}
}

func TestDocumentContainsMetaAndStructuredData(t *testing.T) {
	tree := El("div", map[string]string{"class": "career-page"}, Text("hello"))
	meta := BuildMetaTags("Acme", "acme", "https://cdn.x/logo.png", "https://x.test", []Job{{Title: "A"}})
	postings := JobPostingsLD([]Job{{ID: 1, Title: "Engineer"}}, "Acme", "", meta.Canonical, testNow)
	org := OrganizationLD("Acme", "", meta.Canonical)

	doc := Document(tree, meta, postings, org, "#F3F4F6")

	for _, want := range []string{
		"<title>Acme - Careers</title>",
		`rel="canonical"`,
		`property="og:title"`,
		`name="twitter:card"`,
		`application/ld+json`,
		`"@type": "JobPosting"`,
		`"@type": "Organization"`,
		"cdn.tailwindcss.com",
		"job-search",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestErrorPagesCarryNoInternals(t *testing.T) {
	notFound := NotFoundPage()
	if !strings.Contains(notFound, "404") || !strings.Contains(notFound, "Page Not Found") {
		t.Error("404 page missing heading")
	}
	if !strings.Contains(notFound, `name="robots" content="noindex"`) {
		t.Error("error pages must be noindex")
	}

	serverError := ServerErrorPage()
	if !strings.Contains(serverError, "500") {
		t.Error("500 page missing code")
	}
	if strings.Contains(serverError, "goroutine") || strings.Contains(serverError, "stack") {
		t.Error("500 page must not leak internals")
	}
}
