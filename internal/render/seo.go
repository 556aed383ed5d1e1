package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MetaTags 是文档外壳需要的全部 SEO 元信息。
type MetaTags struct {
	Title       string
	Description string
	Keywords    string
	Favicon     string
	OGImage     string
	Canonical   string
	SiteName    string
}

// BuildMetaTags 由公司信息与职位列表推导页面元信息。
// canonical 形如 {baseURL}/{slug}/careers。
func BuildMetaTags(companyName, companySlug, logoURL, baseURL string, jobs []Job) MetaTags {
	title := companyName + " - Careers"

	var desc strings.Builder
	desc.WriteString("Join " + companyName + ". ")
	switch n := len(jobs); {
	case n == 1:
		desc.WriteString("1 open position available. ")
	case n > 1:
		desc.WriteString(fmt.Sprintf("%d open positions available. ", n))
	default:
		desc.WriteString("Explore career opportunities. ")
	}
	desc.WriteString("Find your next role with us.")

	keywords := []string{companyName, "careers", "jobs", "employment", "opportunities"}
	keywords = append(keywords, uniqueField(jobs, func(j Job) string { return j.Department })...)
	keywords = append(keywords, uniqueField(jobs, func(j Job) string { return j.Location })...)

	return MetaTags{
		Title:       title,
		Description: desc.String(),
		Keywords:    strings.Join(keywords, ", "),
		Favicon:     logoURL,
		OGImage:     logoURL,
		Canonical:   strings.TrimSuffix(baseURL, "/") + "/" + companySlug + "/careers",
		SiteName:    "CareerForge",
	}
}

var employmentTypeSchema = map[string]string{
	"Full time":  "FULL_TIME",
	"Part time":  "PART_TIME",
	"Contract":   "CONTRACTOR",
	"Temporary":  "TEMPORARY",
	"Internship": "INTERN",
}

var salaryPattern = regexp.MustCompile(`\$?([\d,]+)\s*-?\s*\$?([\d,]+)?`)

// parseSalaryRange 尽力从自由文本解析出最小/最大年薪。
// 解析失败返回 ok=false，由调用方原样透传文本。
func parseSalaryRange(raw string) (min, max int, ok bool) {
	m := salaryPattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, 0, false
	}
	max = min
	if m[2] != "" {
		if parsed, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", "")); err == nil {
			max = parsed
		}
	}
	return min, max, true
}

// JobPostingsLD 为每个在招职位生成一份 schema.org JobPosting。
func JobPostingsLD(jobs []Job, companyName, logoURL, canonical string, now time.Time) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		posted := now
		if job.PostedDate != nil {
			posted = *job.PostedDate
		}
		validThrough := posted.AddDate(0, 0, 30)

		description := job.Description
		if description == "" {
			var b strings.Builder
			b.WriteString(job.Title + " position at " + companyName + ".")
			if job.Department != "" {
				b.WriteString(" Department: " + job.Department + ".")
			}
			if job.ExperienceLevel != "" {
				b.WriteString(" Experience level: " + job.ExperienceLevel + ".")
			}
			description = b.String()
		}

		employmentType := job.EmploymentType
		if mapped, ok := employmentTypeSchema[employmentType]; ok {
			employmentType = mapped
		}

		location := job.Location
		if location == "" {
			location = "Remote"
		}

		organization := map[string]any{
			"@type":  "Organization",
			"name":   companyName,
			"sameAs": canonical,
		}
		if logoURL != "" {
			organization["logo"] = logoURL
		}

		posting := map[string]any{
			"@context":    "https://schema.org/",
			"@type":       "JobPosting",
			"title":       job.Title,
			"description": description,
			"identifier": map[string]any{
				"@type": "PropertyValue",
				"name":  companyName,
				"value": strconv.FormatUint(uint64(job.ID), 10),
			},
			"datePosted":         posted.Format("2006-01-02"),
			"validThrough":       validThrough.Format("2006-01-02"),
			"employmentType":     employmentType,
			"hiringOrganization": organization,
			"jobLocation": map[string]any{
				"@type": "Place",
				"address": map[string]any{
					"@type":           "PostalAddress",
					"addressLocality": location,
				},
			},
			"url": fmt.Sprintf("%s#job-%d", canonical, job.ID),
		}

		if job.Department != "" {
			posting["industry"] = job.Department
		}
		if job.ExperienceLevel != "" {
			posting["experienceRequirements"] = job.ExperienceLevel
		}
		if job.WorkPolicy != "" {
			locationType := "PHYSICAL"
			if job.WorkPolicy == "Remote" {
				locationType = "TELECOMMUTE"
			}
			posting["jobLocationType"] = locationType
		}
		if job.SalaryRange != "" {
			if min, max, ok := parseSalaryRange(job.SalaryRange); ok {
				posting["baseSalary"] = map[string]any{
					"@type":    "MonetaryAmount",
					"currency": "USD",
					"value": map[string]any{
						"@type":    "QuantitativeValue",
						"minValue": min,
						"maxValue": max,
						"unitText": "YEAR",
					},
				}
			} else {
				// 解析不了的薪资串按不透明文本透传，绝不丢字段。
				posting["baseSalary"] = map[string]any{
					"@type":    "MonetaryAmount",
					"currency": "USD",
					"value": map[string]any{
						"@type": "QuantitativeValue",
						"value": job.SalaryRange,
					},
				}
			}
		}

		out = append(out, posting)
	}
	return out
}

// OrganizationLD 生成公司级 schema.org Organization 标记。
func OrganizationLD(companyName, logoURL, canonical string) map[string]any {
	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     companyName,
		"url":      canonical,
		"sameAs":   []string{},
	}
	if logoURL != "" {
		org["logo"] = logoURL
	}
	return org
}
