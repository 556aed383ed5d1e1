package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	slugStripPattern   = regexp.MustCompile(`[^\w\s-]`)
	slugSpacePattern   = regexp.MustCompile(`\s+`)
	slugHyphensPattern = regexp.MustCompile(`-+`)
)

// Slugify 将任意文本转成 URL 友好的 slug。
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugSpacePattern.ReplaceAllString(s, "-")
	s = slugHyphensPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueCompanySlug 生成公司级唯一 slug，冲突时追加递增序号。
func UniqueCompanySlug(db *gorm.DB, companyName string) (string, error) {
	base := Slugify(companyName)
	if base == "" {
		base = "company"
	}

	for counter := 0; ; counter++ {
		candidate := base
		if counter > 0 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}
		var existing Company
		err := db.Where("slug = ?", candidate).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("lookup company slug %q: %w", candidate, err)
		}
	}
}

// UniqueJobSlug 在公司范围内生成唯一的职位 slug。更新时通过
// excludeJobID 排除自身。
func UniqueJobSlug(db *gorm.DB, companyID uint, title string, excludeJobID uint) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "job"
	}

	for counter := 0; ; counter++ {
		candidate := base
		if counter > 0 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}
		query := db.Where("company_id = ? AND slug = ?", companyID, candidate)
		if excludeJobID != 0 {
			query = query.Where("id <> ?", excludeJobID)
		}
		var existing Job
		err := query.First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("lookup job slug %q: %w", candidate, err)
		}
	}
}
