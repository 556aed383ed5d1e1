package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company 表示一个租户（公司账号），slug 唯一。
type Company struct {
	gorm.Model
	Name string `gorm:"size:255"`
	Slug string `gorm:"uniqueIndex;size:128"`
	// Logo 存储 MinIO 对象键，为空表示未上传。
	Logo string `gorm:"size:512"`
	// Branding 以 JSONB 存储租户级默认品牌色（page.Branding）。
	Branding datatypes.JSON `gorm:"type:jsonb"`
	Users    []User         `gorm:"constraint:OnDelete:CASCADE"`
	Jobs     []Job          `gorm:"constraint:OnDelete:CASCADE"`
}

// User 表示后台登录账号，归属于一个公司。
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255"`
	CompanyID    uint   `gorm:"index"`
	Company      Company
}

// Job 表示一条职位记录。
type Job struct {
	gorm.Model
	CompanyID       uint   `gorm:"index:idx_jobs_company_status"`
	Title           string `gorm:"size:255"`
	WorkPolicy      string `gorm:"size:32;default:On-site"`
	Location        string `gorm:"size:255"`
	Department      string `gorm:"size:255"`
	EmploymentType  string `gorm:"size:32;default:Full time"`
	ExperienceLevel string `gorm:"size:32;default:Mid"`
	JobType         string `gorm:"size:32;default:Permanent"`
	SalaryRange     string `gorm:"size:255"`
	Slug            string `gorm:"size:255"`
	Description     string `gorm:"type:text"`
	Status          string `gorm:"size:16;default:draft;index:idx_jobs_company_status"`
	ApplicationCnt  int    `gorm:"default:0"`
	PostedDate      *time.Time
}

// CareerPage 表示一个租户的页面文档：草稿与已发布快照共存于同一行，
// 发布即单行更新，公共路由读取时不可能读到混合状态。
type CareerPage struct {
	gorm.Model
	CompanyID uint `gorm:"uniqueIndex"`
	Company   Company
	// Components 为草稿组件列表（[]page.Component 的 JSONB 序列化）。
	Components    datatypes.JSON `gorm:"type:jsonb"`
	DraftBranding datatypes.JSON `gorm:"type:jsonb"`
	// Published* 为最近一次发布时冻结的快照。
	PublishedComponents datatypes.JSON `gorm:"type:jsonb"`
	PublishedBranding   datatypes.JSON `gorm:"type:jsonb"`
	IsPublished         bool           `gorm:"default:false"`
	PublishedAt         *time.Time
	// SnapshotKey 为发布后由 worker 生成的分享缩略图对象键。
	SnapshotKey string `gorm:"size:512"`
}
