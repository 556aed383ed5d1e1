package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careerforge/internal/api/middleware"
	"careerforge/internal/database"
	"careerforge/internal/metrics"
	"careerforge/internal/page"
	"careerforge/internal/render"
	"careerforge/internal/storage"
)

const publicPageCacheTTL = 5 * time.Minute

// PublicHandler 服务无需认证的公开招聘页。
type PublicHandler struct {
	db            *gorm.DB
	redis         redis.UniversalClient
	storage       *storage.Client
	logger        *slog.Logger
	publicBaseURL string
}

// NewPublicHandler 构造公开页处理器。
func NewPublicHandler(db *gorm.DB, redisClient redis.UniversalClient, storageClient *storage.Client, logger *slog.Logger, publicBaseURL string) *PublicHandler {
	return &PublicHandler{
		db:            db,
		redis:         redisClient,
		storage:       storageClient,
		logger:        logger,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func writeHTML(c *gin.Context, status int, body string) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(status, body)
}

func setPublicCacheHeaders(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.Header("X-Robots-Tag", "index, follow")
}

// CareersPage 渲染已发布页面。整份 HTML 在 redis 缓存 5 分钟，
// 发布时失效；未知 slug 或未发布一律 404 HTML。
func (h *PublicHandler) CareersPage(c *gin.Context) {
	slug := c.Param("companySlug")
	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("slug", slug))

	cacheKey := publicPageCacheKey(slug)
	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		metrics.PageCacheHit()
		setPublicCacheHeaders(c)
		writeHTML(c, http.StatusOK, cached)
		return
	} else if !errors.Is(err, redis.Nil) {
		// 缓存不可用时直接回源渲染。
		logger.Error("page cache lookup failed", slog.Any("error", err))
	}
	metrics.PageCacheMiss()

	var company database.Company
	if err := h.db.WithContext(ctx).Where("slug = ?", slug).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeHTML(c, http.StatusNotFound, render.NotFoundPage())
			return
		}
		logger.Error("load company failed", slog.Any("error", err))
		writeHTML(c, http.StatusInternalServerError, render.ServerErrorPage())
		return
	}

	var row database.CareerPage
	if err := h.db.WithContext(ctx).Where("company_id = ?", company.ID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeHTML(c, http.StatusNotFound, render.NotFoundPage())
			return
		}
		logger.Error("load career page failed", slog.Any("error", err))
		writeHTML(c, http.StatusInternalServerError, render.ServerErrorPage())
		return
	}
	if !row.IsPublished {
		writeHTML(c, http.StatusNotFound, render.NotFoundPage())
		return
	}

	jobs, err := loadActiveJobs(ctx, h.db, company.ID)
	if err != nil {
		logger.Error("load jobs failed", slog.Any("error", err))
		writeHTML(c, http.StatusInternalServerError, render.ServerErrorPage())
		return
	}

	branding := decodeBranding(row.PublishedBranding)
	if branding.IsZero() {
		branding = decodeBranding(company.Branding)
	}

	logoURL := ""
	if company.Logo != "" && h.storage != nil {
		if url, err := h.storage.GeneratePresignedURL(ctx, company.Logo, publicPageCacheTTL); err == nil {
			logoURL = url
		}
	}

	now := time.Now().UTC()
	tree := render.Page(render.PageData{
		CompanyName: company.Name,
		CompanySlug: company.Slug,
		LogoURL:     logoURL,
		Components:  decodeComponents(row.PublishedComponents),
		Branding:    branding,
		Jobs:        jobs,
		Context:     render.Context{Now: now},
	})

	meta := render.BuildMetaTags(company.Name, company.Slug, logoURL, h.publicBaseURL, jobs)
	postings := render.JobPostingsLD(jobs, company.Name, logoURL, meta.Canonical, now)
	organization := render.OrganizationLD(company.Name, logoURL, meta.Canonical)

	colors := page.EffectiveColors(branding, nil)
	html := render.Document(tree, meta, postings, organization, colors.Background)

	if err := h.redis.Set(ctx, cacheKey, html, publicPageCacheTTL).Err(); err != nil {
		logger.Error("cache page failed", slog.Any("error", err))
	}

	setPublicCacheHeaders(c)
	writeHTML(c, http.StatusOK, html)
}

func (h *PublicHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
