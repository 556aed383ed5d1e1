package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"careerforge/internal/api/middleware"
	"careerforge/internal/database"
	"careerforge/internal/page"
	"careerforge/internal/render"
	"careerforge/internal/tasks"
)

// CareerPageHandler 处理页面草稿的读写、发布与预览。
type CareerPageHandler struct {
	db            *gorm.DB
	redis         redis.UniversalClient
	asynqClient   *asynq.Client
	logger        *slog.Logger
	publicBaseURL string
}

// NewCareerPageHandler 构造页面处理器。
func NewCareerPageHandler(db *gorm.DB, redisClient redis.UniversalClient, asynqClient *asynq.Client, logger *slog.Logger, publicBaseURL string) *CareerPageHandler {
	return &CareerPageHandler{
		db:            db,
		redis:         redisClient,
		asynqClient:   asynqClient,
		logger:        logger,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

type careerPageResponse struct {
	Components  []page.Component `json:"components"`
	Branding    page.Branding    `json:"branding"`
	IsPublished bool             `json:"isPublished"`
	PublishedAt *time.Time       `json:"publishedAt"`
}

// GetDraft 返回当前草稿。尚无文档时返回惰性空文档，不落库。
// 品牌色取草稿品牌色，未设置时回退公司品牌色。
func (h *CareerPageHandler) GetDraft(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	company, err := h.loadCompany(ctx, companyID)
	if err != nil {
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	companyBranding := decodeBranding(company.Branding)

	var row database.CareerPage
	err = h.db.WithContext(ctx).Where("company_id = ?", companyID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, careerPageResponse{
			Components: []page.Component{},
			Branding:   companyBranding,
		})
		return
	}
	if err != nil {
		logger.Error("load career page failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	branding := decodeBranding(row.DraftBranding)
	if branding.IsZero() {
		branding = companyBranding
	}

	c.JSON(http.StatusOK, careerPageResponse{
		Components:  decodeComponents(row.Components),
		Branding:    branding,
		IsPublished: row.IsPublished,
		PublishedAt: row.PublishedAt,
	})
}

type saveDraftRequest struct {
	Components []page.Component `json:"components"`
	Branding   page.Branding    `json:"branding"`
}

// SaveDraft 校验并保存草稿。组件类型与颜色非法返回 400；
// 并发保存为最后写入者胜出。
func (h *CareerPageHandler) SaveDraft(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	components, err := page.Validate(req.Components)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	components = page.Normalize(components)

	branding, err := req.Branding.Normalize()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	componentsJSON, err := json.Marshal(components)
	if err != nil {
		logger.Error("marshal components failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	brandingJSON, err := json.Marshal(branding)
	if err != nil {
		logger.Error("marshal branding failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var row database.CareerPage
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("company_id = ?", companyID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = database.CareerPage{CompanyID: companyID}
		} else if err != nil {
			return err
		}
		row.Components = datatypes.JSON(componentsJSON)
		row.DraftBranding = datatypes.JSON(brandingJSON)
		return tx.Save(&row).Error
	})
	if err != nil {
		logger.Error("save career page failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("draft saved",
		slog.Uint64("company_id", uint64(companyID)),
		slog.Int("component_count", len(components)),
	)
	c.JSON(http.StatusOK, careerPageResponse{
		Components:  components,
		Branding:    branding,
		IsPublished: row.IsPublished,
		PublishedAt: row.PublishedAt,
	})
}

type publishResponse struct {
	Components  []page.Component `json:"components"`
	IsPublished bool             `json:"isPublished"`
	PublishedAt *time.Time       `json:"publishedAt"`
	PublicURL   string           `json:"publicUrl"`
}

// Publish 将草稿原子提升为已发布快照：组件整体拷贝；草稿品牌
// 色非空时同时写入已发布品牌色与公司品牌色。单行事务更新，
// 公共路由读不到半新半旧的状态。
func (h *CareerPageHandler) Publish(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	company, err := h.loadCompany(ctx, companyID)
	if err != nil {
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var row database.CareerPage
	now := time.Now().UTC()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).First(&row).Error; err != nil {
			return err
		}

		row.PublishedComponents = row.Components
		draftBranding := decodeBranding(row.DraftBranding)
		if !draftBranding.IsZero() {
			row.PublishedBranding = row.DraftBranding
			if err := tx.Model(&database.Company{}).
				Where("id = ?", companyID).
				Update("branding", row.DraftBranding).Error; err != nil {
				return err
			}
		}
		row.IsPublished = true
		row.PublishedAt = &now
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "career page not found")
		return
	}
	if err != nil {
		logger.Error("publish failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.invalidatePublicCache(ctx, company.Slug, logger)
	h.enqueueSnapshot(c, company, logger)

	logger.Info("career page published",
		slog.Uint64("company_id", uint64(companyID)),
		slog.String("slug", company.Slug),
	)
	c.JSON(http.StatusOK, publishResponse{
		Components:  decodeComponents(row.PublishedComponents),
		IsPublished: row.IsPublished,
		PublishedAt: row.PublishedAt,
		PublicURL:   h.publicBaseURL + "/" + company.Slug + "/careers",
	})
}

// Preview 以 JSON 节点树返回页面渲染结果，mode 选择草稿或已
// 发布数据，view 只影响客户端物化，不改变树内容。
func (h *CareerPageHandler) Preview(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	mode := c.DefaultQuery("mode", "draft")
	if mode != "draft" && mode != "published" {
		BadRequest(c, "mode must be draft or published")
		return
	}
	view := c.DefaultQuery("view", "desktop")
	if view != "desktop" && view != "mobile" {
		BadRequest(c, "view must be desktop or mobile")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	company, err := h.loadCompany(ctx, companyID)
	if err != nil {
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var row database.CareerPage
	err = h.db.WithContext(ctx).Where("company_id = ?", companyID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("load career page failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var components []page.Component
	var branding page.Branding
	if mode == "published" {
		components = decodeComponents(row.PublishedComponents)
		branding = decodeBranding(row.PublishedBranding)
	} else {
		components = decodeComponents(row.Components)
		branding = decodeBranding(row.DraftBranding)
	}
	if branding.IsZero() {
		branding = decodeBranding(company.Branding)
	}

	jobs, err := loadActiveJobs(ctx, h.db, companyID)
	if err != nil {
		logger.Error("load jobs failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	tree := render.Page(render.PageData{
		CompanyName: company.Name,
		CompanySlug: company.Slug,
		Components:  components,
		Branding:    branding,
		Jobs:        jobs,
		Context:     render.Context{Now: time.Now().UTC()},
	})

	c.JSON(http.StatusOK, gin.H{
		"mode": mode,
		"view": view,
		"tree": tree,
	})
}

// Palette 返回可用组件清单（类型、名称、说明与缺省配置）。
func (h *CareerPageHandler) Palette(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"components": render.Palette()})
}

func (h *CareerPageHandler) loadCompany(ctx context.Context, companyID uint) (database.Company, error) {
	var company database.Company
	err := h.db.WithContext(ctx).First(&company, companyID).Error
	return company, err
}

func (h *CareerPageHandler) invalidatePublicCache(ctx context.Context, slug string, logger *slog.Logger) {
	if err := h.redis.Del(ctx, publicPageCacheKey(slug)).Err(); err != nil {
		logger.Error("invalidate public cache failed",
			slog.String("slug", slug),
			slog.Any("error", err),
		)
	}
}

func (h *CareerPageHandler) enqueueSnapshot(c *gin.Context, company database.Company, logger *slog.Logger) {
	if h.asynqClient == nil {
		return
	}
	task, err := tasks.NewPageSnapshotTask(tasks.PageSnapshotPayload{
		CompanyID:     company.ID,
		CompanySlug:   company.Slug,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		logger.Error("build snapshot task failed", slog.Any("error", err))
		return
	}
	if _, err := h.asynqClient.EnqueueContext(c.Request.Context(), task); err != nil {
		logger.Error("enqueue snapshot task failed", slog.Any("error", err))
	}
}

func (h *CareerPageHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func decodeComponents(raw datatypes.JSON) []page.Component {
	if len(raw) == 0 {
		return []page.Component{}
	}
	var components []page.Component
	if err := json.Unmarshal(raw, &components); err != nil {
		return []page.Component{}
	}
	return components
}

func decodeBranding(raw datatypes.JSON) page.Branding {
	if len(raw) == 0 {
		return page.Branding{}
	}
	var branding page.Branding
	if err := json.Unmarshal(raw, &branding); err != nil {
		return page.Branding{}
	}
	return branding
}

// loadActiveJobs 取出在招职位并按发布时间倒序排列。
func loadActiveJobs(ctx context.Context, db *gorm.DB, companyID uint) ([]render.Job, error) {
	var rows []database.Job
	err := db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, "active").
		Order("posted_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]render.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, render.Job{
			ID:              row.ID,
			Title:           row.Title,
			Department:      row.Department,
			Location:        row.Location,
			WorkPolicy:      row.WorkPolicy,
			EmploymentType:  row.EmploymentType,
			ExperienceLevel: row.ExperienceLevel,
			SalaryRange:     row.SalaryRange,
			Description:     row.Description,
			PostedDate:      row.PostedDate,
		})
	}
	return jobs, nil
}

func publicPageCacheKey(slug string) string {
	return "public:page:" + slug
}
