package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"careerforge/internal/api/middleware"
	"careerforge/internal/database"
	"careerforge/internal/storage"
	"careerforge/internal/tasks"
)

// JobHandler 处理职位的增删改查与 CSV 批量导入。
type JobHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	asynqClient *asynq.Client
	logger      *slog.Logger
}

// NewJobHandler 构造职位处理器。
func NewJobHandler(db *gorm.DB, storageClient *storage.Client, asynqClient *asynq.Client, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		db:          db,
		storage:     storageClient,
		asynqClient: asynqClient,
		logger:      logger,
	}
}

type jobRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	WorkPolicy      string `json:"workPolicy"`
	Location        string `json:"location"`
	Department      string `json:"department"`
	EmploymentType  string `json:"employmentType"`
	ExperienceLevel string `json:"experienceLevel"`
	JobType         string `json:"jobType"`
	SalaryRange     string `json:"salaryRange"`
	Description     string `json:"description"`
	Status          string `json:"status"`
}

func (r *jobRequest) applyDefaultsAndValidate() error {
	if r.WorkPolicy == "" {
		r.WorkPolicy = database.DefaultWorkPolicy
	}
	if r.EmploymentType == "" {
		r.EmploymentType = database.DefaultEmploymentType
	}
	if r.ExperienceLevel == "" {
		r.ExperienceLevel = database.DefaultExperienceLevel
	}
	if r.JobType == "" {
		r.JobType = database.DefaultJobType
	}
	if r.Status == "" {
		r.Status = database.DefaultJobStatus
	}

	if !database.ValidWorkPolicies[r.WorkPolicy] {
		return fmt.Errorf("invalid workPolicy %q", r.WorkPolicy)
	}
	if !database.ValidEmploymentTypes[r.EmploymentType] {
		return fmt.Errorf("invalid employmentType %q", r.EmploymentType)
	}
	if !database.ValidExperienceLevels[r.ExperienceLevel] {
		return fmt.Errorf("invalid experienceLevel %q", r.ExperienceLevel)
	}
	if !database.ValidJobTypes[r.JobType] {
		return fmt.Errorf("invalid jobType %q", r.JobType)
	}
	if !database.ValidJobStatuses[r.Status] {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	return nil
}

type jobResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	WorkPolicy      string     `json:"workPolicy"`
	Location        string     `json:"location"`
	Department      string     `json:"department"`
	EmploymentType  string     `json:"employmentType"`
	ExperienceLevel string     `json:"experienceLevel"`
	JobType         string     `json:"jobType"`
	SalaryRange     string     `json:"salaryRange"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	PostedDate      *time.Time `json:"postedDate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toJobResponse(row database.Job) jobResponse {
	return jobResponse{
		ID:              row.ID,
		Title:           row.Title,
		WorkPolicy:      row.WorkPolicy,
		Location:        row.Location,
		Department:      row.Department,
		EmploymentType:  row.EmploymentType,
		ExperienceLevel: row.ExperienceLevel,
		JobType:         row.JobType,
		SalaryRange:     row.SalaryRange,
		Slug:            row.Slug,
		Description:     row.Description,
		Status:          row.Status,
		PostedDate:      row.PostedDate,
		CreatedAt:       row.CreatedAt,
	}
}

// List 返回公司全部职位，支持按状态过滤。
func (h *JobHandler) List(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	query := h.db.WithContext(c.Request.Context()).Where("company_id = ?", companyID)
	if status := c.Query("status"); status != "" {
		if !database.ValidJobStatuses[status] {
			BadRequest(c, fmt.Sprintf("invalid status %q", status))
			return
		}
		query = query.Where("status = ?", status)
	}

	var rows []database.Job
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		h.loggerFromContext(c).Error("list jobs failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	items := make([]jobResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toJobResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": items})
}

// Create 新建职位。状态为 active 时记录发布时间。
func (h *JobHandler) Create(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := req.applyDefaultsAndValidate(); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	var row database.Job
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := database.UniqueJobSlug(tx, companyID, req.Title, 0)
		if err != nil {
			return err
		}
		row = database.Job{
			CompanyID:       companyID,
			Title:           req.Title,
			WorkPolicy:      req.WorkPolicy,
			Location:        req.Location,
			Department:      req.Department,
			EmploymentType:  req.EmploymentType,
			ExperienceLevel: req.ExperienceLevel,
			JobType:         req.JobType,
			SalaryRange:     req.SalaryRange,
			Slug:            slug,
			Description:     req.Description,
			Status:          req.Status,
		}
		if req.Status == "active" {
			now := time.Now().UTC()
			row.PostedDate = &now
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		logger.Error("create job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("job created",
		slog.Uint64("job_id", uint64(row.ID)),
		slog.String("status", row.Status),
	)
	c.JSON(http.StatusCreated, toJobResponse(row))
}

// Update 更新职位。从非 active 切到 active 时补记发布时间。
func (h *JobHandler) Update(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := req.applyDefaultsAndValidate(); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	var row database.Job
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND company_id = ?", jobID, companyID).First(&row).Error; err != nil {
			return err
		}

		if req.Title != row.Title {
			slug, err := database.UniqueJobSlug(tx, companyID, req.Title, row.ID)
			if err != nil {
				return err
			}
			row.Slug = slug
		}
		if req.Status == "active" && row.Status != "active" && row.PostedDate == nil {
			now := time.Now().UTC()
			row.PostedDate = &now
		}
		row.Title = req.Title
		row.WorkPolicy = req.WorkPolicy
		row.Location = req.Location
		row.Department = req.Department
		row.EmploymentType = req.EmploymentType
		row.ExperienceLevel = req.ExperienceLevel
		row.JobType = req.JobType
		row.SalaryRange = req.SalaryRange
		row.Description = req.Description
		row.Status = req.Status
		return tx.Save(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "job not found")
		return
	}
	if err != nil {
		logger.Error("update job failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, toJobResponse(row))
}

// Delete 删除职位。
func (h *JobHandler) Delete(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	jobID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid job id")
		return
	}

	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", jobID, companyID).
		Delete(&database.Job{})
	if result.Error != nil {
		h.loggerFromContext(c).Error("delete job failed", slog.Any("error", result.Error))
		Internal(c, "internal error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "job not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// Import 接收 CSV 文件，存入对象存储后交给 worker 异步解析，
// 立即返回 202。
func (h *JobHandler) Import(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	userID, _ := userIDFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	logger := h.loggerFromContext(c)
	ctx := c.Request.Context()

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("imports/%d/%s.csv", companyID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, "text/csv"); err != nil {
		logger.Error("upload import csv failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	task, err := tasks.NewJobsImportTask(tasks.JobsImportPayload{
		CompanyID:     companyID,
		UserID:        userID,
		ObjectKey:     objectKey,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		logger.Error("build import task failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	info, err := h.asynqClient.EnqueueContext(ctx, task)
	if err != nil {
		logger.Error("enqueue import task failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("import enqueued",
		slog.Uint64("company_id", uint64(companyID)),
		slog.String("task_id", info.ID),
		slog.String("object_key", objectKey),
	)
	c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID})
}

func (h *JobHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
