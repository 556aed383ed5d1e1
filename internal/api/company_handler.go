package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"careerforge/internal/api/middleware"
	"careerforge/internal/database"
	"careerforge/internal/page"
	"careerforge/internal/storage"
)

// CompanyHandler 处理公司资料：品牌色与 Logo。
type CompanyHandler struct {
	db        *gorm.DB
	storage   *storage.Client
	logger    *slog.Logger
	clamdAddr string
}

// NewCompanyHandler 构造公司处理器。
func NewCompanyHandler(db *gorm.DB, storageClient *storage.Client, logger *slog.Logger, clamdAddr string) *CompanyHandler {
	return &CompanyHandler{
		db:        db,
		storage:   storageClient,
		logger:    logger,
		clamdAddr: clamdAddr,
	}
}

// GetProfile 返回当前公司资料。
func (h *CompanyHandler) GetProfile(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		h.loggerFromContext(c).Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logoURL := ""
	if company.Logo != "" && h.storage != nil {
		if url, err := h.storage.GeneratePresignedURL(ctx, company.Logo, time.Hour); err == nil {
			logoURL = url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     company.Name,
		"slug":     company.Slug,
		"logo":     logoURL,
		"branding": decodeBranding(company.Branding),
	})
}

// UpdateBranding 逐字段合并公司品牌色。未出现的键保持不变，
// 任一非法颜色整体拒绝。
func (h *CompanyHandler) UpdateBranding(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	allowed := map[string]bool{
		"primaryColor": true, "secondaryColor": true, "buttonColor": true,
		"textColor": true, "backgroundColor": true, "headingColor": true,
	}
	override := page.Branding{}
	for key, raw := range req {
		if !allowed[key] {
			BadRequest(c, fmt.Sprintf("unknown branding field %q", key))
			return
		}
		cleaned, err := page.CleanHexColor(raw)
		if err != nil {
			BadRequest(c, fmt.Sprintf("%s: %v", key, err))
			return
		}
		switch key {
		case "primaryColor":
			override.PrimaryColor = cleaned
		case "secondaryColor":
			override.SecondaryColor = cleaned
		case "buttonColor":
			override.ButtonColor = cleaned
		case "textColor":
			override.TextColor = cleaned
		case "backgroundColor":
			override.BackgroundColor = cleaned
		case "headingColor":
			override.HeadingColor = cleaned
		}
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	merged := decodeBranding(company.Branding).Merge(override)
	data, err := json.Marshal(merged)
	if err != nil {
		logger.Error("marshal branding failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&company).
		Update("branding", datatypes.JSON(data)).Error; err != nil {
		logger.Error("update branding failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("branding updated", slog.Uint64("company_id", uint64(companyID)))
	c.JSON(http.StatusOK, gin.H{"branding": merged})
}

// UploadLogo 接收 Logo 图片：先做病毒扫描，再写入对象存储，
// 返回限时访问链接。
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	logger := h.loggerFromContext(c)

	if h.clamdAddr != "" {
		fileReader, err := file.Open()
		if err != nil {
			Internal(c, "failed to open file")
			return
		}

		abortChan := make(chan bool)
		scanChan, err := clamd.NewClamd(h.clamdAddr).ScanStream(fileReader, abortChan)
		fileReader.Close()
		if err != nil {
			logger.Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		defer close(abortChan)

		for result := range scanChan {
			if result.Status != clamd.RES_OK {
				BadRequest(c, "malicious file detected")
				return
			}
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("companies/%d/logo/%s.png", companyID, uuid.NewString())
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request.Context()
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		logger.Error("upload logo", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	if err := h.db.WithContext(ctx).Model(&database.Company{}).
		Where("id = ?", companyID).
		Update("logo", objectKey).Error; err != nil {
		logger.Error("save logo key failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logoURL, err := h.storage.GeneratePresignedURL(ctx, objectKey, time.Hour)
	if err != nil {
		logger.Error("generate logo url", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	logger.Info("logo uploaded",
		slog.Uint64("company_id", uint64(companyID)),
		slog.String("object_key", objectKey),
	)
	c.JSON(http.StatusCreated, gin.H{"logo": logoURL})
}

func (h *CompanyHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
