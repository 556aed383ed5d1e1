package worker

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careerforge/internal/database"
	"careerforge/internal/errcode"
	"careerforge/internal/storage"
	"careerforge/internal/tasks"
)

// 通知里最多携带的跳过明细条数，完整明细进日志。
const maxSkippedDetails = 20

// ImportTaskHandler 消费 CSV 职位批量导入任务。
type ImportTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewImportTaskHandler 创建任务处理器。
func NewImportTaskHandler(db *gorm.DB, storageClient *storage.Client, redisClient *redis.Client, logger *slog.Logger) *ImportTaskHandler {
	return &ImportTaskHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。CSV 按行解析：合法行入库，
// 非法行跳过并计入通知；只有系统级错误才触发重试。
func (h *ImportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.JobsImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("company_id", uint64(payload.CompanyID)),
		slog.String("object_key", payload.ObjectKey),
	)
	log.Info("Starting jobs CSV import task...")

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := JobsImportNotifyMessage{
			Status:        "error",
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publishUserNotify(ctx, h.redisClient, payload.UserID, notify); err != nil {
			log.Error("publish import error notification failed", slog.Any("error", err))
		}
	}()

	object, err := h.storage.GetObject(ctx, payload.ObjectKey)
	if err != nil {
		log.Error("fetch import csv failed", slog.Any("error", err))
		return err
	}
	defer object.Close()

	imported, skipped, err := h.importRows(ctx, payload.CompanyID, object)
	if err != nil {
		log.Error("import rows failed", slog.Any("error", err))
		return err
	}

	if err := h.storage.DeleteObject(ctx, payload.ObjectKey); err != nil {
		log.Warn("delete import csv failed", slog.Any("error", err))
	}

	notify := JobsImportNotifyMessage{
		Status:        "completed",
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		Imported:      imported,
		Skipped:       len(skipped),
	}
	if len(skipped) > 0 {
		notify.ErrorCode = errcode.RowsSkipped
		notify.ErrorMessage = fmt.Sprintf("%d rows skipped", len(skipped))
		if len(skipped) > maxSkippedDetails {
			notify.SkippedRows = skipped[:maxSkippedDetails]
		} else {
			notify.SkippedRows = skipped
		}
		log.Warn("import completed with skipped rows",
			slog.Int("imported", imported),
			slog.Int("skipped", len(skipped)),
			slog.Any("details", skipped),
		)
	}
	if err := publishUserNotify(ctx, h.redisClient, payload.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("Jobs import task completed successfully.", slog.Int("imported", imported))
	return nil
}

// importRows 解析 CSV 并在单个事务内写入全部合法行。
func (h *ImportTaskHandler) importRows(ctx context.Context, companyID uint, r io.Reader) (imported int, skipped []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return 0, nil, errors.New("csv missing required column \"title\"")
	}

	var rows []database.Job
	line := 1
	for {
		line++
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: %v", line, readErr))
			continue
		}

		row, rowErr := buildJobRow(companyID, columns, record)
		if rowErr != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: %v", line, rowErr))
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return 0, skipped, nil
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			slug, err := database.UniqueJobSlug(tx, companyID, rows[i].Title, 0)
			if err != nil {
				return err
			}
			rows[i].Slug = slug
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, skipped, err
	}
	return len(rows), skipped, nil
}

func buildJobRow(companyID uint, columns map[string]int, record []string) (database.Job, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := database.Job{
		CompanyID:       companyID,
		Title:           field("title"),
		WorkPolicy:      field("workpolicy"),
		Location:        field("location"),
		Department:      field("department"),
		EmploymentType:  field("employmenttype"),
		ExperienceLevel: field("experiencelevel"),
		JobType:         field("jobtype"),
		SalaryRange:     field("salaryrange"),
		Description:     field("description"),
		Status:          field("status"),
	}

	if row.Title == "" {
		return database.Job{}, errors.New("title is required")
	}
	if row.WorkPolicy == "" {
		row.WorkPolicy = database.DefaultWorkPolicy
	}
	if row.EmploymentType == "" {
		row.EmploymentType = database.DefaultEmploymentType
	}
	if row.ExperienceLevel == "" {
		row.ExperienceLevel = database.DefaultExperienceLevel
	}
	if row.JobType == "" {
		row.JobType = database.DefaultJobType
	}
	if row.Status == "" {
		row.Status = database.DefaultJobStatus
	}

	if !database.ValidWorkPolicies[row.WorkPolicy] {
		return database.Job{}, fmt.Errorf("invalid workPolicy %q", row.WorkPolicy)
	}
	if !database.ValidEmploymentTypes[row.EmploymentType] {
		return database.Job{}, fmt.Errorf("invalid employmentType %q", row.EmploymentType)
	}
	if !database.ValidExperienceLevels[row.ExperienceLevel] {
		return database.Job{}, fmt.Errorf("invalid experienceLevel %q", row.ExperienceLevel)
	}
	if !database.ValidJobTypes[row.JobType] {
		return database.Job{}, fmt.Errorf("invalid jobType %q", row.JobType)
	}
	if !database.ValidJobStatuses[row.Status] {
		return database.Job{}, fmt.Errorf("invalid status %q", row.Status)
	}

	if row.Status == "active" {
		now := time.Now().UTC()
		row.PostedDate = &now
	}
	return row, nil
}
