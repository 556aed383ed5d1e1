package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"careerforge/internal/database"
	"careerforge/internal/storage"
	"careerforge/internal/tasks"
)

const snapshotQuality = 80

// SnapshotTaskHandler 在页面发布后用无头浏览器截取公开页首屏，
// 供构建器的"已发布版本"缩略图使用。
type SnapshotTaskHandler struct {
	db            *gorm.DB
	storage       *storage.Client
	logger        *slog.Logger
	publicBaseURL string
}

// NewSnapshotTaskHandler 创建任务处理器。
func NewSnapshotTaskHandler(db *gorm.DB, storageClient *storage.Client, logger *slog.Logger, publicBaseURL string) *SnapshotTaskHandler {
	return &SnapshotTaskHandler{
		db:            db,
		storage:       storageClient,
		logger:        logger,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// ProcessTask 实现 asynq.Handler。截图失败只影响缩略图，
// 页面本身已经发布，所以未发布/公司不存在时直接放弃任务。
func (h *SnapshotTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger

	var payload tasks.PageSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("company_id", uint64(payload.CompanyID)),
		slog.String("slug", payload.CompanySlug),
	)
	log.Info("Starting page snapshot task...")

	var row database.CareerPage
	if err := h.db.WithContext(ctx).Where("company_id = ?", payload.CompanyID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("career page not found, skipping task")
			return nil
		}
		log.Error("query career page failed", slog.Any("error", err))
		return err
	}
	if !row.IsPublished {
		log.Warn("career page no longer published, skipping task")
		return nil
	}

	targetURL := fmt.Sprintf("%s/%s/careers", h.publicBaseURL, payload.CompanySlug)
	shot, cleanup, err := h.capturePage(targetURL)
	if err != nil {
		log.Error("capture page snapshot failed", slog.Any("error", err))
		return err
	}
	defer cleanup()

	objectName := fmt.Sprintf("snapshots/%d/%s.jpg", payload.CompanyID, uuid.NewString())
	reader := bytes.NewReader(shot)
	if _, err := h.storage.UploadFile(ctx, objectName, reader, int64(len(shot)), "image/jpeg"); err != nil {
		log.Error("upload snapshot to minio failed", slog.Any("error", err))
		return err
	}

	previousKey := row.SnapshotKey
	if err := h.db.WithContext(ctx).Model(&row).Update("snapshot_key", objectName).Error; err != nil {
		log.Error("update snapshot key failed", slog.Any("error", err))
		return err
	}
	if previousKey != "" && previousKey != objectName {
		if err := h.storage.DeleteObject(ctx, previousKey); err != nil {
			log.Warn("delete previous snapshot failed", slog.Any("error", err))
		}
	}

	log.Info("Page snapshot task completed successfully.", slog.String("snapshot_key", objectName))
	return nil
}

func (h *SnapshotTaskHandler) capturePage(targetURL string) (_ []byte, cleanup func(), err error) {
	cleanup = func() {}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	h.logger.Info("Worker: Navigating to public careers page...", slog.String("url", targetURL))

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer func() {
		if err != nil {
			launch.Cleanup()
		}
	}()

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Timeout(60 * time.Second)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}

	page := browser.MustPage(targetURL)
	cleanup = func() {
		if page != nil {
			_ = page.Close()
		}
		_ = browser.Close()
		launch.Cleanup()
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1280,
		Height: 800,
	}); err != nil {
		return nil, cleanup, fmt.Errorf("set viewport: %w", err)
	}

	page.MustWaitLoad()
	page.Timeout(15 * time.Second).MustElement("#root")
	page.MustWaitIdle()

	quality := snapshotQuality
	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("page screenshot: %w", err)
	}
	return shot, cleanup, nil
}
