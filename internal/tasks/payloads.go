package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeJobsImport   = "jobs:import"
	TypePageSnapshot = "page:snapshot"
)

// JobsImportPayload 描述一次 CSV 批量导入：CSV 已先行存入
// 对象存储，worker 按对象键取回解析。
type JobsImportPayload struct {
	CompanyID     uint   `json:"company_id"`
	UserID        uint   `json:"user_id"`
	ObjectKey     string `json:"object_key"`
	CorrelationID string `json:"correlation_id"`
}

// NewJobsImportTask 构造一个新的职位批量导入任务。
func NewJobsImportTask(payload JobsImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeJobsImport, data), nil
}

// PageSnapshotPayload 描述发布后的页面截图任务。
type PageSnapshotPayload struct {
	CompanyID     uint   `json:"company_id"`
	CompanySlug   string `json:"company_slug"`
	CorrelationID string `json:"correlation_id"`
}

// NewPageSnapshotTask 构造一个新的页面截图任务。
func NewPageSnapshotTask(payload PageSnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePageSnapshot, data), nil
}
