package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type JobMode string

const (
	JOB_MODE_BUILD_KNOWLEDGE      = JobMode("build_knowledge")
	JOB_MODE_GENERATE_SUGGESTIONS = JobMode("generate_suggestions")
)

func (m JobMode) Valid() bool {
	return m == JOB_MODE_BUILD_KNOWLEDGE || m == JOB_MODE_GENERATE_SUGGESTIONS
}

type JobStatus string

const (
	JOB_STATUS_QUEUED     = JobStatus("queued")
	JOB_STATUS_PROCESSING = JobStatus("processing")
	JOB_STATUS_COMPLETED  = JobStatus("completed")
	JOB_STATUS_ERROR      = JobStatus("error")
	JOB_STATUS_STOPPED    = JobStatus("stopped")
)

func (s JobStatus) Terminal() bool {
	switch s {
	case JOB_STATUS_COMPLETED, JOB_STATUS_ERROR, JOB_STATUS_STOPPED:
		return true
	}
	return false
}

type FailedItem struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// FailedItems is stored as a JSONB column.
type FailedItems []FailedItem

func (f FailedItems) Value() (driver.Value, error) {
	if f == nil {
		f = FailedItems{}
	}
	return json.Marshal(f)
}

func (f *FailedItems) Scan(value interface{}) error {
	if value == nil {
		*f = FailedItems{}
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for FailedItems", value)
	}
	return json.Unmarshal(raw, f)
}

// Job 对应 lm_job
type Job struct {
	ID             string      `json:"id" db:"id"`
	SiteID         string      `json:"site_id" db:"site_id"`
	Mode           JobMode     `json:"mode" db:"mode"`
	Status         JobStatus   `json:"status" db:"status"`
	BatchSize      int         `json:"batch_size" db:"batch_size"`
	MaxRetries     int         `json:"max_retries" db:"max_retries"`
	TotalItems     int         `json:"total_items" db:"total_items"`
	ProcessedItems int         `json:"processed_items" db:"processed_items"`
	FailedItems    FailedItems `json:"failed_items" db:"failed_items"`
	Error          string      `json:"error" db:"error"`
	CreatedAt      int64       `json:"created_at" db:"created_at"`
	UpdatedAt      int64       `json:"updated_at" db:"updated_at"`
}

// Progress is derived, never stored.
func (j Job) Progress() float64 {
	if j.TotalItems == 0 {
		return 0
	}
	return float64(j.ProcessedItems) / float64(j.TotalItems)
}

// MarshalJSON 额外输出 progress 字段，持久化结构不变
func (j Job) MarshalJSON() ([]byte, error) {
	type alias Job
	return json.Marshal(struct {
		alias
		Progress float64 `json:"progress"`
	}{
		alias:    alias(j),
		Progress: j.Progress(),
	})
}

// BulkContentItem is one raw item submitted to a bulk job.
type BulkContentItem struct {
	ID      string `json:"id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	URL     string `json:"url"`
	Content string `json:"content" binding:"required"`
}
