package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// QueueStatus represents the state of a production run.
type QueueStatus string

const (
	QueueStatusQueued    QueueStatus = "queued"
	QueueStatusTestBatch QueueStatus = "test_batch"
	QueueStatusApproved  QueueStatus = "approved"
	QueueStatusRunning   QueueStatus = "running"
	QueueStatusDone      QueueStatus = "done"
	QueueStatusFailed    QueueStatus = "failed"
)

// IsTerminal reports whether no further automatic transition is possible.
func (s QueueStatus) IsTerminal() bool {
	return s == QueueStatusDone || s == QueueStatusFailed
}

// ScheduleEntry is one publish slot of a production run.
type ScheduleEntry struct {
	PublishDate  time.Time `json:"publish_date"`
	ModifiedDate time.Time `json:"modified_date"`
}

// ScheduleData is the chronologically ordered schedule stored on a queue.
type ScheduleData []ScheduleEntry

// Value implements the driver.Valuer interface for database serialization.
func (d ScheduleData) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (d *ScheduleData) Scan(value interface{}) error {
	b, err := jsonBytes(value, "ScheduleData")
	if err != nil {
		return err
	}
	if b == nil {
		*d = ScheduleData{}
		return nil
	}
	return json.Unmarshal(b, d)
}

// ProductionQueue tracks a bulk generation job.
// CompletedCount is the cursor into ScheduleData and never decreases.
type ProductionQueue struct {
	ID             string       `gorm:"type:text;primaryKey" json:"id"`
	SiteID         string       `gorm:"type:text;not null;index" json:"site_id"`
	CampaignID     string       `gorm:"type:text;not null;index" json:"campaign_id"`
	ScheduleData   ScheduleData `gorm:"type:text" json:"schedule_data"`
	TotalScheduled int          `gorm:"default:0" json:"total_scheduled"`
	CompletedCount int          `gorm:"default:0" json:"completed_count"`
	GeneratedCount int          `gorm:"default:0" json:"generated_count"`
	Status         QueueStatus  `gorm:"type:text;index;default:queued" json:"status"`
	VelocityMode   string       `gorm:"type:text" json:"velocity_mode"`
	ErrorLog       string       `gorm:"type:text" json:"error_log,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName returns the collection name for ProductionQueue.
func (ProductionQueue) TableName() string {
	return "production_queue"
}

// Remaining returns the schedule entries not yet consumed.
func (q *ProductionQueue) Remaining() int {
	if n := len(q.ScheduleData) - q.CompletedCount; n > 0 {
		return n
	}
	return 0
}
