package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Triggers record what started a run.
const (
	TriggerScheduler = "scheduler"
	TriggerTemporal  = "temporal"
	TriggerManual    = "manual"
)

// JobRun is the audit row for one execution of a batch job.
type JobRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobType    string         `gorm:"column:job_type;not null;index" json:"job_type"`
	Trigger    string         `gorm:"column:triggered_by;not null;default:''" json:"trigger"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Stage      string         `gorm:"column:stage;not null;default:''" json:"stage"`
	Progress   int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Message    string         `gorm:"column:message;not null;default:''" json:"message,omitempty"`
	Error      string         `gorm:"column:error;not null;default:''" json:"error,omitempty"`
	Result     datatypes.JSON `gorm:"column:result" json:"result,omitempty"`
	StartedAt  time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time     `gorm:"index" json:"finished_at,omitempty"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (JobRun) TableName() string { return "job_run" }

func (j *JobRun) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

func (j *JobRun) Terminal() bool {
	return j != nil && (j.Status == StatusSucceeded || j.Status == StatusFailed)
}
