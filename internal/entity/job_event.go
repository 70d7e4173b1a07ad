package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobEventType string

const (
	JobCompleted JobEventType = "job.completed"
	JobFailed    JobEventType = "job.failed"
	JobEvicted   JobEventType = "job.evicted"
	JobDeleted   JobEventType = "job.deleted"
)

// JobEvent is a lifecycle notification. It never carries image data.
type JobEvent struct {
	ID         uuid.UUID    `json:"id"`
	JobID      string       `json:"job_id"`
	BlobID     string       `json:"blob_id"`
	Type       JobEventType `json:"type"`
	Status     Status       `json:"status,omitempty"`
	Model      string       `json:"model,omitempty"`
	Error      string       `json:"error,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`

	RetryCount int `json:"-"`
}

func NewJobEvent(job *Job, typ JobEventType, at time.Time) *JobEvent {
	e := &JobEvent{
		ID:         uuid.New(),
		JobID:      job.ID,
		BlobID:     job.BlobID,
		Type:       typ,
		Status:     job.Status,
		Model:      job.Model,
		OccurredAt: at,
	}
	if job.Error != nil {
		e.Error = *job.Error
	}

	return e
}
