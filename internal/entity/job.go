package entity

import "time"

const (
	DefaultTransformationType         = "weight-loss"
	DefaultAmount             float64 = 20
)

type Job struct {
	ID     string
	BlobID string

	Status   Status
	Progress int

	// Caller-supplied, any JSON value.
	TransformationType any
	Amount             any

	Original InlineImage
	Result   *InlineImage
	Error    *string

	// Model and Shape record which provider candidate produced the result.
	Model string
	Shape string

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Clone returns a copy that shares no mutable pointers with j.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}

	return &c
}

// SetProgress never moves progress backwards.
func (j *Job) SetProgress(p int) {
	if p > j.Progress {
		j.Progress = p
	}
}

func (j *Job) Complete(result InlineImage, at time.Time) {
	j.Status = Completed
	j.Progress = 100
	j.Result = &result
	j.CompletedAt = &at
}

func (j *Job) Fail(reason string, at time.Time) {
	j.Status = Failed
	j.Error = &reason
	j.CompletedAt = &at
}
