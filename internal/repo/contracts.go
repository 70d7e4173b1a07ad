package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/google/uuid"
)

type (
	BlobRepo interface {
		Put(ctx context.Context, blob *entity.Blob) error
		Get(ctx context.Context, id string) (*entity.Blob, error)
		Claim(ctx context.Context, id string, at time.Time) (*entity.Blob, error)
		Delete(ctx context.Context, id string) error
		DeleteUnclaimedBefore(ctx context.Context, before time.Time) ([]string, error)
	}

	JobRepo interface {
		Create(ctx context.Context, job *entity.Job) error
		Get(ctx context.Context, id string) (*entity.Job, error)
		// Update applies mutate to a copy of the stored job and replaces the record.
		Update(ctx context.Context, id string, mutate func(job *entity.Job)) (*entity.Job, error)
		Delete(ctx context.Context, id string) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.JobEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.JobEvent, error)
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		DeleteExhausted(ctx context.Context, maxRetries int) (int64, error)
	}
)
