package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
)

type (
	ImageUseCase interface {
		UploadImage(ctx context.Context, data []byte, originalName, contentType string) (*entity.Blob, error)
		SweepOrphanImages(ctx context.Context, olderThan time.Duration) (int, error)
	}

	TransformUseCase interface {
		Submit(ctx context.Context, imageID string, params dto.TransformParams) (*entity.Job, error)
		Status(ctx context.Context, jobID string) (*entity.Job, error)
		Delete(ctx context.Context, jobID string) error
	}

	RetentionUseCase interface {
		Schedule(jobID, blobID string)
		Cancel(jobID string) bool
		Evict(ctx context.Context, jobID, blobID string) error
	}

	ImageProcessorUseCase interface {
		// PrepareInput returns the representation sent to the provider.
		PrepareInput(ctx context.Context, img entity.InlineImage) (entity.InlineImage, error)
	}

	EventsUseCase interface {
		Record(ctx context.Context, event *entity.JobEvent)
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.JobEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.JobEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.JobEvent) error
		CleanupOutbox(ctx context.Context, maxRetries int) error
	}
)
