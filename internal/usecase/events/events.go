package events

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/google/uuid"
)

// EventsUseCase stages job lifecycle events in the outbox for the relay.
// When disabled, Record drops events so the outbox never grows.
type EventsUseCase struct {
	outboxRepo repo.OutboxRepo
	enabled    bool

	logger logger.Interface
}

func New(outboxRepo repo.OutboxRepo, enabled bool, l logger.Interface) *EventsUseCase {
	return &EventsUseCase{
		outboxRepo: outboxRepo,
		enabled:    enabled,
		logger:     l,
	}
}

func (uc *EventsUseCase) Record(ctx context.Context, event *entity.JobEvent) {
	if !uc.enabled || event == nil {
		return
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	err := uc.outboxRepo.Create(ctx, event)
	if err != nil {
		uc.logger.Error(err, "EventsUseCase - Record - uc.outboxRepo.Create")
	}
}

func (uc *EventsUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.JobEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("EventsUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *EventsUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.JobEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("EventsUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *EventsUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.JobEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("EventsUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

// CleanupOutbox drops events that ran out of delivery attempts.
func (uc *EventsUseCase) CleanupOutbox(ctx context.Context, maxRetries int) error {
	count, err := uc.outboxRepo.DeleteExhausted(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("EventsUseCase - CleanupOutbox - uc.outboxRepo.DeleteExhausted: %w", err)
	}

	if count > 0 {
		uc.logger.Warn("dropped undeliverable job events, count = %d", count)
	}

	return nil
}

func ids(events []*entity.JobEvent) uuid.UUIDs {
	res := make(uuid.UUIDs, 0, len(events))
	for _, e := range events {
		res = append(res, e.ID)
	}

	return res
}
