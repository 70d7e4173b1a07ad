package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
	"github.com/google/uuid"
)

// OutboxRepo keeps job events until the relay has delivered them.
type OutboxRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entity.JobEvent
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{events: make(map[uuid.UUID]*entity.JobEvent)}
}

func (r *OutboxRepo) Create(_ context.Context, event *entity.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *event
	r.events[event.ID] = &e

	return nil
}

func (r *OutboxRepo) GetPendingEvents(_ context.Context, maxRetries, limit int) ([]*entity.JobEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]*entity.JobEvent, 0, len(r.events))
	for _, e := range r.events {
		if e.RetryCount < maxRetries {
			c := *e
			events = append(events, &c)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})

	if len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (r *OutboxRepo) MarkAsProcessedBatch(_ context.Context, IDs uuid.UUIDs) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int
	for _, id := range IDs {
		if _, ok := r.events[id]; ok {
			delete(r.events, id)
			affected++
		}
	}

	if affected == 0 {
		return fmt.Errorf("OutboxRepo - MarkAsProcessedBatch: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) IncrementRetryCountBatch(_ context.Context, IDs uuid.UUIDs) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int
	for _, id := range IDs {
		if e, ok := r.events[id]; ok {
			e.RetryCount++
			affected++
		}
	}

	if affected == 0 {
		return fmt.Errorf("OutboxRepo - IncrementRetryCountBatch: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) DeleteExhausted(_ context.Context, maxRetries int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, e := range r.events {
		if e.RetryCount >= maxRetries {
			delete(r.events, id)
			count++
		}
	}

	return count, nil
}
