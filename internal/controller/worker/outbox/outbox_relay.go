package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

type Config struct {
	PollInterval        time.Duration
	CleanupInterval     time.Duration
	ProcessBatchTimeout time.Duration
	BatchSize           int
	MaxRetries          int
}

// OutboxRelay publishes staged job events and drops the ones that keep failing.
type OutboxRelay struct {
	events usecase.EventsUseCase
	es     infrastructure.EventsSender
	logger logger.Interface

	cfg Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	events usecase.EventsUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	cfg Config,
) *OutboxRelay {
	return &OutboxRelay{
		events: events,
		es:     es,
		logger: l,
		cfg:    cfg,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start: %w", errs.ErrAlreadyStarted)
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. publish pending events
	r.worker(r.cfg.PollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.cfg.ProcessBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// 2. drop events that ran out of retries
	r.worker(r.cfg.CleanupInterval, func() {
		err := r.events.CleanupOutbox(r.ctx, r.cfg.MaxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.events.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	events, err := r.events.GetPendingEvents(ctx, r.cfg.MaxRetries, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.events.GetPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	err = r.es.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")

		incErr := r.events.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.events.IncrementRetryCountBatch")
		}

		return
	}

	err = r.events.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.events.MarkAsProcessedBatch")
	}
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

// Shutdown stops the workers and closes the sender. It gives up waiting
// when ctx expires.
func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan error, 1)

	go func() {
		r.wg.Wait()
		done <- r.es.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("OutboxRelay - Shutdown - r.es.Close: %w", err)
		}

		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
