package janitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

// Janitor periodically evicts uploads that never became a job.
type Janitor struct {
	img    usecase.ImageUseCase
	logger logger.Interface

	interval time.Duration
	maxAge   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(img usecase.ImageUseCase, l logger.Interface, interval, maxAge time.Duration) *Janitor {
	return &Janitor{
		img:      img,
		logger:   l,
		interval: interval,
		maxAge:   maxAge,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	if !j.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Janitor - Start: %w", errs.ErrAlreadyStarted)
	}

	ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, err := j.img.SweepOrphanImages(ctx, j.maxAge)
				if err != nil {
					j.logger.Error(err, "Janitor - Start - j.img.SweepOrphanImages")
				}
			}
		}
	}()

	return nil
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	if !j.started.Load() {
		return nil
	}

	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Janitor - Shutdown: %w", ctx.Err())
	}
}
