package retention

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

const _evictTimeout = 5 * time.Second

// Scheduler owns one cancellable timer per job. Timer expiry and explicit
// deletion both end in remove.
type Scheduler struct {
	jobRepo  repo.JobRepo
	blobRepo repo.BlobRepo
	events   usecase.EventsUseCase
	logger   logger.Interface

	ttl time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func New(
	jobRepo repo.JobRepo,
	blobRepo repo.BlobRepo,
	events usecase.EventsUseCase,
	l logger.Interface,
	ttl time.Duration,
) *Scheduler {
	return &Scheduler{
		jobRepo:  jobRepo,
		blobRepo: blobRepo,
		events:   events,
		logger:   l,
		ttl:      ttl,
		timers:   make(map[string]*time.Timer),
	}
}

// Schedule arms the TTL timer for jobID. A job that already has a timer
// keeps it. A job that is already gone gets no timer.
func (s *Scheduler) Schedule(jobID, blobID string) {
	if !s.arm(jobID, blobID) {
		return
	}

	// A removal that ran before the timer was armed had nothing to cancel.
	_, err := s.jobRepo.Get(context.Background(), jobID)
	if errors.Is(err, errs.ErrRecordNotFound) {
		s.Cancel(jobID)
	}
}

func (s *Scheduler) arm(jobID, blobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if _, ok := s.timers[jobID]; ok {
		return false
	}

	var t *time.Timer
	t = time.AfterFunc(s.ttl, func() {
		s.fire(jobID, blobID, t)
	})
	s.timers[jobID] = t

	return true
}

// Cancel disarms the timer and reports whether one was pending.
func (s *Scheduler) Cancel(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[jobID]
	if !ok {
		return false
	}

	t.Stop()
	delete(s.timers, jobID)

	return true
}

func (s *Scheduler) Scheduled(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[jobID]

	return ok
}

// Evict removes the job and its blob right away and disarms the timer.
// Missing records are not an error.
func (s *Scheduler) Evict(ctx context.Context, jobID, blobID string) error {
	s.Cancel(jobID)

	removed, err := s.remove(ctx, jobID, blobID, entity.JobDeleted)
	if err != nil {
		return fmt.Errorf("Scheduler - Evict - s.remove: %w", err)
	}

	// covers a Schedule that armed while remove was running
	s.Cancel(jobID)

	if removed {
		s.logger.Info("Cleaned up job %s and image %s", jobID, blobID)
	}

	return nil
}

// Shutdown stops every pending timer. Records stay in memory until exit.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.closed = true
}

func (s *Scheduler) fire(jobID, blobID string, t *time.Timer) {
	s.mu.Lock()
	current, ok := s.timers[jobID]
	if !ok || current != t {
		s.mu.Unlock()
		return
	}
	delete(s.timers, jobID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), _evictTimeout)
	defer cancel()

	removed, err := s.remove(ctx, jobID, blobID, entity.JobEvicted)
	if err != nil {
		s.logger.Error(err, "Scheduler - fire - s.remove")
		return
	}

	if removed {
		s.logger.Info("Cleaned up job %s and image %s after TTL (%dms)", jobID, blobID, s.ttl.Milliseconds())
	}
}

// remove deletes the job and blob records. Only the caller whose job
// delete succeeds reports removed, so concurrent paths log once.
func (s *Scheduler) remove(ctx context.Context, jobID, blobID string, reason entity.JobEventType) (bool, error) {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil && !errors.Is(err, errs.ErrRecordNotFound) {
		return false, fmt.Errorf("Scheduler - remove - s.jobRepo.Get: %w", err)
	}

	removed := false
	if job != nil {
		err = s.jobRepo.Delete(ctx, jobID)
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, errs.ErrRecordNotFound):
			return false, fmt.Errorf("Scheduler - remove - s.jobRepo.Delete: %w", err)
		}

		if blobID == "" {
			blobID = job.BlobID
		}
	}

	if blobID != "" {
		err = s.blobRepo.Delete(ctx, blobID)
		if err != nil && !errors.Is(err, errs.ErrRecordNotFound) {
			return removed, fmt.Errorf("Scheduler - remove - s.blobRepo.Delete: %w", err)
		}
	}

	if removed {
		s.events.Record(ctx, entity.NewJobEvent(job, reason, time.Now()))
	}

	return removed, nil
}
