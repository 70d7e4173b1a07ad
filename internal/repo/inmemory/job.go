package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

// JobRepo stores whole-record snapshots. Readers always get a copy.
type JobRepo struct {
	mu   sync.RWMutex
	jobs map[string]*entity.Job
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: make(map[string]*entity.Job)}
}

func (r *JobRepo) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; ok {
		return fmt.Errorf("JobRepo - Create: duplicate id %s", job.ID)
	}

	r.jobs[job.ID] = job.Clone()

	return nil
}

func (r *JobRepo) Get(_ context.Context, id string) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("JobRepo - Get: %w", errs.ErrRecordNotFound)
	}

	return job.Clone(), nil
}

func (r *JobRepo) Update(_ context.Context, id string, mutate func(job *entity.Job)) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("JobRepo - Update: %w", errs.ErrRecordNotFound)
	}

	next := current.Clone()
	mutate(next)
	r.jobs[id] = next

	return next.Clone(), nil
}

func (r *JobRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return fmt.Errorf("JobRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	delete(r.jobs, id)

	return nil
}
