package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
)

type BlobRepo struct {
	mu    sync.RWMutex
	blobs map[string]*entity.Blob
}

func NewBlobRepo() *BlobRepo {
	return &BlobRepo{blobs: make(map[string]*entity.Blob)}
}

func (r *BlobRepo) Put(_ context.Context, blob *entity.Blob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blobs[blob.ID]; ok {
		return fmt.Errorf("BlobRepo - Put: duplicate id %s", blob.ID)
	}

	r.blobs[blob.ID] = blob

	return nil
}

func (r *BlobRepo) Get(_ context.Context, id string) (*entity.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blob, ok := r.blobs[id]
	if !ok {
		return nil, fmt.Errorf("BlobRepo - Get: %w", errs.ErrRecordNotFound)
	}

	return blob, nil
}

// Claim marks the blob as referenced by a transformation. The first claim time wins.
func (r *BlobRepo) Claim(_ context.Context, id string, at time.Time) (*entity.Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, ok := r.blobs[id]
	if !ok {
		return nil, fmt.Errorf("BlobRepo - Claim: %w", errs.ErrRecordNotFound)
	}

	if blob.ClaimedAt == nil {
		claimed := *blob
		claimed.ClaimedAt = &at
		r.blobs[id] = &claimed
		blob = &claimed
	}

	return blob, nil
}

func (r *BlobRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blobs[id]; !ok {
		return fmt.Errorf("BlobRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	delete(r.blobs, id)

	return nil
}

// DeleteUnclaimedBefore removes, in one step, every blob nobody claimed
// that was uploaded before the cutoff, and returns their ids.
func (r *BlobRepo) DeleteUnclaimedBefore(_ context.Context, before time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, blob := range r.blobs {
		if blob.ClaimedAt == nil && blob.UploadedAt.Before(before) {
			ids = append(ids, id)
			delete(r.blobs, id)
		}
	}
	sort.Strings(ids)

	return ids, nil
}
