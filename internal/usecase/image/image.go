package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/repo"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/andreyxaxa/Photo-Transformer/pkg/types/errs"
	"github.com/google/uuid"
)

// MaxUploadBytes caps a single uploaded photo.
const MaxUploadBytes = 10 << 20

type ImageUseCase struct {
	blobRepo repo.BlobRepo

	logger logger.Interface
}

func New(blobRepo repo.BlobRepo, l logger.Interface) *ImageUseCase {
	return &ImageUseCase{
		blobRepo: blobRepo,
		logger:   l,
	}
}

func (uc *ImageUseCase) UploadImage(ctx context.Context, data []byte, originalName, contentType string) (*entity.Blob, error) {
	switch {
	case !strings.HasPrefix(contentType, "image/"):
		return nil, fmt.Errorf("ImageUseCase - UploadImage: %w: only image files are allowed", errs.ErrInvalidUpload)
	case len(data) == 0:
		return nil, fmt.Errorf("ImageUseCase - UploadImage: %w: empty file", errs.ErrInvalidUpload)
	case len(data) > MaxUploadBytes:
		return nil, fmt.Errorf("ImageUseCase - UploadImage: %w: file exceeds %d bytes", errs.ErrInvalidUpload, MaxUploadBytes)
	}

	blob := &entity.Blob{
		ID:           uuid.NewString(),
		Data:         data,
		MIMEType:     contentType,
		OriginalName: originalName,
		Size:         int64(len(data)),
		UploadedAt:   time.Now(),
	}

	err := uc.blobRepo.Put(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - UploadImage - uc.blobRepo.Put: %w", err)
	}

	uc.logger.Info("Photo uploaded: %s (%s)", blob.ID, originalName)

	return blob, nil
}

// SweepOrphanImages evicts uploads that no transformation claimed within olderThan.
func (uc *ImageUseCase) SweepOrphanImages(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := uc.blobRepo.DeleteUnclaimedBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("ImageUseCase - SweepOrphanImages - uc.blobRepo.DeleteUnclaimedBefore: %w", err)
	}

	if len(ids) > 0 {
		uc.logger.Info("Evicted %d unclaimed uploads older than %s", len(ids), olderThan)
	}

	return len(ids), nil
}
