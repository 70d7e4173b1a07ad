package imageprocessor

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
	"github.com/andreyxaxa/Photo-Transformer/internal/infrastructure"
)

// ImageProcessorUseCase shapes the source image before it goes to the provider.
type ImageProcessorUseCase struct {
	p            infrastructure.ImageProcessor
	maxDimension int
}

func New(p infrastructure.ImageProcessor, maxDimension int) *ImageProcessorUseCase {
	return &ImageProcessorUseCase{
		p:            p,
		maxDimension: maxDimension,
	}
}

// PrepareInput downscales img when a maximum dimension is configured.
func (uc *ImageProcessorUseCase) PrepareInput(ctx context.Context, img entity.InlineImage) (entity.InlineImage, error) {
	if uc.maxDimension <= 0 {
		return img, nil
	}

	data, err := img.Bytes()
	if err != nil {
		return entity.InlineImage{}, fmt.Errorf("ImageProcessorUseCase - PrepareInput - img.Bytes: %w", err)
	}

	fitted, contentType, err := uc.p.Fit(ctx, img.MIMEType, data, uc.maxDimension)
	if err != nil {
		return entity.InlineImage{}, fmt.Errorf("ImageProcessorUseCase - PrepareInput - uc.p.Fit: %w", err)
	}

	return entity.NewInlineImage(fitted, contentType), nil
}
