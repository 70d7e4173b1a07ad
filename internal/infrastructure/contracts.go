package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Photo-Transformer/internal/dto"
	"github.com/andreyxaxa/Photo-Transformer/internal/entity"
)

type (
	ProviderGateway interface {
		// Ready fails when the provider cannot be called at all.
		Ready() error
		Generate(ctx context.Context, req dto.GenerationRequest) (*dto.Generation, error)
	}

	ImageFetcher interface {
		Fetch(ctx context.Context, url string) (entity.InlineImage, error)
	}

	ImageProcessor interface {
		Fit(ctx context.Context, contentType string, data []byte, maxDimension int) ([]byte, string, error)
	}

	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.JobEvent) error
		Close() error
	}
)
