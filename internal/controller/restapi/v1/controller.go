package v1

import (
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
)

// Info is the effective configuration exposed by GET /api/config.
type Info struct {
	Model     string
	Mock      bool
	Host      string
	Port      string
	TTLMillis int64
}

type V1 struct {
	img    usecase.ImageUseCase
	tr     usecase.TransformUseCase
	info   Info
	logger logger.Interface
}
