package v1

import (
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewTransformRoutes(
	apiGroup fiber.Router,
	img usecase.ImageUseCase,
	tr usecase.TransformUseCase,
	info Info,
	l logger.Interface,
) {
	r := &V1{img: img, tr: tr, info: info, logger: l}

	{
		apiGroup.Post("/upload-photo", r.uploadPhoto)
		apiGroup.Post("/transform", r.transform)
		apiGroup.Get("/job-status/:jobId", r.jobStatus)
		apiGroup.Delete("/job/:jobId", r.deleteJob)

		apiGroup.Get("/health", r.health)
		apiGroup.Get("/config", r.config)
	}
}

func NewWebRoutes(root fiber.Router, l logger.Interface) {
	r := &V1{logger: l}

	root.Get("/", r.showUI)
}
