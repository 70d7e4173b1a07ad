package restapi

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Photo-Transformer/config"
	v1 "github.com/andreyxaxa/Photo-Transformer/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Photo-Transformer/internal/usecase"
	"github.com/andreyxaxa/Photo-Transformer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// @title Photo transformer
// @version 1.0.0
// @host localhost:3000
// @BasePath /
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	img usecase.ImageUseCase,
	tr usecase.TransformUseCase,
	l logger.Interface,
) {
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiGroup := app.Group("/api")
	{
		v1.NewTransformRoutes(apiGroup, img, tr, v1.Info{
			Model:     cfg.Provider.Model,
			Mock:      cfg.Transform.MockEnabled,
			Host:      cfg.HTTP.Host,
			Port:      cfg.HTTP.Port,
			TTLMillis: cfg.Retention.JobTTLMillis,
		}, l)
	}

	v1.NewWebRoutes(app, l)
}

// ErrorHandler renders errors that escape the handlers as {"error": ...}.
// An oversized body is reported as a bad upload.
func ErrorHandler(l logger.Interface) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := http.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, msg = fe.Code, fe.Message
		}

		switch code {
		case http.StatusRequestEntityTooLarge:
			code, msg = http.StatusBadRequest, "File too large (max 10MB)"
		case http.StatusInternalServerError:
			l.Error(err, "restapi - ErrorHandler")
			msg = "Internal server error"
		}

		return ctx.Status(code).JSON(fiber.Map{"error": msg})
	}
}
