package v1

import (
	"strconv"
	"time"

	"github.com/andreyxaxa/Photo-Transformer/internal/controller/restapi/v1/response"
	"github.com/gofiber/fiber/v2"
)

// @Summary  	Health check
// @Tags 		system
// @Produce 	json
// @Success 	200 {object} response.Health
// @Router 		/api/health [get]
func (r *V1) health(ctx *fiber.Ctx) error {
	return ctx.JSON(response.Health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// @Summary  	Effective configuration
// @Tags 		system
// @Produce 	json
// @Success 	200 {object} response.Config
// @Router 		/api/config [get]
func (r *V1) config(ctx *fiber.Ctx) error {
	port, _ := strconv.Atoi(r.info.Port)

	return ctx.JSON(response.Config{
		Model:   r.info.Model,
		Mock:    r.info.Mock,
		Host:    r.info.Host,
		Port:    port,
		Storage: "memory",
		TTLMs:   r.info.TTLMillis,
	})
}
