package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-result-api/internal/config"
	"github.com/noah-isme/gema-result-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	School      string    `json:"school,omitempty"`
	Archive     bool      `json:"archive"`
	EventBroker string    `json:"event_broker"`
}

// HealthCheck reports liveness plus which optional print and event backends
// are configured.
func HealthCheck(cfg config.Config) fiber.Handler {
	broker := "none"
	switch {
	case cfg.RedisURL != "":
		broker = "redis"
	case cfg.NATSURL != "":
		broker = "nats"
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			School:      cfg.School.Name,
			Archive:     cfg.ArchiveEnabled(),
			EventBroker: broker,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
