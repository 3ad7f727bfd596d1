package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalRequestID clave en c.Locals del identificador de la petición.
const LocalRequestID = "request_id"

// RequestLogger asigna un X-Request-ID (o respeta el recibido) y registra cada petición con zerolog.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalRequestID, rid)
		c.Set(fiber.HeaderXRequestID, rid)

		start := time.Now()
		err := c.Next()

		ev := log.Info()
		if status := c.Response().StatusCode(); status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("petición HTTP")
		return err
	}
}

// GetRequestID devuelve el identificador asignado por RequestLogger.
func GetRequestID(c *fiber.Ctx) string {
	v := c.Locals(LocalRequestID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
