package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog (método, ruta, estado, latencia).
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}
