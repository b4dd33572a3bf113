package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// errorStatus traduce un error de dominio a estado HTTP y código de respuesta.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict, "INVALID_STATE_TRANSITION"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNoActiveMovements):
		return fiber.StatusConflict, "NO_ACTIVE_MOVEMENTS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde el error; los 500 se registran y no exponen la causa.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
