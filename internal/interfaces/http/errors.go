package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
// El aviso de cuota no es un error para el cliente: se responde 200 con el aviso.
func writeError(c *fiber.Ctx, err error) error {
	var quota *billing.QuotaExceededError
	switch {
	case errors.As(err, &quota):
		return c.Status(fiber.StatusOK).JSON(quota.Advisory)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCollection):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrRateLookupMiss):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "HSN_RATE_MISSING", Message: err.Error()})
	case errors.Is(err, domain.ErrArtifactNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PDF_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrMessagingNotReady):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "MESSAGING_NOT_READY", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
