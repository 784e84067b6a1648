package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recepciones-api/internal/application/dto"
	"github.com/jhoicas/Recepciones-api/internal/domain"
)

// errorMapping status HTTP y código de cada error de dominio. El orden importa:
// se toma la primera coincidencia.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrAlreadyProcessed, fiber.StatusConflict, "ALREADY_PROCESSED"},
	{domain.ErrConfirmationInProgress, fiber.StatusConflict, "CONFIRMATION_IN_PROGRESS"},
	{domain.ErrPersistence, fiber.StatusInternalServerError, "PERSISTENCE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrMissingCatalog, fiber.StatusInternalServerError, "MISSING_CATALOG"},
	{domain.ErrUpstreamContract, fiber.StatusBadGateway, "UPSTREAM_UNEXPECTED_RESPONSE"},
	{domain.ErrUpstreamUnavailable, fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
}

// writeError responde dto.ErrorResponse según el error de dominio.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: userMessage(err, m.err)})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// userMessage quita el prefijo "<sentinel>: " cuando el caso de uso ya agregó un mensaje propio.
func userMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && rest != "" {
		return rest
	}
	return msg
}

func validationError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
