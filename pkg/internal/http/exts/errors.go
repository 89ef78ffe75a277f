package exts

import (
	"errors"

	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:       fiber.StatusBadRequest,
	services.KindDuplicateAddress: fiber.StatusConflict,
	services.KindPermissionDenied: fiber.StatusForbidden,
	services.KindNotFound:         fiber.StatusNotFound,
}

// ErrorHandler renders every failure as {"error", "field", "message"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var typed *services.Error
	if errors.As(err, &typed) {
		status, ok := kindStatus[typed.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   typed.Kind,
			"field":   typed.Field,
			"message": typed.Message,
		})
	}

	var transport *fiber.Error
	if errors.As(err, &transport) {
		return c.Status(transport.Code).JSON(fiber.Map{
			"error":   utils.StatusMessage(transport.Code),
			"field":   "",
			"message": transport.Message,
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("An unexpected error occurred when handling request...")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "InternalError",
		"field":   "",
		"message": "internal server error",
	})
}
