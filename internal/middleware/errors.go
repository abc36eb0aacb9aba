package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/siaga-app/siaga/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindIntegrity:    http.StatusConflict,
	apperr.KindLocked:       http.StatusLocked,
	apperr.KindPersistence:  http.StatusInternalServerError,
}

// ErrorHandler renders handler errors as {"error": message} with a status
// derived from the apperr kind. Persistence failures are logged and their
// cause is hidden from the client.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := http.StatusInternalServerError
		message := http.StatusText(status)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status, message = fe.Code, fe.Message
		} else if kind := apperr.KindOf(err); kind != "" {
			if s, ok := kindStatus[kind]; ok {
				status = s
			}
			if kind != apperr.KindPersistence {
				message = apperr.Message(err)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("path", c.Path()),
				slog.String("request_id", RequestIDFrom(c)),
				slog.Any("error", err))
		}
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}
