package middleware

import (
	"errors"

	"agrimarket/apperrors"
	"agrimarket/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every handler error as
// {"success": false, "error": {"code", "message"}}.
func ErrorHandler(log *logger.Log) fiber.ErrorHandler {
	entry := log.WithComponent("http")
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &fiberErr):
			appErr = apperrors.New(kindForStatus(fiberErr.Code), fiberErr.Message)
			appErr.StatusCode = fiberErr.Code
		default:
			appErr = apperrors.Internal(err, "internal server error")
		}

		fields := logger.Fields{"method": c.Method(), "path": c.Path(), "status": appErr.StatusCode}
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			entry.WithFields(fields).WithError(err).Error("❌ request failed")
		} else {
			entry.WithFields(fields).Debug(appErr.Message)
		}

		return c.Status(appErr.StatusCode).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    appErr.Kind,
				"message": appErr.Message,
			},
		})
	}
}

func kindForStatus(code int) apperrors.Kind {
	switch code {
	case fiber.StatusBadRequest:
		return apperrors.KindBadRequest
	case fiber.StatusUnauthorized:
		return apperrors.KindUnauthorized
	case fiber.StatusNotFound:
		return apperrors.KindNotFound
	case fiber.StatusConflict:
		return apperrors.KindConflict
	default:
		return apperrors.KindInternal
	}
}
