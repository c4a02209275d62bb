package models

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the uniform envelope for successful API responses.
type SuccessResponse struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform envelope for failed API responses.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

// errorDetails is the serializable slice of an AppError exposed to callers.
type errorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithData writes a success envelope with the given status code.
func RespondWithData(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(SuccessResponse{
		OK:      true,
		Data:    data,
		Message: message,
	})
}

// RespondWithError writes an error envelope, deriving the status code from the
// error. Domain errors surface their message verbatim; infrastructure errors
// are logged and reported as a generic internal error so internals never leak.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)

	if appErr.Code == "INTERNAL_ERROR" && appErr.Err != nil {
		slog.ErrorContext(c.UserContext(), "internal error",
			slog.String("path", c.Path()),
			slog.String("error", appErr.Err.Error()),
		)
	}

	return c.Status(appErr.Status).JSON(ErrorResponse{
		OK:      false,
		Message: appErr.Message,
		Error: errorDetails{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}
