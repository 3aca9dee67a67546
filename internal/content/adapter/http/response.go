package http

import (
	"errors"
	"net/http"

	"showcase-cms/internal/content/domain/model"
	apperrors "showcase-cms/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// respondError maps domain and application errors to one status code table.
func respondError(c *fiber.Ctx, err error) error {
	status, code, details := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	return c.Status(status).JSON(Envelope{
		Success: false,
		Error:   code,
		Message: message,
		Details: details,
	})
}

func classify(err error) (int, string, map[string]interface{}) {
	var ve *apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation_failed", map[string]interface{}{"validation_errors": ve.Errors}
	}
	switch {
	case errors.Is(err, model.ErrInvalidParentID),
		errors.Is(err, model.ErrUnknownCollection),
		errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrUnknownParentKind),
		errors.Is(err, model.ErrCollectionKindMismatch):
		return http.StatusBadRequest, "invalid_argument", nil
	case errors.Is(err, model.ErrParentNotFound), errors.Is(err, model.ErrAssetNotFound):
		return http.StatusNotFound, "not_found", apperrors.Details(err)
	case errors.Is(err, model.ErrVersionConflict):
		return http.StatusConflict, "version_conflict", nil
	case errors.Is(err, model.ErrParentExists):
		return http.StatusConflict, "already_exists", nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode, string(appErr.Type), appErr.Details
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, "request_error", nil
	}
	return http.StatusInternalServerError, "internal", nil
}

// ErrorHandler is the fiber app error handler, so errors returned from any route share the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
