package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/dto"
)

// writeError maps the error taxonomy onto HTTP. Client mistakes and upstream
// outages never share a status or a message, so a user can always tell "my
// payment is invalid" apart from "a dependency is down".
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	if kind, ok := apperrors.KindOf(err); ok {
		switch kind {
		case apperrors.InvalidInput, apperrors.SignatureInvalid:
			status = http.StatusBadRequest
		case apperrors.UpstreamRejected, apperrors.UpstreamUnavailable:
			status = http.StatusBadGateway
		case apperrors.NotConfigured:
			status = http.StatusServiceUnavailable
		}
	}

	slog.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(status, dto.ErrorResponse{Error: apperrors.MessageOf(err)})
}
