package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"joincloud-billing/internal/dto"
	"joincloud-billing/internal/middleware"
	"joincloud-billing/internal/service"
)

type DesktopHandler struct {
	desktopService service.DesktopService
}

func NewDesktopHandler(desktopService service.DesktopService) *DesktopHandler {
	return &DesktopHandler{desktopService: desktopService}
}

// DesktopToken requests a one-time token for the caller's device and returns
// the delivery descriptor (loopback callback or deep link). The session
// bearer is forwarded to the authority as-is; the token itself is only ever
// placed in the response URL.
func (h *DesktopHandler) DesktopToken(c echo.Context) error {
	ctx := c.Request().Context()

	bearer, _ := c.Get(middleware.BearerTokenKey).(string)
	if bearer == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	var req dto.DesktopTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid JSON body."})
	}

	resp, err := h.desktopService.Handoff(ctx, req.DeviceID, bearer)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
