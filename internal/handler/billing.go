package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"joincloud-billing/internal/dto"
	"joincloud-billing/internal/middleware"
	"joincloud-billing/internal/service"
)

type BillingHandler struct {
	orderService      service.OrderService
	activationService service.ActivationService
	modeResolver      service.ModeResolver
}

func NewBillingHandler(
	orderService service.OrderService,
	activationService service.ActivationService,
	modeResolver service.ModeResolver,
) *BillingHandler {
	return &BillingHandler{
		orderService:      orderService,
		activationService: activationService,
		modeResolver:      modeResolver,
	}
}

func (h *BillingHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid JSON body."})
	}

	resp, err := h.orderService.CreateOrder(ctx, req.AmountPaise, req.Receipt)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid JSON body."})
	}

	resp, err := h.activationService.VerifyAndActivate(ctx, &req)
	if err != nil {
		return writeError(c, err)
	}

	// Note: resp may be a qualified success carrying a warning; it is still
	// HTTP 200 so the paying customer never sees a hard failure for an
	// authority outage.
	return c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) DevActivate(c echo.Context) error {
	ctx := c.Request().Context()

	accountID, _ := c.Get(middleware.AccountIDKey).(string)
	if accountID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	var req dto.DevActivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid JSON body."})
	}

	resp, err := h.activationService.DevActivate(ctx, accountID, &req)
	if err != nil {
		// The route simply does not exist while billing runs LIVE.
		if errors.Is(err, service.ErrDevModeDisabled) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) BillingMode(c echo.Context) error {
	mode := h.modeResolver.Resolve(c.Request().Context())
	return c.JSON(http.StatusOK, dto.BillingModeResponse{PaymentMode: string(mode)})
}
