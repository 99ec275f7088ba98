package service

import (
	"context"
	"fmt"
	"time"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/client"
	"joincloud-billing/internal/config"
	"joincloud-billing/internal/dto"
)

// MinOrderAmountPaise is the minimum transactable unit Razorpay accepts.
const MinOrderAmountPaise = 100

type OrderService interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*dto.CreateOrderResponse, error)
}

type orderServiceImpl struct {
	razorpayClient client.RazorpayClient
	razorpayCfg    *config.Razorpay
}

func NewOrderService(razorpayClient client.RazorpayClient, razorpayCfg *config.Razorpay) OrderService {
	return &orderServiceImpl{
		razorpayClient: razorpayClient,
		razorpayCfg:    razorpayCfg,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*dto.CreateOrderResponse, error) {
	if !s.razorpayCfg.Configured() {
		return nil, apperrors.New(apperrors.NotConfigured,
			"Razorpay not configured on this server.")
	}

	if amountPaise < MinOrderAmountPaise {
		return nil, apperrors.New(apperrors.InvalidInput,
			fmt.Sprintf("amount_paise must be >= %d.", MinOrderAmountPaise))
	}

	if receipt == "" {
		// Time-derived default. Reduces accidental duplicate orders from the
		// same client, but is not collision-proof under concurrent requests
		// within the same millisecond.
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}

	order, err := s.razorpayClient.CreateOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	return &dto.CreateOrderResponse{
		OrderID: order.ID,
		// The key id only identifies which gateway account to target; it is
		// safe to hand to an untrusted client. The secret never leaves the
		// server.
		KeyID:    s.razorpayCfg.KeyID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}
