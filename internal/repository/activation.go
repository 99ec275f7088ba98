package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"joincloud-billing/internal/model"
)

// ActivationRepository journals verified (order_id, payment_id) pairs so a
// client retry of the verify call never re-applies a license mutation.
type ActivationRepository interface {
	Find(ctx context.Context, orderID, paymentID string) (*model.ActivationRecord, error)
	MarkApplied(ctx context.Context, orderID, paymentID, accountID, plan, licenseID string) error
	MarkPendingSync(ctx context.Context, orderID, paymentID, accountID, plan string) error
	PromoteToApplied(ctx context.Context, orderID, paymentID, licenseID string) error
}

type activationRepoImpl struct {
	db *gorm.DB
}

func NewActivationRepository(db *gorm.DB) ActivationRepository {
	return &activationRepoImpl{db: db}
}

// Find returns the journal row for the pair, or (nil, nil) when the pair has
// never been seen.
func (r *activationRepoImpl) Find(ctx context.Context, orderID, paymentID string) (*model.ActivationRecord, error) {
	var rec model.ActivationRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND payment_id = ?", orderID, paymentID).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *activationRepoImpl) MarkApplied(ctx context.Context, orderID, paymentID, accountID, plan, licenseID string) error {
	return r.db.WithContext(ctx).Create(&model.ActivationRecord{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		PaymentID:   paymentID,
		AccountID:   accountID,
		Plan:        plan,
		LicenseID:   licenseID,
		Status:      model.ActivationApplied,
		ProcessedAt: time.Now(),
	}).Error
}

func (r *activationRepoImpl) MarkPendingSync(ctx context.Context, orderID, paymentID, accountID, plan string) error {
	return r.db.WithContext(ctx).Create(&model.ActivationRecord{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		PaymentID:   paymentID,
		AccountID:   accountID,
		Plan:        plan,
		Status:      model.ActivationPendingSync,
		ProcessedAt: time.Now(),
	}).Error
}

// PromoteToApplied upgrades a pending pair once the authority has confirmed
// it on a later retry.
func (r *activationRepoImpl) PromoteToApplied(ctx context.Context, orderID, paymentID, licenseID string) error {
	result := r.db.WithContext(ctx).Model(&model.ActivationRecord{}).
		Where("order_id = ? AND payment_id = ? AND status = ?",
			orderID, paymentID, model.ActivationPendingSync).
		Updates(map[string]interface{}{
			"license_id":   licenseID,
			"status":       model.ActivationApplied,
			"processed_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
