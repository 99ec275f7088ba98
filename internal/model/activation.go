package model

import "time"

const (
	// ActivationApplied: the authority confirmed the license mutation and
	// returned a license id. Replays of the same pair are answered from the
	// journal without contacting the authority again.
	ActivationApplied = "APPLIED"
	// ActivationPendingSync: the payment is verified but the authority was
	// unreachable; its own reconciliation will pick the pair up.
	ActivationPendingSync = "PENDING_SYNC"
)

// ActivationRecord journals one verified (order_id, payment_id) pair. It is a
// dedup/audit record, not license state: the license authority stays the
// arbiter of what a replayed pair means.
type ActivationRecord struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	OrderID   string `gorm:"size:64;uniqueIndex:idx_order_payment;not null"`
	PaymentID string `gorm:"size:64;uniqueIndex:idx_order_payment;not null"`
	AccountID string `gorm:"size:64;index"`
	Plan      string `gorm:"size:32;not null"`
	LicenseID string `gorm:"size:64"`
	Status    string `gorm:"size:32;index;not null"` // APPLIED, PENDING_SYNC

	ProcessedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
