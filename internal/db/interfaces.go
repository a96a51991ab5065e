package db

import (
	"context"
	"time"

	"shifttrack-backend-go/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// GetByStripeCustomerID resolves a user from the payment provider's
	// customer reference, used by webhook processing.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// ShiftRepository defines the interface for shift storage operations.
type ShiftRepository interface {
	Create(ctx context.Context, shift *models.Shift) (string, error) // Returns new shift ID
	GetByID(ctx context.Context, shiftID string) (*models.Shift, error)
	// GetByUserPeriod lists shifts whose start time falls in [from, to),
	// ordered by start time descending.
	GetByUserPeriod(ctx context.Context, userID string, from, to time.Time) ([]*models.Shift, error)
	// GetRunning returns the user's currently running shift, or ErrNotFound.
	GetRunning(ctx context.Context, userID string) (*models.Shift, error)
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, shiftID string) error
}

// InvoiceRepository defines the interface for invoice storage operations.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) (string, error) // Returns new invoice ID
	GetByID(ctx context.Context, invoiceID string) (*models.Invoice, error)
	GetByUserID(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.Invoice, error)
	Delete(ctx context.Context, invoiceID string) error
	// NextNumber atomically advances the user's invoice sequence for the
	// given year and returns the new sequence value (starting at 1).
	NextNumber(ctx context.Context, userID string, year int) (int64, error)
}

// AuditRepository defines the interface for audit log storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
