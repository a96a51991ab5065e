package core

import (
	"context"
	"time"

	"shifttrack-backend-go/internal/models"
)

// UserService defines the interface for user profile operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it
	// creates the profile record with default values — the "missing profile
	// row" state exists only until the first authenticated call.
	GetOrCreate(ctx context.Context, userID, email, displayName string, emailVerified bool) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateSettings(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.User, error)
	// ApplySubscriptionUpdate persists subscription state reported by the
	// payment provider (webhook path).
	ApplySubscriptionUpdate(ctx context.Context, userID string, upd SubscriptionUpdate) (*models.User, error)
}

// SubscriptionUpdate carries the subscription fields a billing event may
// change. Nil pointers leave the stored value untouched.
type SubscriptionUpdate struct {
	Status         *string
	Tier           *string
	CustomerID     *string
	SubscriptionID *string
}

// ShiftService defines the interface for shift tracking operations.
type ShiftService interface {
	StartShift(ctx context.Context, userID string, req models.StartShiftRequest) (*models.Shift, error)
	EndShift(ctx context.Context, userID, shiftID string) (*models.Shift, error)
	StartBreak(ctx context.Context, userID, shiftID string) (*models.Shift, error)
	EndBreak(ctx context.Context, userID, shiftID string) (*models.Shift, error)
	ActiveShift(ctx context.Context, userID string) (*models.Shift, error)
	CreateManual(ctx context.Context, userID string, req models.CreateShiftRequest) (*models.Shift, error)
	UpdateShift(ctx context.Context, userID, shiftID string, req models.UpdateShiftRequest) (*models.Shift, error)
	DeleteShift(ctx context.Context, userID, shiftID string) error
	ListShifts(ctx context.Context, userID string, from, to time.Time) ([]*models.Shift, error)
	Summary(ctx context.Context, userID string, from, to time.Time) (*EarningsSummary, error)
}

// EarningsSummary aggregates a period of shifts for the dashboard.
type EarningsSummary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	ShiftCount    int       `json:"shiftCount"`
	WorkedMinutes int64     `json:"workedMinutes"`
	BreakMinutes  int64     `json:"breakMinutes"`
	EarningsCents int64     `json:"earningsCents"`
	Currency      string    `json:"currency"`
}

// InvoiceService defines the interface for invoice operations.
type InvoiceService interface {
	Generate(ctx context.Context, userID string, req models.GenerateInvoiceRequest) (*models.Invoice, error)
	GetByID(ctx context.Context, userID, invoiceID string) (*models.Invoice, error)
	List(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.Invoice, error)
	Delete(ctx context.Context, userID, invoiceID string) error
	// RenderPDF renders the invoice as a PDF document.
	RenderPDF(ctx context.Context, userID, invoiceID string) ([]byte, error)
	// RenderCSV renders the invoice line items as CSV.
	RenderCSV(ctx context.Context, userID, invoiceID string) ([]byte, error)
}

// BillingService defines the interface for payment provider operations.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}
