package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"shifttrack-backend-go/internal/config"
	"shifttrack-backend-go/internal/db"
	"shifttrack-backend-go/internal/models"
)

// Custom errors for the InvoiceService
var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceForbidden   = errors.New("user does not own this invoice")
	ErrEmptyInvoicePeriod = errors.New("no ended shifts in the requested period")
	ErrInvalidPeriod      = errors.New("period end must be after period start")
)

// invoiceService implements the InvoiceService interface.
type invoiceService struct {
	invoiceRepo  db.InvoiceRepository
	shiftRepo    db.ShiftRepository
	userRepo     db.UserRepository
	auditService AuditService
	appConfig    *config.Config
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService instance.
func NewInvoiceService(
	ir db.InvoiceRepository,
	sr db.ShiftRepository,
	ur db.UserRepository,
	as AuditService,
	cfg *config.Config,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  ir,
		shiftRepo:    sr,
		userRepo:     ur,
		auditService: as,
		appConfig:    cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *invoiceService) ownedInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice '%s'", ErrInvoiceNotFound, invoiceID)
		}
		return nil, fmt.Errorf("failed to get invoice '%s': %w", invoiceID, err)
	}
	if invoice.UserID != userID {
		return nil, fmt.Errorf("%w: invoice '%s'", ErrInvoiceForbidden, invoiceID)
	}
	return invoice, nil
}

// itemKey groups billed minutes by calendar day and rate, so a day worked at
// two different rates yields two lines.
type itemKey struct {
	day  string
	rate int64
}

// Generate builds an invoice from the user's ended shifts whose start time
// falls in [PeriodStart, PeriodEnd). Running shifts are excluded. Line items
// collapse shifts per day (and rate); the invoice number advances the
// per-user yearly sequence.
func (s *invoiceService) Generate(ctx context.Context, userID string, req models.GenerateInvoiceRequest) (*models.Invoice, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, ErrInvalidPeriod
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s' for invoice: %w", userID, err)
	}

	shifts, err := s.shiftRepo.GetByUserPeriod(ctx, userID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts for invoice: %w", err)
	}

	now := s.now()
	grouped := make(map[itemKey]*models.InvoiceItem)
	for _, shift := range shifts {
		if shift.Running() {
			continue
		}
		minutes := shift.WorkedMinutes(now)
		if minutes == 0 {
			continue
		}
		day := shift.StartTime.UTC().Truncate(24 * time.Hour)
		key := itemKey{day: day.Format("2006-01-02"), rate: shift.HourlyRateCents}
		item, ok := grouped[key]
		if !ok {
			item = &models.InvoiceItem{
				Date:        day,
				Description: fmt.Sprintf("Work on %s", key.day),
				RateCents:   shift.HourlyRateCents,
			}
			grouped[key] = item
		}
		item.Minutes += minutes
	}
	if len(grouped) == 0 {
		return nil, ErrEmptyInvoicePeriod
	}

	items := make([]models.InvoiceItem, 0, len(grouped))
	var subtotal int64
	for _, item := range grouped {
		item.AmountCents = item.Minutes * item.RateCents / 60
		subtotal += item.AmountCents
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date.Equal(items[j].Date) {
			return items[i].RateCents < items[j].RateCents
		}
		return items[i].Date.Before(items[j].Date)
	})

	taxRate := s.appConfig.DefaultTaxRatePct
	if req.TaxRatePct != nil {
		if *req.TaxRatePct < 0 || *req.TaxRatePct >= 100 {
			return nil, errors.New("taxRatePct must be in [0, 100)")
		}
		taxRate = *req.TaxRatePct
	}
	tax := int64(math.Round(float64(subtotal) * taxRate / 100))

	year := now.Year()
	seq, err := s.invoiceRepo.NextNumber(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		UserID:        userID,
		Number:        fmt.Sprintf("INV-%d-%04d", year, seq),
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		ClientName:    req.ClientName,
		ClientAddress: req.ClientAddress,
		Items:         items,
		SubtotalCents: subtotal,
		TaxRatePct:    taxRate,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
		Currency:      user.Currency,
		IssuedAt:      now,
	}
	if _, err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	if s.auditService != nil {
		_ = s.auditService.CreateAuditLog(ctx, models.AuditLog{
			UserID:     userID,
			Action:     "INVOICE_GENERATE",
			TargetType: "INVOICE",
			TargetID:   invoice.ID,
			Details:    map[string]interface{}{"number": invoice.Number, "totalCents": invoice.TotalCents},
		})
	}
	return invoice, nil
}

// GetByID retrieves an invoice the user owns.
func (s *invoiceService) GetByID(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	return s.ownedInvoice(ctx, userID, invoiceID)
}

// List returns the user's invoices, newest first.
func (s *invoiceService) List(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.Invoice, error) {
	invoices, err := s.invoiceRepo.GetByUserID(ctx, userID, paginationParams)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for user '%s': %w", userID, err)
	}
	return invoices, nil
}

// Delete removes an invoice the user owns. The invoice number is not reused.
func (s *invoiceService) Delete(ctx context.Context, userID, invoiceID string) error {
	invoice, err := s.ownedInvoice(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, invoice.ID); err != nil {
		return fmt.Errorf("failed to delete invoice '%s': %w", invoiceID, err)
	}
	if s.auditService != nil {
		_ = s.auditService.CreateAuditLog(ctx, models.AuditLog{
			UserID:     userID,
			Action:     "INVOICE_DELETE",
			TargetType: "INVOICE",
			TargetID:   invoice.ID,
		})
	}
	return nil
}

// RenderPDF renders the invoice as a PDF document.
func (s *invoiceService) RenderPDF(ctx context.Context, userID, invoiceID string) ([]byte, error) {
	invoice, err := s.ownedInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s' for invoice rendering: %w", userID, err)
	}
	return renderInvoicePDF(invoice, user)
}

// RenderCSV renders the invoice line items as CSV.
func (s *invoiceService) RenderCSV(ctx context.Context, userID, invoiceID string) ([]byte, error) {
	invoice, err := s.ownedInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	return renderInvoiceCSV(invoice)
}
