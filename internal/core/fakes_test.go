package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shifttrack-backend-go/internal/db"
	"shifttrack-backend-go/internal/models"
)

// In-memory repository fakes. They implement just enough of the db
// interfaces for service tests; no ordering or pagination subtleties beyond
// what the services rely on.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	for _, u := range r.users {
		if u.StripeCustomerID == customerID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user '%s' already exists", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

type fakeShiftRepo struct {
	shifts map[string]*models.Shift
	nextID int
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: map[string]*models.Shift{}}
}

func (r *fakeShiftRepo) Create(ctx context.Context, shift *models.Shift) (string, error) {
	r.nextID++
	shift.ID = fmt.Sprintf("shift-%d", r.nextID)
	copied := *shift
	r.shifts[shift.ID] = &copied
	return shift.ID, nil
}

func (r *fakeShiftRepo) GetByID(ctx context.Context, shiftID string) (*models.Shift, error) {
	s, ok := r.shifts[shiftID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeShiftRepo) GetByUserPeriod(ctx context.Context, userID string, from, to time.Time) ([]*models.Shift, error) {
	var out []*models.Shift
	for _, s := range r.shifts {
		if s.UserID != userID {
			continue
		}
		if s.StartTime.Before(from) || !s.StartTime.Before(to) {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (r *fakeShiftRepo) GetRunning(ctx context.Context, userID string) (*models.Shift, error) {
	for _, s := range r.shifts {
		if s.UserID == userID && s.EndTime == nil {
			copied := *s
			return &copied, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeShiftRepo) Update(ctx context.Context, shift *models.Shift) error {
	if _, ok := r.shifts[shift.ID]; !ok {
		return db.ErrNotFound
	}
	copied := *shift
	r.shifts[shift.ID] = &copied
	return nil
}

func (r *fakeShiftRepo) Delete(ctx context.Context, shiftID string) error {
	if _, ok := r.shifts[shiftID]; !ok {
		return db.ErrNotFound
	}
	delete(r.shifts, shiftID)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*models.Invoice
	counters map[string]int64
	nextID   int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*models.Invoice{}, counters: map[string]int64{}}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) (string, error) {
	r.nextID++
	invoice.ID = fmt.Sprintf("inv-%d", r.nextID)
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return invoice.ID, nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInvoiceRepo) GetByUserID(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (r *fakeInvoiceRepo) Delete(ctx context.Context, invoiceID string) error {
	if _, ok := r.invoices[invoiceID]; !ok {
		return db.ErrNotFound
	}
	delete(r.invoices, invoiceID)
	return nil
}

func (r *fakeInvoiceRepo) NextNumber(ctx context.Context, userID string, year int) (int64, error) {
	key := fmt.Sprintf("%s-%d", userID, year)
	r.counters[key]++
	return r.counters[key], nil
}

type fakeAuditRepo struct {
	entries []models.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, logEntry models.AuditLog) error {
	r.entries = append(r.entries, logEntry)
	return nil
}
