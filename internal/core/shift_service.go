package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shifttrack-backend-go/internal/db"
	"shifttrack-backend-go/internal/models"
)

// Custom errors for the ShiftService
var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftForbidden     = errors.New("user does not own this shift")
	ErrShiftAlreadyActive = errors.New("a shift is already running")
	ErrNoActiveShift      = errors.New("no shift is currently running")
	ErrShiftAlreadyEnded  = errors.New("shift has already ended")
	ErrBreakAlreadyOpen   = errors.New("a break is already running")
	ErrNoOpenBreak        = errors.New("no break is currently running")
	ErrInvalidShiftRange  = errors.New("shift end time must be after start time")
	ErrInvalidBreakRange  = errors.New("break must fall inside the shift window")
)

// shiftService implements the ShiftService interface.
type shiftService struct {
	shiftRepo    db.ShiftRepository
	userRepo     db.UserRepository
	auditService AuditService
	now          func() time.Time
}

// NewShiftService creates a new ShiftService instance.
func NewShiftService(sr db.ShiftRepository, ur db.UserRepository, as AuditService) ShiftService {
	return &shiftService{
		shiftRepo:    sr,
		userRepo:     ur,
		auditService: as,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ownedShift loads a shift and verifies ownership.
func (s *shiftService) ownedShift(ctx context.Context, userID, shiftID string) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: shift '%s'", ErrShiftNotFound, shiftID)
		}
		return nil, fmt.Errorf("failed to get shift '%s': %w", shiftID, err)
	}
	if shift.UserID != userID {
		return nil, fmt.Errorf("%w: shift '%s'", ErrShiftForbidden, shiftID)
	}
	return shift, nil
}

func (s *shiftService) audit(ctx context.Context, userID, action, shiftID string) {
	if s.auditService == nil {
		return
	}
	// Audit failures must not fail the user's action; the repository call
	// logs its own errors.
	_ = s.auditService.CreateAuditLog(ctx, models.AuditLog{
		UserID:     userID,
		Action:     action,
		TargetType: "SHIFT",
		TargetID:   shiftID,
	})
}

// StartShift begins a new shift at "now" with the user's current hourly
// rate snapshotted onto it. At most one shift may be running per user.
func (s *shiftService) StartShift(ctx context.Context, userID string, req models.StartShiftRequest) (*models.Shift, error) {
	if _, err := s.shiftRepo.GetRunning(ctx, userID); err == nil {
		return nil, ErrShiftAlreadyActive
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for running shift: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s' for rate snapshot: %w", userID, err)
	}

	shift := &models.Shift{
		UserID:          userID,
		StartTime:       s.now(),
		HourlyRateCents: user.HourlyRateCents,
		Currency:        user.Currency,
		Note:            req.Note,
	}
	if _, err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	s.audit(ctx, userID, "SHIFT_START", shift.ID)
	return shift, nil
}

// EndShift closes a running shift, closing any open break at the same instant.
func (s *shiftService) EndShift(ctx context.Context, userID, shiftID string) (*models.Shift, error) {
	shift, err := s.ownedShift(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Running() {
		return nil, ErrShiftAlreadyEnded
	}

	end := s.now()
	if i := shift.OpenBreak(); i >= 0 {
		shift.Breaks[i].EndTime = &end
	}
	shift.EndTime = &end
	if !end.After(shift.StartTime) {
		return nil, ErrInvalidShiftRange
	}

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to end shift '%s': %w", shiftID, err)
	}
	s.audit(ctx, userID, "SHIFT_END", shift.ID)
	return shift, nil
}

// StartBreak opens a break on a running shift.
func (s *shiftService) StartBreak(ctx context.Context, userID, shiftID string) (*models.Shift, error) {
	shift, err := s.ownedShift(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.Running() {
		return nil, ErrShiftAlreadyEnded
	}
	if shift.OpenBreak() >= 0 {
		return nil, ErrBreakAlreadyOpen
	}

	shift.Breaks = append(shift.Breaks, models.Break{StartTime: s.now()})
	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to start break on shift '%s': %w", shiftID, err)
	}
	s.audit(ctx, userID, "BREAK_START", shift.ID)
	return shift, nil
}

// EndBreak closes the open break on a running shift.
func (s *shiftService) EndBreak(ctx context.Context, userID, shiftID string) (*models.Shift, error) {
	shift, err := s.ownedShift(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}
	i := shift.OpenBreak()
	if i < 0 {
		return nil, ErrNoOpenBreak
	}

	end := s.now()
	shift.Breaks[i].EndTime = &end
	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to end break on shift '%s': %w", shiftID, err)
	}
	s.audit(ctx, userID, "BREAK_END", shift.ID)
	return shift, nil
}

// ActiveShift returns the user's currently running shift.
func (s *shiftService) ActiveShift(ctx context.Context, userID string) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetRunning(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoActiveShift
		}
		return nil, fmt.Errorf("failed to get running shift for user '%s': %w", userID, err)
	}
	return shift, nil
}

// validateBreaks checks every break falls inside [start, end) and is well
// formed. Open breaks are not allowed on manual or edited shifts.
func validateBreaks(breaks []models.Break, start, end time.Time) error {
	for _, b := range breaks {
		if b.EndTime == nil {
			return fmt.Errorf("%w: break without end time", ErrInvalidBreakRange)
		}
		if b.StartTime.Before(start) || b.EndTime.After(end) || !b.EndTime.After(b.StartTime) {
			return ErrInvalidBreakRange
		}
	}
	return nil
}

// CreateManual records a completed shift after the fact.
func (s *shiftService) CreateManual(ctx context.Context, userID string, req models.CreateShiftRequest) (*models.Shift, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidShiftRange
	}
	if err := validateBreaks(req.Breaks, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s' for rate snapshot: %w", userID, err)
	}
	rate := user.HourlyRateCents
	if req.RateCents != nil {
		if *req.RateCents < 0 {
			return nil, errors.New("rateCents cannot be negative")
		}
		rate = *req.RateCents
	}

	end := req.EndTime
	shift := &models.Shift{
		UserID:          userID,
		StartTime:       req.StartTime,
		EndTime:         &end,
		HourlyRateCents: rate,
		Currency:        user.Currency,
		Note:            req.Note,
		Breaks:          req.Breaks,
	}
	if _, err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to create manual shift: %w", err)
	}
	s.audit(ctx, userID, "SHIFT_CREATE", shift.ID)
	return shift, nil
}

// UpdateShift edits an ended shift. Only provided fields change; the result
// must still be a valid, fully closed shift.
func (s *shiftService) UpdateShift(ctx context.Context, userID, shiftID string, req models.UpdateShiftRequest) (*models.Shift, error) {
	shift, err := s.ownedShift(ctx, userID, shiftID)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		end := *req.EndTime
		shift.EndTime = &end
	}
	if req.Note != nil {
		shift.Note = *req.Note
	}
	if req.Breaks != nil {
		shift.Breaks = *req.Breaks
	}
	if req.RateCents != nil {
		if *req.RateCents < 0 {
			return nil, errors.New("rateCents cannot be negative")
		}
		shift.HourlyRateCents = *req.RateCents
	}

	if shift.EndTime != nil {
		if !shift.EndTime.After(shift.StartTime) {
			return nil, ErrInvalidShiftRange
		}
		if err := validateBreaks(shift.Breaks, shift.StartTime, *shift.EndTime); err != nil {
			return nil, err
		}
	}

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to update shift '%s': %w", shiftID, err)
	}
	s.audit(ctx, userID, "SHIFT_UPDATE", shift.ID)
	return shift, nil
}

// DeleteShift removes a shift the user owns.
func (s *shiftService) DeleteShift(ctx context.Context, userID, shiftID string) error {
	shift, err := s.ownedShift(ctx, userID, shiftID)
	if err != nil {
		return err
	}
	if err := s.shiftRepo.Delete(ctx, shift.ID); err != nil {
		return fmt.Errorf("failed to delete shift '%s': %w", shiftID, err)
	}
	s.audit(ctx, userID, "SHIFT_DELETE", shift.ID)
	return nil
}

// ListShifts returns the user's shifts starting within [from, to).
func (s *shiftService) ListShifts(ctx context.Context, userID string, from, to time.Time) ([]*models.Shift, error) {
	if !to.After(from) {
		return nil, ErrInvalidShiftRange
	}
	shifts, err := s.shiftRepo.GetByUserPeriod(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts for user '%s': %w", userID, err)
	}
	return shifts, nil
}

// Summary aggregates the user's shifts in [from, to). Running shifts report
// live totals up to "now". Shifts in a currency other than the user's
// current one are still summed in cents; the currency label reflects the
// user's setting.
func (s *shiftService) Summary(ctx context.Context, userID string, from, to time.Time) (*EarningsSummary, error) {
	shifts, err := s.ListShifts(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user '%s' for summary: %w", userID, err)
	}

	now := s.now()
	summary := &EarningsSummary{From: from, To: to, Currency: user.Currency}
	for _, shift := range shifts {
		summary.ShiftCount++
		summary.WorkedMinutes += shift.WorkedMinutes(now)
		summary.BreakMinutes += shift.BreakMinutes(now)
		summary.EarningsCents += shift.EarningsCents(now)
	}
	return summary, nil
}
