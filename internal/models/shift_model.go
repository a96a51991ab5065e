package models

import "time"

// Break is a pause within a shift. EndTime is nil while the break is running.
// Break time is unpaid and subtracted from the shift's worked minutes.
type Break struct {
	StartTime time.Time  `json:"startTime" firestore:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty" firestore:"endTime"`
}

// Shift represents one work shift. EndTime is nil while the shift is
// running; at most one shift per user may be running at a time.
// HourlyRateCents and Currency are snapshotted from the user's settings when
// the shift is created, so later settings changes do not rewrite history.
type Shift struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	StartTime time.Time `json:"startTime" firestore:"startTime"`

	// EndTime is stored as an explicit null while the shift runs so the
	// running-shift lookup can query on it.
	EndTime         *time.Time `json:"endTime,omitempty" firestore:"endTime"`
	HourlyRateCents int64      `json:"hourlyRateCents" firestore:"hourlyRateCents"`
	Currency        string     `json:"currency" firestore:"currency"`
	Note            string     `json:"note,omitempty" firestore:"note,omitempty"`
	Breaks          []Break    `json:"breaks,omitempty" firestore:"breaks,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Running reports whether the shift has not been ended yet.
func (s *Shift) Running() bool {
	return s.EndTime == nil
}

// OpenBreak returns the index of the currently running break, or -1.
func (s *Shift) OpenBreak() int {
	for i := range s.Breaks {
		if s.Breaks[i].EndTime == nil {
			return i
		}
	}
	return -1
}

// span returns the effective end of the shift: EndTime when set, otherwise
// now, used so a running shift can still report live totals.
func (s *Shift) span(now time.Time) (time.Time, time.Time) {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return s.StartTime, end
}

// BreakMinutes returns the total break time in whole minutes, with each
// break clamped to the shift window so malformed data cannot produce
// negative worked time.
func (s *Shift) BreakMinutes(now time.Time) int64 {
	start, end := s.span(now)
	var total time.Duration
	for _, b := range s.Breaks {
		bStart := b.StartTime
		bEnd := end
		if b.EndTime != nil {
			bEnd = *b.EndTime
		}
		if bStart.Before(start) {
			bStart = start
		}
		if bEnd.After(end) {
			bEnd = end
		}
		if bEnd.After(bStart) {
			total += bEnd.Sub(bStart)
		}
	}
	return int64(total / time.Minute)
}

// WorkedMinutes returns the paid minutes of the shift: the span minus
// breaks, never negative.
func (s *Shift) WorkedMinutes(now time.Time) int64 {
	start, end := s.span(now)
	if !end.After(start) {
		return 0
	}
	worked := int64(end.Sub(start)/time.Minute) - s.BreakMinutes(now)
	if worked < 0 {
		return 0
	}
	return worked
}

// EarningsCents returns the shift's earnings in the smallest currency unit,
// rounded down to the cent.
func (s *Shift) EarningsCents(now time.Time) int64 {
	return s.WorkedMinutes(now) * s.HourlyRateCents / 60
}
