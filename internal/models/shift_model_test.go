package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tm(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, time.UTC)
}

func tmPtr(hour, min int) *time.Time {
	v := tm(hour, min)
	return &v
}

func TestShiftRunningAndOpenBreak(t *testing.T) {
	shift := &Shift{StartTime: tm(9, 0)}
	assert.True(t, shift.Running())
	assert.Equal(t, -1, shift.OpenBreak())

	shift.Breaks = append(shift.Breaks, Break{StartTime: tm(10, 0)})
	assert.Equal(t, 0, shift.OpenBreak())

	shift.Breaks[0].EndTime = tmPtr(10, 30)
	assert.Equal(t, -1, shift.OpenBreak())

	shift.EndTime = tmPtr(17, 0)
	assert.False(t, shift.Running())
}

func TestShiftWorkedMinutes(t *testing.T) {
	now := tm(20, 0)

	tests := []struct {
		name        string
		shift       Shift
		wantWorked  int64
		wantBreaks  int64
	}{
		{
			name:       "plain eight hour shift",
			shift:      Shift{StartTime: tm(9, 0), EndTime: tmPtr(17, 0)},
			wantWorked: 480,
		},
		{
			name: "breaks are subtracted",
			shift: Shift{
				StartTime: tm(9, 0),
				EndTime:   tmPtr(17, 0),
				Breaks: []Break{
					{StartTime: tm(12, 0), EndTime: tmPtr(12, 30)},
					{StartTime: tm(15, 0), EndTime: tmPtr(15, 15)},
				},
			},
			wantWorked: 435,
			wantBreaks: 45,
		},
		{
			name:       "running shift reports live totals",
			shift:      Shift{StartTime: tm(18, 0)},
			wantWorked: 120,
		},
		{
			name: "open break on a running shift counts up to now",
			shift: Shift{
				StartTime: tm(18, 0),
				Breaks:    []Break{{StartTime: tm(19, 30)}},
			},
			wantWorked: 90,
			wantBreaks: 30,
		},
		{
			name: "break outside the shift window is clamped",
			shift: Shift{
				StartTime: tm(9, 0),
				EndTime:   tmPtr(10, 0),
				Breaks:    []Break{{StartTime: tm(8, 0), EndTime: tmPtr(11, 0)}},
			},
			wantWorked: 0,
			wantBreaks: 60,
		},
		{
			name:       "end before start yields zero, not negative",
			shift:      Shift{StartTime: tm(17, 0), EndTime: tmPtr(9, 0)},
			wantWorked: 0,
		},
		{
			name: "breaks longer than the shift never go negative",
			shift: Shift{
				StartTime: tm(9, 0),
				EndTime:   tmPtr(9, 30),
				Breaks: []Break{
					{StartTime: tm(9, 0), EndTime: tmPtr(9, 30)},
					{StartTime: tm(9, 0), EndTime: tmPtr(9, 30)},
				},
			},
			wantWorked: 0,
			wantBreaks: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantWorked, tt.shift.WorkedMinutes(now))
			assert.Equal(t, tt.wantBreaks, tt.shift.BreakMinutes(now))
		})
	}
}

func TestShiftEarningsCents(t *testing.T) {
	now := tm(20, 0)

	// 7h15m at 24.50/h: 435 * 2450 / 60 = 17762 (floor, cents).
	shift := Shift{
		StartTime:       tm(9, 0),
		EndTime:         tmPtr(17, 0),
		HourlyRateCents: 2450,
		Breaks:          []Break{{StartTime: tm(12, 0), EndTime: tmPtr(12, 45)}},
	}
	assert.Equal(t, int64(17762), shift.EarningsCents(now))

	// Zero rate earns nothing.
	shift.HourlyRateCents = 0
	assert.Equal(t, int64(0), shift.EarningsCents(now))
}
