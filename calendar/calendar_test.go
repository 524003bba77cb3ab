package calendar_test

import (
	"testing"
	"time"

	"github.com/meenmo/termstruct/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDayWeekends(t *testing.T) {
	t.Parallel()

	sat := date(2025, 1, 18)
	sun := date(2025, 1, 19)
	mon := date(2025, 1, 20)

	if calendar.IsBusinessDay(calendar.WeekendsOnly, sat) {
		t.Error("Saturday must not be a business day")
	}
	if calendar.IsBusinessDay(calendar.WeekendsOnly, sun) {
		t.Error("Sunday must not be a business day")
	}
	if !calendar.IsBusinessDay(calendar.WeekendsOnly, mon) {
		t.Error("Monday must be a business day")
	}
}

func TestRegisteredHolidays(t *testing.T) {
	t.Parallel()

	calendar.RegisterHolidays("TEST-CAL", []string{"2025-05-01"})
	if calendar.IsBusinessDay("TEST-CAL", date(2025, 5, 1)) {
		t.Error("registered holiday must not be a business day")
	}
	if !calendar.IsBusinessDay("TEST-CAL", date(2025, 5, 2)) {
		t.Error("regular Friday must be a business day")
	}
}

func TestAdjustModifiedFollowing(t *testing.T) {
	t.Parallel()

	// Saturday mid-month rolls forward to Monday.
	got := calendar.Adjust(calendar.WeekendsOnly, date(2025, 1, 18))
	if !got.Equal(date(2025, 1, 20)) {
		t.Errorf("mid-month: got %v", got)
	}

	// Month-end Saturday rolls backward to stay in the month.
	got = calendar.Adjust(calendar.WeekendsOnly, date(2025, 5, 31))
	if !got.Equal(date(2025, 5, 30)) {
		t.Errorf("month-end: got %v", got)
	}
}

func TestAddBusinessDays(t *testing.T) {
	t.Parallel()

	// Friday + 1 business day = Monday.
	got := calendar.AddBusinessDays(calendar.WeekendsOnly, date(2025, 1, 17), 1)
	if !got.Equal(date(2025, 1, 20)) {
		t.Errorf("T+1 from Friday: got %v", got)
	}

	// Monday - 1 business day = Friday.
	got = calendar.AddBusinessDays(calendar.WeekendsOnly, date(2025, 1, 20), -1)
	if !got.Equal(date(2025, 1, 17)) {
		t.Errorf("T-1 from Monday: got %v", got)
	}
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	t.Parallel()

	// May 2025 ends on a Saturday; the last business day is Friday the 30th.
	got := calendar.LastBusinessDayOfMonth(calendar.WeekendsOnly, date(2025, 5, 10))
	if !got.Equal(date(2025, 5, 30)) {
		t.Errorf("last business day: got %v", got)
	}
	if !calendar.IsEndOfMonth(calendar.WeekendsOnly, date(2025, 5, 30)) {
		t.Error("May 30 2025 should be end of month")
	}
}
