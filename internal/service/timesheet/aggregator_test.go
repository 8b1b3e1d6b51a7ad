package timesheet

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
)

var periodStart = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func hotelHours() *rule.WorkingHoursConfig {
	return &rule.WorkingHoursConfig{
		StandardWeeklyHours: decimal.NewFromInt(45),
		StandardDailyHours:  decimal.NewFromInt(9),
	}
}

func workedEntry(t *testing.T, day int, hours float64) timesheet.Entry {
	t.Helper()
	date := periodStart.AddDate(0, 0, day)
	clockIn := time.Date(date.Year(), date.Month(), date.Day(), 8, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(time.Duration(hours * float64(time.Hour)))
	return timesheet.Entry{
		ID:       date.Format("2006-01-02"),
		Date:     date,
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}
}

func newSheet(entries ...timesheet.Entry) *timesheet.Timesheet {
	return &timesheet.Timesheet{
		ID:          "ts-1",
		TenantID:    "tenant-1",
		EmployeeID:  "emp-1",
		PeriodStart: periodStart,
		PeriodEnd:   periodStart.AddDate(0, 1, -1),
		Entries:     entries,
		Status:      timesheet.StatusApproved,
		IsLocked:    true,
	}
}

func TestAggregateSplitsDailyOvertime(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Monday, 11 hours worked against a 9 hour standard.
	ts := newSheet(workedEntry(t, 1, 11))

	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	e := ts.Entries[0]
	assert.True(t, e.RegularHours.Equal(decimal.NewFromInt(9)), "regular %s", e.RegularHours)
	assert.True(t, e.OvertimeHours.Equal(decimal.NewFromInt(2)), "overtime %s", e.OvertimeHours)
	assert.True(t, ts.Totals.OvertimeHours.Equal(decimal.NewFromInt(2)))
}

func TestAggregateBreakDeducted(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := workedEntry(t, 1, 10)
	e.BreakMinutes = 60

	ts := newSheet(e)
	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	assert.True(t, ts.Entries[0].ActualHours.Equal(decimal.NewFromInt(9)))
	assert.True(t, ts.Entries[0].OvertimeHours.IsZero())
}

func TestAggregateWeeklyThresholdRedistributes(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Five 9 hour days sum to 45 regular against a 40 hour week: the
	// 5 excess hours come off the last worked day.
	ts := newSheet(
		workedEntry(t, 1, 9),
		workedEntry(t, 2, 9),
		workedEntry(t, 3, 9),
		workedEntry(t, 4, 9),
		workedEntry(t, 5, 9),
	)
	cfg := &rule.WorkingHoursConfig{
		StandardWeeklyHours: decimal.NewFromInt(40),
		StandardDailyHours:  decimal.NewFromInt(9),
	}

	require.NoError(t, agg.Aggregate(ts, cfg))

	friday := ts.Entries[4]
	assert.True(t, friday.RegularHours.Equal(decimal.NewFromInt(4)), "regular %s", friday.RegularHours)
	assert.True(t, friday.OvertimeHours.Equal(decimal.NewFromInt(5)), "overtime %s", friday.OvertimeHours)
	assert.True(t, ts.Totals.RegularHours.Equal(decimal.NewFromInt(40)))
	assert.True(t, ts.Totals.OvertimeHours.Equal(decimal.NewFromInt(5)))
}

func TestAggregateRedistributionWalksBackwards(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := newSheet(
		workedEntry(t, 1, 9),
		workedEntry(t, 2, 9),
		workedEntry(t, 3, 9),
		workedEntry(t, 4, 9),
		workedEntry(t, 5, 9),
	)
	cfg := &rule.WorkingHoursConfig{
		StandardWeeklyHours: decimal.NewFromInt(30),
		StandardDailyHours:  decimal.NewFromInt(9),
	}

	require.NoError(t, agg.Aggregate(ts, cfg))

	// 15 excess hours: Friday fully reclassified, Thursday partially.
	assert.True(t, ts.Entries[4].RegularHours.IsZero())
	assert.True(t, ts.Entries[4].OvertimeHours.Equal(decimal.NewFromInt(9)))
	assert.True(t, ts.Entries[3].RegularHours.Equal(decimal.NewFromInt(3)))
	assert.True(t, ts.Entries[3].OvertimeHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, ts.Entries[0].OvertimeHours.IsZero())
}

func TestAggregateRedistributionConservesHours(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	hours := []float64{7.5, 10, 9, 11, 8.25, 9.5}
	var entries []timesheet.Entry
	for i, h := range hours {
		entries = append(entries, workedEntry(t, i+1, h))
	}
	before := decimal.Zero
	for _, h := range hours {
		before = before.Add(decimal.NewFromFloat(h))
	}

	for _, weekly := range []int64{20, 35, 45, 60} {
		ts := newSheet(append([]timesheet.Entry(nil), entries...)...)
		cfg := &rule.WorkingHoursConfig{
			StandardWeeklyHours: decimal.NewFromInt(weekly),
			StandardDailyHours:  decimal.NewFromInt(9),
		}
		require.NoError(t, agg.Aggregate(ts, cfg))

		after := ts.Totals.RegularHours.Add(ts.Totals.OvertimeHours).Add(ts.Totals.HolidayHours)
		assert.True(t, before.Equal(after), "weekly=%d: %s worked, %s bucketed", weekly, before, after)
	}
}

func TestAggregateHolidayAndWeekendHours(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sunday := workedEntry(t, 0, 6)
	sunday.IsWeekend = true
	holiday := workedEntry(t, 3, 8)
	holiday.IsHoliday = true

	ts := newSheet(sunday, holiday)
	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	assert.True(t, ts.Entries[0].HolidayHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, ts.Entries[0].RegularHours.IsZero())
	assert.True(t, ts.Entries[1].HolidayHours.Equal(decimal.NewFromInt(8)))
	assert.True(t, ts.Totals.HolidayHours.Equal(decimal.NewFromInt(14)))
}

func TestAggregateMissingClocksMarksAbsent(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := timesheet.Entry{ID: "no-clocks", Date: periodStart.AddDate(0, 0, 2)}
	ts := newSheet(e)
	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	assert.True(t, ts.Entries[0].IsAbsent)
	assert.Equal(t, 1, ts.Totals.AbsentDays)
	assert.True(t, ts.Totals.AbsentHours.Equal(decimal.NewFromInt(9)))
}

func TestAggregateLeaveDayKeepsPresetHours(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := timesheet.Entry{
		ID:               "on-leave",
		Date:             periodStart.AddDate(0, 0, 2),
		IsOnLeave:        true,
		AnnualLeaveHours: decimal.NewFromInt(9),
	}
	ts := newSheet(e)
	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	assert.True(t, ts.Entries[0].RegularHours.IsZero())
	assert.False(t, ts.Entries[0].IsAbsent)
	assert.True(t, ts.Totals.AnnualLeaveHours.Equal(decimal.NewFromInt(9)))
}

func TestAggregateUnpaidLeaveCounted(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := timesheet.Entry{
		ID:               "unpaid",
		Date:             periodStart.AddDate(0, 0, 2),
		IsOnLeave:        true,
		UnpaidLeaveHours: decimal.NewFromInt(9),
	}
	ts := newSheet(e, workedEntry(t, 3, 9))
	require.NoError(t, agg.Aggregate(ts, hotelHours()))

	assert.Equal(t, 1, ts.Totals.UnpaidLeaveDays)
	assert.Equal(t, 1, ts.Totals.WorkedDays)
}

func TestAggregateRejectsInvertedClocks(t *testing.T) {
	agg := NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	date := periodStart.AddDate(0, 0, 2)
	clockIn := time.Date(date.Year(), date.Month(), date.Day(), 17, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(-8 * time.Hour)
	ts := newSheet(timesheet.Entry{ID: "inverted", Date: date, ClockIn: &clockIn, ClockOut: &clockOut})

	err := agg.Aggregate(ts, hotelHours())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not after clock in")
}
