package timesheet

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
)

// Aggregator classifies daily entries into hour buckets and enforces
// the weekly overtime threshold. It mutates only the derived fields
// (ActualHours, RegularHours, OvertimeHours, HolidayHours, IsAbsent)
// and the period totals; raw clock data is left untouched.
type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate runs the full pipeline on one timesheet: per-day
// classification, weekly threshold redistribution, then totals.
func (a *Aggregator) Aggregate(ts *timesheet.Timesheet, wh *rule.WorkingHoursConfig) error {
	if wh == nil {
		return fmt.Errorf("working hours configuration is required")
	}
	for i := range ts.Entries {
		if err := classifyEntry(&ts.Entries[i], wh.StandardDailyHours); err != nil {
			return fmt.Errorf("entry %s on %s: %w", ts.Entries[i].ID, ts.Entries[i].Date.Format("2006-01-02"), err)
		}
	}
	a.redistributeWeekly(ts, wh.StandardWeeklyHours)
	ts.RecalculateTotals(wh.StandardDailyHours)
	return nil
}

// classifyEntry derives the hour buckets for one day. Precedence:
// absent, on leave, holiday or weekend, then a normal worked day split
// at the daily standard. A day with no clock data and no excusing flag
// is marked absent rather than silently skipped.
func classifyEntry(e *timesheet.Entry, standardDailyHours decimal.Decimal) error {
	e.ActualHours = decimal.Zero
	e.RegularHours = decimal.Zero
	e.OvertimeHours = decimal.Zero
	e.HolidayHours = decimal.Zero

	if e.IsAbsent {
		return nil
	}
	if e.IsOnLeave {
		// Leave hours are preset on the entry; nothing worked.
		return nil
	}

	if e.ClockIn == nil || e.ClockOut == nil {
		if e.IsHoliday || e.IsWeekend {
			return nil
		}
		e.IsAbsent = true
		return nil
	}

	worked, err := workedHours(*e.ClockIn, *e.ClockOut, e.BreakMinutes)
	if err != nil {
		return err
	}
	e.ActualHours = worked

	if e.IsHoliday || e.IsWeekend {
		// Every hour on a holiday or weekend is premium time.
		e.HolidayHours = worked
		return nil
	}

	if worked.GreaterThan(standardDailyHours) {
		e.RegularHours = standardDailyHours
		e.OvertimeHours = worked.Sub(standardDailyHours)
	} else {
		e.RegularHours = worked
	}
	return nil
}

func workedHours(clockIn, clockOut time.Time, breakMinutes int) (decimal.Decimal, error) {
	if !clockOut.After(clockIn) {
		return decimal.Zero, fmt.Errorf("clock out %s is not after clock in %s",
			clockOut.Format(time.RFC3339), clockIn.Format(time.RFC3339))
	}
	minutes := clockOut.Sub(clockIn).Minutes() - float64(breakMinutes)
	if minutes < 0 {
		minutes = 0
	}
	return decimal.NewFromFloat(minutes).Div(decimal.NewFromInt(60)).Round(2), nil
}

// redistributeWeekly enforces the weekly regular-hours threshold over
// consecutive 7-day windows anchored at the period start. When a week's
// regular hours exceed the threshold, the excess is reclassified as
// overtime starting from the last worked day of the week and walking
// backwards, so each entry's RegularHours+OvertimeHours is conserved.
func (a *Aggregator) redistributeWeekly(ts *timesheet.Timesheet, standardWeeklyHours decimal.Decimal) {
	if standardWeeklyHours.LessThanOrEqual(decimal.Zero) {
		return
	}

	weeks := make(map[int][]int)
	for i, e := range ts.Entries {
		w := int(e.Date.Sub(ts.PeriodStart).Hours() / 24 / 7)
		weeks[w] = append(weeks[w], i)
	}

	for _, idxs := range weeks {
		sort.Slice(idxs, func(a, b int) bool {
			return ts.Entries[idxs[a]].Date.Before(ts.Entries[idxs[b]].Date)
		})

		weekRegular := decimal.Zero
		for _, i := range idxs {
			weekRegular = weekRegular.Add(ts.Entries[i].RegularHours)
		}
		excess := weekRegular.Sub(standardWeeklyHours)
		if excess.LessThanOrEqual(decimal.Zero) {
			continue
		}

		for j := len(idxs) - 1; j >= 0 && excess.GreaterThan(decimal.Zero); j-- {
			e := &ts.Entries[idxs[j]]
			if e.RegularHours.LessThanOrEqual(decimal.Zero) {
				continue
			}
			moved := decimal.Min(e.RegularHours, excess)
			e.RegularHours = e.RegularHours.Sub(moved)
			e.OvertimeHours = e.OvertimeHours.Add(moved)
			excess = excess.Sub(moved)
		}
	}
}
