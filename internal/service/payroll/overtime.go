package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
)

// OvertimeResult is the premium-pay outcome for one employee's period.
type OvertimeResult struct {
	// PremiumHours covers everything paid above the base rate: overtime
	// on normal days plus all hours worked on holidays and weekends.
	PremiumHours decimal.Decimal
	Pay          decimal.Decimal
}

// HourlyRate derives the base hourly rate from a monthly basic salary.
// standardMonthlyHours is the statutory monthly divisor (173.33 for a
// 40-hour week in Mauritius).
func HourlyRate(basicSalary, standardMonthlyHours decimal.Decimal) (decimal.Decimal, error) {
	if standardMonthlyHours.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: standard monthly hours divisor is %s",
			payroll.ErrCalculationPrecision, standardMonthlyHours)
	}
	return basicSalary.Div(standardMonthlyHours).Round(4), nil
}

// multiplierFor picks the premium multiplier for one day. Precedence is
// strictly ordered: a cyclone class III day outranks a public holiday,
// which outranks Sunday, weekend, night shift and the weekday rate.
func multiplierFor(e timesheet.Entry, cfg *rule.OvertimeConfig) decimal.Decimal {
	switch {
	case e.IsCycloneDay:
		return cfg.CycloneClass3Rate
	case e.IsHoliday:
		return cfg.PublicHolidayRate
	case e.Date.Weekday() == time.Sunday:
		return cfg.SundayRate
	case e.IsWeekend:
		return cfg.WeekendRate
	case e.IsNightShift:
		return cfg.NightShiftRate
	default:
		return cfg.WeekdayRate
	}
}

// CalculateOvertime prices the premium buckets of a classified
// timesheet. Caps are checked per day and per 7-day window; under the
// reject policy a breach fails the employee calculation, under the
// pay-at-rate policy every hour is paid at its day's multiplier.
func CalculateOvertime(ts *timesheet.Timesheet, cfg *rule.OvertimeConfig, hourlyRate decimal.Decimal) (OvertimeResult, error) {
	if cfg == nil {
		return OvertimeResult{}, fmt.Errorf("overtime configuration is required")
	}

	if cfg.CapPolicy == rule.CapPolicyReject {
		if err := checkCaps(ts, cfg); err != nil {
			return OvertimeResult{}, err
		}
	}

	result := OvertimeResult{PremiumHours: decimal.Zero, Pay: decimal.Zero}
	for _, e := range ts.Entries {
		premium := e.OvertimeHours.Add(e.HolidayHours)
		if premium.LessThanOrEqual(decimal.Zero) {
			continue
		}
		rate := multiplierFor(e, cfg)
		result.PremiumHours = result.PremiumHours.Add(premium)
		result.Pay = result.Pay.Add(premium.Mul(rate).Mul(hourlyRate))
	}
	result.Pay = result.Pay.Round(2)
	return result, nil
}

func checkCaps(ts *timesheet.Timesheet, cfg *rule.OvertimeConfig) error {
	weekly := make(map[int]decimal.Decimal)
	for _, e := range ts.Entries {
		if cfg.MaxOvertimePerDay.GreaterThan(decimal.Zero) &&
			e.OvertimeHours.GreaterThan(cfg.MaxOvertimePerDay) {
			return fmt.Errorf("%w: %s overtime on %s exceeds daily cap %s",
				payroll.ErrOvertimeCapExceeded, e.OvertimeHours,
				e.Date.Format("2006-01-02"), cfg.MaxOvertimePerDay)
		}
		w := int(e.Date.Sub(ts.PeriodStart).Hours() / 24 / 7)
		weekly[w] = weekly[w].Add(e.OvertimeHours)
	}
	if cfg.MaxOvertimePerWeek.GreaterThan(decimal.Zero) {
		for w, hours := range weekly {
			if hours.GreaterThan(cfg.MaxOvertimePerWeek) {
				return fmt.Errorf("%w: %s overtime in week %d exceeds weekly cap %s",
					payroll.ErrOvertimeCapExceeded, hours, w+1, cfg.MaxOvertimePerWeek)
			}
		}
	}
	return nil
}
