package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
)

func hotelOvertime() *rule.OvertimeConfig {
	return &rule.OvertimeConfig{
		WeekdayRate:        mur("1.5"),
		WeekendRate:        mur("2.0"),
		SundayRate:         mur("2.0"),
		PublicHolidayRate:  mur("3.0"),
		CycloneClass3Rate:  mur("3.0"),
		NightShiftRate:     mur("1.25"),
		MaxOvertimePerDay:  mur("4"),
		MaxOvertimePerWeek: mur("20"),
		CapPolicy:          rule.CapPolicyPayAtRate,
	}
}

func otSheet(entries ...timesheet.Entry) *timesheet.Timesheet {
	return &timesheet.Timesheet{
		PeriodStart: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		Entries:     entries,
	}
}

func otEntry(day int, overtime, holiday string) timesheet.Entry {
	return timesheet.Entry{
		Date:          time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
		OvertimeHours: mur(overtime),
		HolidayHours:  mur(holiday),
	}
}

func TestHourlyRate(t *testing.T) {
	// 173.33 x 100 is exactly 17333.
	rate, err := HourlyRate(mur("17333"), mur("173.33"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(mur("100")), "rate %s", rate)

	// 26000 / 173.33 = 150.00288... rounds to 4 places.
	rate, err = HourlyRate(mur("26000"), mur("173.33"))
	require.NoError(t, err)
	assert.True(t, rate.Equal(mur("150.0029")), "rate %s", rate)
}

func TestHourlyRateZeroDivisor(t *testing.T) {
	_, err := HourlyRate(mur("17333"), decimal.Zero)
	require.ErrorIs(t, err, payroll.ErrCalculationPrecision)
}

func TestCalculateOvertimeMultiplierPrecedence(t *testing.T) {
	// June 2 2025 is a Monday, June 8 a Sunday.
	weekday := otEntry(2, "2", "0")

	night := otEntry(3, "2", "0")
	night.IsNightShift = true

	saturday := otEntry(7, "0", "4")
	saturday.IsWeekend = true

	sunday := otEntry(8, "0", "4")
	sunday.IsWeekend = true

	holiday := otEntry(9, "0", "4")
	holiday.IsHoliday = true

	cyclone := otEntry(10, "0", "4")
	cyclone.IsHoliday = true
	cyclone.IsCycloneDay = true

	cfg := hotelOvertime()
	hourly := mur("100")

	cases := []struct {
		name  string
		entry timesheet.Entry
		want  string
	}{
		{"weekday", weekday, "300"},   // 2h x 1.5 x 100
		{"night", night, "250"},       // 2h x 1.25 x 100
		{"saturday", saturday, "800"}, // 4h x 2.0 x 100
		{"sunday", sunday, "800"},     // 4h x 2.0 x 100
		{"holiday", holiday, "1200"},  // 4h x 3.0 x 100
		{"cyclone", cyclone, "1200"},  // cyclone outranks holiday
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateOvertime(otSheet(tc.entry), cfg, hourly)
			require.NoError(t, err)
			assert.True(t, got.Pay.Equal(mur(tc.want)), "pay %s", got.Pay)
		})
	}
}

func TestCalculateOvertimeSumsAcrossDays(t *testing.T) {
	ts := otSheet(
		otEntry(2, "2", "0"),
		otEntry(3, "1.5", "0"),
		otEntry(4, "0", "0"),
	)

	got, err := CalculateOvertime(ts, hotelOvertime(), mur("100"))
	require.NoError(t, err)

	assert.True(t, got.PremiumHours.Equal(mur("3.5")))
	assert.True(t, got.Pay.Equal(mur("525")), "pay %s", got.Pay) // 3.5h x 1.5 x 100
}

func TestCalculateOvertimePayAtRateIgnoresCaps(t *testing.T) {
	// 6 hours on one day, beyond the 4 hour daily cap.
	ts := otSheet(otEntry(2, "6", "0"))

	got, err := CalculateOvertime(ts, hotelOvertime(), mur("100"))
	require.NoError(t, err)
	assert.True(t, got.Pay.Equal(mur("900")), "pay %s", got.Pay)
}

func TestCalculateOvertimeRejectPolicyDailyCap(t *testing.T) {
	cfg := hotelOvertime()
	cfg.CapPolicy = rule.CapPolicyReject
	ts := otSheet(otEntry(2, "6", "0"))

	_, err := CalculateOvertime(ts, cfg, mur("100"))
	require.ErrorIs(t, err, payroll.ErrOvertimeCapExceeded)
}

func TestCalculateOvertimeRejectPolicyWeeklyCap(t *testing.T) {
	cfg := hotelOvertime()
	cfg.CapPolicy = rule.CapPolicyReject

	// 4h on six days of one week: each day within the daily cap, the
	// 24h week beyond the 20h weekly cap.
	ts := otSheet(
		otEntry(2, "4", "0"),
		otEntry(3, "4", "0"),
		otEntry(4, "4", "0"),
		otEntry(5, "4", "0"),
		otEntry(6, "4", "0"),
		otEntry(7, "4", "0"),
	)

	_, err := CalculateOvertime(ts, cfg, mur("100"))
	require.ErrorIs(t, err, payroll.ErrOvertimeCapExceeded)
}

func TestCalculateOvertimeRejectPolicyWithinCaps(t *testing.T) {
	cfg := hotelOvertime()
	cfg.CapPolicy = rule.CapPolicyReject

	ts := otSheet(otEntry(2, "3", "0"), otEntry(3, "2", "0"))

	got, err := CalculateOvertime(ts, cfg, mur("100"))
	require.NoError(t, err)
	assert.True(t, got.Pay.Equal(mur("750")))
}
