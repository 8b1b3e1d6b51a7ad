package payroll

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
)

// StatutoryRates carries every statutory parameter for one tax year.
// Amounts are monthly MUR unless stated otherwise. Rates are data, not
// code: a legal change ships as a new rates file, never a rebuild.
type StatutoryRates struct {
	// CSG - social contribution on monthly gross, two tiers.
	CSGMonthlyThreshold decimal.Decimal `json:"csg_monthly_threshold"`
	CSGEmployeeLowRate  decimal.Decimal `json:"csg_employee_low_rate"`
	CSGEmployeeHighRate decimal.Decimal `json:"csg_employee_high_rate"`
	CSGEmployerLowRate  decimal.Decimal `json:"csg_employer_low_rate"`
	CSGEmployerHighRate decimal.Decimal `json:"csg_employer_high_rate"`

	// NSF - national savings fund, on basic salary.
	NSFEmployeeRate decimal.Decimal `json:"nsf_employee_rate"`
	NSFEmployerRate decimal.Decimal `json:"nsf_employer_rate"`

	// NPF - legacy pension fund, on basic salary, legacy-scheme
	// employees only.
	NPFEmployeeRate decimal.Decimal `json:"npf_employee_rate"`
	NPFEmployerRate decimal.Decimal `json:"npf_employer_rate"`

	// Training levy on basic salary, employer only, all employees.
	TrainingLevyRate decimal.Decimal `json:"training_levy_rate"`

	// PRGF - portable retirement gratuity fund, employer only, on
	// monthly gross, for employees outside the legacy pension scheme.
	// The rate steps up with years of service.
	PRGFTier1MaxYears int             `json:"prgf_tier1_max_years"`
	PRGFTier2MaxYears int             `json:"prgf_tier2_max_years"`
	PRGFTier1Rate     decimal.Decimal `json:"prgf_tier1_rate"`
	PRGFTier2Rate     decimal.Decimal `json:"prgf_tier2_rate"`
	PRGFTier3Rate     decimal.Decimal `json:"prgf_tier3_rate"`

	// PAYE - progressive income tax on annualized chargeable income.
	PAYEAnnualThreshold decimal.Decimal `json:"paye_annual_threshold"`
	PAYEBracket1Limit   decimal.Decimal `json:"paye_bracket1_limit"`
	PAYEBracket1Rate    decimal.Decimal `json:"paye_bracket1_rate"`
	PAYEBracket2Limit   decimal.Decimal `json:"paye_bracket2_limit"`
	PAYEBracket2Rate    decimal.Decimal `json:"paye_bracket2_rate"`
	PAYETopRate         decimal.Decimal `json:"paye_top_rate"`
}

// DefaultStatutoryRates returns the Mauritius rates in force for the
// 2025/2026 income year.
func DefaultStatutoryRates() StatutoryRates {
	return StatutoryRates{
		CSGMonthlyThreshold: decimal.NewFromInt(50000),
		CSGEmployeeLowRate:  decimal.NewFromFloat(0.015),
		CSGEmployeeHighRate: decimal.NewFromFloat(0.03),
		CSGEmployerLowRate:  decimal.NewFromFloat(0.03),
		CSGEmployerHighRate: decimal.NewFromFloat(0.06),

		NSFEmployeeRate: decimal.NewFromFloat(0.01),
		NSFEmployerRate: decimal.NewFromFloat(0.025),

		NPFEmployeeRate: decimal.NewFromFloat(0.03),
		NPFEmployerRate: decimal.NewFromFloat(0.06),

		TrainingLevyRate: decimal.NewFromFloat(0.015),

		PRGFTier1MaxYears: 5,
		PRGFTier2MaxYears: 10,
		PRGFTier1Rate:     decimal.NewFromFloat(0.043),
		PRGFTier2Rate:     decimal.NewFromFloat(0.05),
		PRGFTier3Rate:     decimal.NewFromFloat(0.068),

		PAYEAnnualThreshold: decimal.NewFromInt(390000),
		PAYEBracket1Limit:   decimal.NewFromInt(550000),
		PAYEBracket1Rate:    decimal.NewFromFloat(0.10),
		PAYEBracket2Limit:   decimal.NewFromInt(650000),
		PAYEBracket2Rate:    decimal.NewFromFloat(0.12),
		PAYETopRate:         decimal.NewFromFloat(0.20),
	}
}

// LoadStatutoryRates reads a rates file over the shipped defaults, so a
// file only needs to carry the parameters that changed. An empty path
// returns the defaults unchanged.
func LoadStatutoryRates(path string) (StatutoryRates, error) {
	rates := DefaultStatutoryRates()
	if path == "" {
		return rates, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return StatutoryRates{}, fmt.Errorf("reading statutory rates file: %w", err)
	}
	if err := json.Unmarshal(data, &rates); err != nil {
		return StatutoryRates{}, fmt.Errorf("parsing statutory rates file %s: %w", path, err)
	}
	return rates, nil
}

// CalculateStatutory computes one employee's statutory breakdown for a
// month. The pension scheme split is exclusive: legacy-scheme employees
// contribute to the NPF, everyone else accrues PRGF, never both.
func CalculateStatutory(emp employee.Employee, basic, gross decimal.Decimal, refDate time.Time, rates StatutoryRates) payroll.StatutoryBreakdown {
	b := payroll.StatutoryBreakdown{}

	if emp.LegacyPensionScheme {
		b.NPFEmployee = basic.Mul(rates.NPFEmployeeRate).Round(2)
		b.NPFEmployer = basic.Mul(rates.NPFEmployerRate).Round(2)
	} else {
		years := emp.YearsOfService(refDate)
		b.PRGF = gross.Mul(rates.prgfRate(years)).Round(2)
	}

	b.NSFEmployee = basic.Mul(rates.NSFEmployeeRate).Round(2)
	b.NSFEmployer = basic.Mul(rates.NSFEmployerRate).Round(2)

	if gross.GreaterThan(rates.CSGMonthlyThreshold) {
		b.CSGEmployee = gross.Mul(rates.CSGEmployeeHighRate).Round(2)
		b.CSGEmployer = gross.Mul(rates.CSGEmployerHighRate).Round(2)
	} else {
		b.CSGEmployee = gross.Mul(rates.CSGEmployeeLowRate).Round(2)
		b.CSGEmployer = gross.Mul(rates.CSGEmployerLowRate).Round(2)
	}

	b.TrainingLevy = basic.Mul(rates.TrainingLevyRate).Round(2)

	preTax := b.NPFEmployee.Add(b.NSFEmployee).Add(b.CSGEmployee)
	b.PAYE = monthlyPAYE(gross.Sub(preTax), rates)

	return b
}

func (r StatutoryRates) prgfRate(yearsOfService int) decimal.Decimal {
	switch {
	case yearsOfService <= r.PRGFTier1MaxYears:
		return r.PRGFTier1Rate
	case yearsOfService <= r.PRGFTier2MaxYears:
		return r.PRGFTier2Rate
	default:
		return r.PRGFTier3Rate
	}
}

// monthlyPAYE annualizes the chargeable monthly income, applies the
// progressive brackets and divides back to a monthly withholding.
func monthlyPAYE(monthlyChargeable decimal.Decimal, rates StatutoryRates) decimal.Decimal {
	twelve := decimal.NewFromInt(12)
	annual := monthlyChargeable.Mul(twelve)
	if annual.LessThanOrEqual(rates.PAYEAnnualThreshold) {
		return decimal.Zero
	}

	tax := decimal.Zero

	band1 := decimal.Min(annual, rates.PAYEBracket1Limit).Sub(rates.PAYEAnnualThreshold)
	tax = tax.Add(band1.Mul(rates.PAYEBracket1Rate))

	if annual.GreaterThan(rates.PAYEBracket1Limit) {
		band2 := decimal.Min(annual, rates.PAYEBracket2Limit).Sub(rates.PAYEBracket1Limit)
		tax = tax.Add(band2.Mul(rates.PAYEBracket2Rate))
	}
	if annual.GreaterThan(rates.PAYEBracket2Limit) {
		band3 := annual.Sub(rates.PAYEBracket2Limit)
		tax = tax.Add(band3.Mul(rates.PAYETopRate))
	}

	return tax.Div(twelve).Round(2)
}

// GratuityAtExit computes the end-of-service gratuity owed to a
// legacy-scheme employee leaving during the period. Employees covered
// by the PRGF accrue their gratuity there instead and get nothing here.
func GratuityAtExit(emp employee.Employee, cfg *rule.GratuityConfig, exitDate time.Time) decimal.Decimal {
	if !emp.LegacyPensionScheme || cfg == nil {
		return decimal.Zero
	}
	months := monthsBetween(emp.HireDate, exitDate)
	if months < cfg.MinimumServiceMonths {
		return decimal.Zero
	}
	years := emp.YearsOfService(exitDate)
	dailyRate := emp.BasicSalary.Div(cfg.MonthlyDivisor)
	return dailyRate.Mul(cfg.DaysPerYearOfService).Mul(decimal.NewFromInt(int64(years))).Round(2)
}

func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
