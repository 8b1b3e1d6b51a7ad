package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
	"github.com/lagoon-hr/payroll-backend-go/internal/service/rules"
)

// Composer assembles one employee's payslip from the classified
// timesheet, salary components and the resolved rule snapshot. Pure
// calculation; persistence stays with the cycle service.
type Composer struct {
	rates                StatutoryRates
	standardMonthlyHours decimal.Decimal
}

func NewComposer(rates StatutoryRates, standardMonthlyHours decimal.Decimal) *Composer {
	return &Composer{rates: rates, standardMonthlyHours: standardMonthlyHours}
}

// Compose builds and validates the payslip for one employee in one
// cycle. Returns ErrNegativeNetPay wrapped in the validation error when
// deductions exceed gross.
func (c *Composer) Compose(cycle payroll.PayrollCycle, emp employee.Employee, ts *timesheet.Timesheet, snap *rules.Snapshot, components []employee.SalaryComponent, now time.Time) (payroll.Payslip, error) {
	if emp.BasicSalary.LessThanOrEqual(decimal.Zero) {
		return payroll.Payslip{}, fmt.Errorf("employee %s: %w", emp.EmployeeCode, employee.ErrNoBasicSalary)
	}

	periodEnd := endOfMonth(cycle.Year, cycle.Month)
	basic := emp.BasicSalary
	allowances := decimal.Zero
	bonuses := decimal.Zero
	otherDeductions := decimal.Zero

	// Minimum wage floor plus the statutory salary compensation for
	// employees under the eligibility ceiling.
	if res, err := snap.Get(rule.CategoryMinimumWage); err == nil {
		mw := res.Config.MinimumWage
		if basic.LessThan(mw.MonthlyMinimumWage) {
			basic = mw.MonthlyMinimumWage
		}
		if mw.SalaryCompensation.GreaterThan(decimal.Zero) &&
			(mw.AppliesUpTo.IsZero() || emp.BasicSalary.LessThanOrEqual(mw.AppliesUpTo)) {
			allowances = allowances.Add(mw.SalaryCompensation)
		}
	}

	for _, comp := range components {
		if !comp.AppliesOn(periodEnd) {
			continue
		}
		switch comp.Type {
		case employee.ComponentTypeAllowance:
			allowances = allowances.Add(comp.Amount)
		case employee.ComponentTypeBonus:
			bonuses = bonuses.Add(comp.Amount)
		case employee.ComponentTypeDeduction, employee.ComponentTypeLoanRepayment:
			otherDeductions = otherDeductions.Add(comp.Amount)
		}
	}

	hourlyRate, err := HourlyRate(basic, c.standardMonthlyHours)
	if err != nil {
		return payroll.Payslip{}, err
	}

	otCfg, err := snap.Overtime()
	if err != nil {
		return payroll.Payslip{}, err
	}
	overtime, err := CalculateOvertime(ts, otCfg, hourlyRate)
	if err != nil {
		return payroll.Payslip{}, err
	}

	// Exit gratuity for legacy-scheme leavers, paid with the final slip.
	if emp.ResignationDate != nil && !emp.ResignationDate.After(periodEnd) &&
		!emp.ResignationDate.Before(startOfMonth(cycle.Year, cycle.Month)) {
		if gratuityCfg, gerr := snap.Gratuity(); gerr == nil {
			bonuses = bonuses.Add(GratuityAtExit(emp, gratuityCfg, *emp.ResignationDate))
		}
	}

	gross := basic.Add(allowances).Add(overtime.Pay).Add(bonuses)

	workingDays := workingDaysInMonth(cycle.Year, cycle.Month)
	unpaidDeduction := decimal.Zero
	if ts.Totals.UnpaidLeaveDays > 0 && workingDays > 0 {
		unpaidDeduction = basic.
			Div(decimal.NewFromInt(int64(workingDays))).
			Mul(decimal.NewFromInt(int64(ts.Totals.UnpaidLeaveDays))).
			Round(2)
	}

	statutory := CalculateStatutory(emp, basic, gross, periodEnd, c.rates)
	totalDeductions := statutory.EmployeeTotal().Add(otherDeductions).Add(unpaidDeduction)

	slip := payroll.Payslip{
		ID:             uuid.NewString(),
		PayrollCycleID: cycle.ID,
		EmployeeID:     emp.ID,
		EmployeeCode:   emp.EmployeeCode,
		EmployeeName:   emp.FullName,
		PayslipNumber:  PayslipNumber(cycle.Year, cycle.Month, emp.EmployeeCode),
		Month:          cycle.Month,
		Year:           cycle.Year,

		BasicSalary:   basic,
		Allowances:    allowances,
		Bonuses:       bonuses,
		OvertimeHours: overtime.PremiumHours,
		OvertimePay:   overtime.Pay,
		Gross:         gross,

		WorkingDays:          workingDays,
		DaysWorked:           ts.Totals.WorkedDays,
		UnpaidLeaveDays:      ts.Totals.UnpaidLeaveDays,
		UnpaidLeaveDeduction: unpaidDeduction,

		Statutory:       statutory,
		OtherDeductions: otherDeductions,
		TotalDeductions: totalDeductions,
		Net:             gross.Sub(totalDeductions),

		PaymentStatus:     payroll.PaymentStatusPending,
		BankAccountNumber: emp.BankAccountNumber,
		Currency:          emp.Currency,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := slip.Validate(); err != nil {
		return slip, err
	}
	return slip, nil
}

// PayslipNumber formats the human-facing slip reference, unique per
// employee per period.
func PayslipNumber(year, month int, employeeCode string) string {
	return fmt.Sprintf("PS-%d-%02d-%s", year, month, employeeCode)
}

func startOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(year, month int) time.Time {
	return startOfMonth(year, month).AddDate(0, 1, -1)
}

// workingDaysInMonth counts Monday through Friday.
func workingDaysInMonth(year, month int) int {
	days := 0
	for d := startOfMonth(year, month); d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
