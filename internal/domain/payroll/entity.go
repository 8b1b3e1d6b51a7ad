package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CycleStatus enum - Draft -> Processing -> Approved -> Paid.
type CycleStatus string

const (
	CycleStatusDraft      CycleStatus = "draft"
	CycleStatusProcessing CycleStatus = "processing"
	CycleStatusApproved   CycleStatus = "approved"
	CycleStatusPaid       CycleStatus = "paid"
)

// PaymentStatus enum for individual payslips.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// StatutoryBreakdown holds one employee's statutory contributions for a
// month. Employee-side amounts are deducted from pay; employer-side
// amounts are recorded for remittance and cost reporting.
type StatutoryBreakdown struct {
	NPFEmployee  decimal.Decimal
	NPFEmployer  decimal.Decimal
	NSFEmployee  decimal.Decimal
	NSFEmployer  decimal.Decimal
	CSGEmployee  decimal.Decimal
	CSGEmployer  decimal.Decimal
	PRGF         decimal.Decimal
	TrainingLevy decimal.Decimal
	PAYE         decimal.Decimal
}

// EmployeeTotal is what comes out of the employee's pay.
func (s StatutoryBreakdown) EmployeeTotal() decimal.Decimal {
	return s.NPFEmployee.Add(s.NSFEmployee).Add(s.CSGEmployee).Add(s.PAYE)
}

// EmployerTotal is the employer's cost on top of gross.
func (s StatutoryBreakdown) EmployerTotal() decimal.Decimal {
	return s.NPFEmployer.Add(s.NSFEmployer).Add(s.CSGEmployer).Add(s.PRGF).Add(s.TrainingLevy)
}

// Payslip - one employee within one payroll cycle. Once the cycle is
// approved only the payment-status fields may change.
type Payslip struct {
	ID             string
	PayrollCycleID string
	EmployeeID     string
	EmployeeCode   string
	EmployeeName   string
	PayslipNumber  string
	Month          int
	Year           int

	// Earnings
	BasicSalary   decimal.Decimal
	Allowances    decimal.Decimal
	Bonuses       decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Gross         decimal.Decimal

	// Attendance
	WorkingDays          int
	DaysWorked           int
	UnpaidLeaveDays      int
	UnpaidLeaveDeduction decimal.Decimal

	Statutory       StatutoryBreakdown
	OtherDeductions decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal

	PaymentStatus     PaymentStatus
	PaidAt            *time.Time
	PaymentMethod     *string
	PaymentReference  *string
	BankAccountNumber string
	Currency          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the payslip arithmetic invariants: gross is the sum
// of its earning components, net is gross minus deductions, both
// non-negative.
func (p Payslip) Validate() error {
	earnings := p.BasicSalary.Add(p.Allowances).Add(p.OvertimePay).Add(p.Bonuses)
	if !p.Gross.Equal(earnings) {
		return fmt.Errorf("%w: gross %s != sum of earnings %s", ErrPayslipInconsistent, p.Gross, earnings)
	}
	if !p.Net.Equal(p.Gross.Sub(p.TotalDeductions)) {
		return fmt.Errorf("%w: net %s != gross - deductions", ErrPayslipInconsistent, p.Net)
	}
	if p.Gross.IsNegative() {
		return fmt.Errorf("%w: negative gross %s", ErrPayslipInconsistent, p.Gross)
	}
	if p.Net.IsNegative() {
		return fmt.Errorf("%w: employee %s net %s", ErrNegativeNetPay, p.EmployeeID, p.Net)
	}
	return nil
}

// OutcomeStatus for the per-employee processing report.
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeExcluded OutcomeStatus = "excluded"
	OutcomeFailed   OutcomeStatus = "failed"
)

// EmployeeOutcome records how one employee fared in a processing run.
// Blocking outcomes prevent the cycle from reaching Approved.
type EmployeeOutcome struct {
	EmployeeID   string        `json:"employee_id"`
	EmployeeCode string        `json:"employee_code"`
	Status       OutcomeStatus `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	Blocking     bool          `json:"blocking"`
}

// CycleTotals - cycle-level aggregates, reduced single-writer after all
// employee calculations complete.
type CycleTotals struct {
	Gross        decimal.Decimal
	Deductions   decimal.Decimal
	Net          decimal.Decimal
	OvertimePay  decimal.Decimal
	NPFEmployee  decimal.Decimal
	NPFEmployer  decimal.Decimal
	NSFEmployee  decimal.Decimal
	NSFEmployer  decimal.Decimal
	CSGEmployee  decimal.Decimal
	CSGEmployer  decimal.Decimal
	PRGF         decimal.Decimal
	TrainingLevy decimal.Decimal
	PAYE         decimal.Decimal
}

// EmployerCost is gross plus employer-side statutory contributions.
func (t CycleTotals) EmployerCost() decimal.Decimal {
	return t.Gross.Add(t.NPFEmployer).Add(t.NSFEmployer).Add(t.CSGEmployer).
		Add(t.PRGF).Add(t.TrainingLevy)
}

// PayrollCycle - one (tenant, month, year), unique per tenant.
type PayrollCycle struct {
	ID       string
	TenantID string
	Month    int
	Year     int

	Status        CycleStatus
	Totals        CycleTotals
	EmployeeCount int
	Outcomes      []EmployeeOutcome

	ProcessedAt      *time.Time
	ProcessedBy      *string
	ApprovedAt       *time.Time
	ApprovedBy       *string
	PaymentDate      *time.Time
	PaymentReference *string
	Notes            *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartProcessing moves Draft -> Processing. A cycle already in
// Processing may be re-run: the recompute is idempotent and replaces
// the previous run's payslips and outcomes wholesale, which is how a
// cycle blocked from approval gets fixed. Approved and Paid cycles are
// frozen.
func (c *PayrollCycle) StartProcessing(by string, at time.Time) error {
	if c.Status != CycleStatusDraft && c.Status != CycleStatusProcessing {
		return fmt.Errorf("%w: cycle %d/%d is %s", ErrCycleNotProcessable, c.Month, c.Year, c.Status)
	}
	c.Status = CycleStatusProcessing
	c.ProcessedBy = &by
	c.ProcessedAt = &at
	return nil
}

// FailProcessing returns the cycle to Draft, discarding partial results.
// Processing is all-or-nothing per cycle.
func (c *PayrollCycle) FailProcessing() {
	c.Status = CycleStatusDraft
	c.Totals = CycleTotals{}
	c.EmployeeCount = 0
	c.Outcomes = nil
}

// Approve moves Processing -> Approved. Callers must have verified
// every payslip first; blocking outcomes keep the guard closed.
func (c *PayrollCycle) Approve(by string, at time.Time) error {
	if c.Status != CycleStatusProcessing {
		return fmt.Errorf("%w: cycle is %s", ErrCycleNotApprovable, c.Status)
	}
	for _, o := range c.Outcomes {
		if o.Blocking {
			return fmt.Errorf("%w: employee %s: %s", ErrCycleNotApprovable, o.EmployeeID, o.Reason)
		}
	}
	c.Status = CycleStatusApproved
	c.ApprovedBy = &by
	c.ApprovedAt = &at
	return nil
}

// MarkPaid moves Approved -> Paid. Requires a payment reference and
// date; never recomputes.
func (c *PayrollCycle) MarkPaid(reference string, paymentDate, at time.Time) error {
	if c.Status != CycleStatusApproved {
		return fmt.Errorf("%w: cycle is %s", ErrCycleNotPayable, c.Status)
	}
	if reference == "" {
		return fmt.Errorf("%w: payment reference is required", ErrCycleNotPayable)
	}
	c.Status = CycleStatusPaid
	c.PaymentReference = &reference
	c.PaymentDate = &paymentDate
	c.UpdatedAt = at
	return nil
}
