package payroll

import "context"

type Repository interface {
	CreateCycle(ctx context.Context, cycle PayrollCycle) (PayrollCycle, error)
	GetCycleByID(ctx context.Context, id, tenantID string) (PayrollCycle, error)
	GetCycleByPeriod(ctx context.Context, tenantID string, month, year int) (PayrollCycle, error)
	ListCycles(ctx context.Context, tenantID string, year *int) ([]PayrollCycle, error)
	UpdateCycle(ctx context.Context, cycle PayrollCycle) error

	// ReplaceCyclePayslips atomically replaces the cycle's payslips and
	// persists the updated cycle. Used by the all-or-nothing commit at
	// the end of a successful processing run. Refuses with
	// ErrPayslipImmutable once the stored cycle is Approved or Paid.
	ReplaceCyclePayslips(ctx context.Context, cycle PayrollCycle, payslips []Payslip) error

	// CommitCyclePayment persists the Paid cycle together with its
	// payslips' payment fields in one atomic write, so a bank run can
	// never leave a Paid cycle with pending payslips.
	CommitCyclePayment(ctx context.Context, cycle PayrollCycle, payslips []Payslip) error

	GetPayslipByID(ctx context.Context, id, tenantID string) (Payslip, error)
	GetPayslipsForCycle(ctx context.Context, cycleID, tenantID string) ([]Payslip, error)
	GetEmployeePayslips(ctx context.Context, employeeID, tenantID string, year *int) ([]Payslip, error)
}
