package payroll

import "errors"

var (
	ErrCycleNotFound      = errors.New("payroll cycle not found")
	ErrCycleAlreadyExists = errors.New("payroll cycle already exists for this period")
	ErrPayslipNotFound    = errors.New("payslip not found")

	// ErrCycleNotProcessable means the cycle is Approved or Paid and
	// its amounts are frozen. Draft and Processing cycles may be
	// (re)processed; the recompute replaces earlier results wholesale.
	ErrCycleNotProcessable = errors.New("payroll cycle cannot be processed in its current status")
	ErrCycleNotApprovable  = errors.New("payroll cycle cannot be approved")
	ErrCycleNotPayable     = errors.New("payroll cycle cannot be marked paid")

	// ErrNegativeNetPay means deductions exceeded gross for an employee.
	// Collected per employee, blocks cycle approval, does not abort
	// processing - it signals a configuration defect needing review.
	ErrNegativeNetPay = errors.New("net pay is negative")

	// ErrPayslipInconsistent means the gross/net arithmetic invariants
	// do not hold for a composed payslip.
	ErrPayslipInconsistent = errors.New("payslip totals are inconsistent")

	// ErrCalculationPrecision means a calculation produced an invalid
	// numeric result (for example a zero standard-hours divisor).
	ErrCalculationPrecision = errors.New("invalid numeric result in payroll calculation")

	// ErrOvertimeCapExceeded is raised only under the "reject" overtime
	// cap policy.
	ErrOvertimeCapExceeded = errors.New("overtime hours exceed the configured cap")

	ErrPayslipImmutable = errors.New("payslip belongs to an approved cycle and cannot be modified")
)
