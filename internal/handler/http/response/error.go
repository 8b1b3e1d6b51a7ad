package response

import (
	"errors"
	"net/http"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Rule domain errors
	case errors.Is(err, rule.ErrRuleNotFound):
		NotFound(w, "Compliance rule not found")
	case errors.Is(err, rule.ErrSectorNotFound):
		NotFound(w, "Sector not found")
	case errors.Is(err, rule.ErrOverrideNotFound):
		NotFound(w, "Tenant override not found")
	case errors.Is(err, rule.ErrInvalidRuleConfiguration):
		UnprocessableEntity(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNoBasicSalary):
		UnprocessableEntity(w, "Employee has no basic salary configured")

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrTimesheetNotReady):
		Conflict(w, "Timesheet is not approved and locked")
	case errors.Is(err, timesheet.ErrTimesheetLocked):
		Conflict(w, "Timesheet is locked")
	case errors.Is(err, timesheet.ErrInvalidTransition):
		Conflict(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrCycleNotFound):
		NotFound(w, "Payroll cycle not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrCycleAlreadyExists):
		Conflict(w, "A payroll cycle already exists for this period")
	case errors.Is(err, payroll.ErrCycleNotProcessable),
		errors.Is(err, payroll.ErrCycleNotApprovable),
		errors.Is(err, payroll.ErrCycleNotPayable),
		errors.Is(err, payroll.ErrPayslipImmutable):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNegativeNetPay),
		errors.Is(err, payroll.ErrPayslipInconsistent),
		errors.Is(err, payroll.ErrOvertimeCapExceeded),
		errors.Is(err, payroll.ErrCalculationPrecision):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
