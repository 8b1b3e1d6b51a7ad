package timesheet

import "errors"

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")

	// ErrInvalidTransition guards the Draft -> Submitted -> Approved|Rejected
	// workflow; Rejected -> Draft is the only backward move.
	ErrInvalidTransition = errors.New("invalid timesheet transition")

	// ErrTimesheetNotReady means an in-scope timesheet is not approved
	// and locked. Under the strict policy it fails the whole cycle,
	// otherwise the employee is excluded from the run.
	ErrTimesheetNotReady = errors.New("timesheet not approved and locked for payroll")

	ErrTimesheetLocked = errors.New("timesheet is locked; changes require an approved adjustment")
)
