package timesheet

import (
	"context"
	"time"
)

type Repository interface {
	// GetForPeriod returns the employee's timesheet covering the given
	// period, entries included, or ErrTimesheetNotFound.
	GetForPeriod(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) (Timesheet, error)
}
