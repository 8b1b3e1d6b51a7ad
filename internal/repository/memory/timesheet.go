package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
)

type TimesheetRepository struct {
	mu         sync.RWMutex
	timesheets []timesheet.Timesheet
}

func NewTimesheetRepository() *TimesheetRepository {
	return &TimesheetRepository{}
}

func (r *TimesheetRepository) Seed(ts timesheet.Timesheet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timesheets = append(r.timesheets, ts)
}

// GetForPeriod returns the employee's timesheet lying within the given
// period. A deep copy is returned so the aggregator can mutate derived
// fields without touching the stored record.
func (r *TimesheetRepository) GetForPeriod(_ context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) (timesheet.Timesheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ts := range r.timesheets {
		if ts.TenantID != tenantID || ts.EmployeeID != employeeID {
			continue
		}
		if ts.PeriodStart.Before(periodStart) || ts.PeriodEnd.After(periodEnd) {
			continue
		}
		cp := ts
		cp.Entries = make([]timesheet.Entry, len(ts.Entries))
		copy(cp.Entries, ts.Entries)
		return cp, nil
	}
	return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
}
