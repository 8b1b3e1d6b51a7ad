package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/database"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.Repository {
	return &timesheetRepository{db: db}
}

func (r *timesheetRepository) GetForPeriod(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, employee_id, period_start, period_end, status, is_locked,
			   submitted_at, submitted_by, approved_at, approved_by,
			   rejected_at, rejected_by, rejection_reason, locked_at,
			   created_at, updated_at
		FROM timesheets
		WHERE tenant_id = $1 AND employee_id = $2
		  AND period_start >= $3 AND period_end <= $4
		ORDER BY period_start
		LIMIT 1
	`

	var ts timesheet.Timesheet
	err := q.QueryRow(ctx, query, tenantID, employeeID, periodStart, periodEnd).Scan(
		&ts.ID, &ts.TenantID, &ts.EmployeeID, &ts.PeriodStart, &ts.PeriodEnd, &ts.Status, &ts.IsLocked,
		&ts.SubmittedAt, &ts.SubmittedBy, &ts.ApprovedAt, &ts.ApprovedBy,
		&ts.RejectedAt, &ts.RejectedBy, &ts.RejectionReason, &ts.LockedAt,
		&ts.CreatedAt, &ts.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}

	entries, err := r.getEntries(ctx, ts.ID)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	ts.Entries = entries

	return ts, nil
}

func (r *timesheetRepository) getEntries(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timesheet_id, entry_date, clock_in, clock_out, break_minutes,
			   is_absent, is_holiday, is_weekend, is_on_leave, is_night_shift, is_cyclone_day,
			   sick_leave_hours, annual_leave_hours, unpaid_leave_hours,
			   actual_hours, regular_hours, overtime_hours, holiday_hours,
			   notes, created_at, updated_at
		FROM timesheet_entries
		WHERE timesheet_id = $1
		ORDER BY entry_date
	`

	rows, err := q.Query(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	defer rows.Close()

	var out []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		err := rows.Scan(
			&e.ID, &e.TimesheetID, &e.Date, &e.ClockIn, &e.ClockOut, &e.BreakMinutes,
			&e.IsAbsent, &e.IsHoliday, &e.IsWeekend, &e.IsOnLeave, &e.IsNightShift, &e.IsCycloneDay,
			&e.SickLeaveHours, &e.AnnualLeaveHours, &e.UnpaidLeaveHours,
			&e.ActualHours, &e.RegularHours, &e.OvertimeHours, &e.HolidayHours,
			&e.Notes, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
