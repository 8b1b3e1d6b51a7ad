package timesheet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status enum - timesheet workflow states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Entry - one day of work for one employee, generated from attendance.
// Mutable until the owning timesheet locks; afterwards changes go
// through an approved adjustment record.
type Entry struct {
	ID          string
	TimesheetID string
	Date        time.Time

	ClockIn      *time.Time
	ClockOut     *time.Time
	BreakMinutes int

	// Day status flags
	IsAbsent     bool
	IsHoliday    bool
	IsWeekend    bool
	IsOnLeave    bool
	IsNightShift bool
	// IsCycloneDay marks days worked under a class III cyclone warning.
	IsCycloneDay bool

	// Preset leave hours, used instead of clock times when on leave.
	SickLeaveHours   decimal.Decimal
	AnnualLeaveHours decimal.Decimal
	UnpaidLeaveHours decimal.Decimal

	// Derived hour buckets, filled by the aggregator.
	ActualHours   decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HolidayHours  decimal.Decimal

	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Totals - period aggregates, always a pure function of the entries.
type Totals struct {
	RegularHours     decimal.Decimal
	OvertimeHours    decimal.Decimal
	HolidayHours     decimal.Decimal
	SickLeaveHours   decimal.Decimal
	AnnualLeaveHours decimal.Decimal
	UnpaidLeaveHours decimal.Decimal
	AbsentHours      decimal.Decimal
	AbsentDays       int
	UnpaidLeaveDays  int
	WorkedDays       int
}

// PayableHours is everything compensated at some rate.
func (t Totals) PayableHours() decimal.Decimal {
	return t.RegularHours.
		Add(t.OvertimeHours).
		Add(t.HolidayHours).
		Add(t.SickLeaveHours).
		Add(t.AnnualLeaveHours)
}

// Timesheet - one employee, one period.
type Timesheet struct {
	ID          string
	TenantID    string
	EmployeeID  string
	PeriodStart time.Time
	PeriodEnd   time.Time

	Entries []Entry
	Totals  Totals

	Status   Status
	IsLocked bool

	SubmittedAt     *time.Time
	SubmittedBy     *string
	ApprovedAt      *time.Time
	ApprovedBy      *string
	RejectedAt      *time.Time
	RejectedBy      *string
	RejectionReason *string
	LockedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ready reports whether the timesheet can feed a payroll run: approved
// and locked so no concurrent edit can change the hours mid-cycle.
func (t *Timesheet) Ready() bool {
	return t.Status == StatusApproved && t.IsLocked
}

func (t *Timesheet) CanEdit() bool {
	return t.Status == StatusDraft && !t.IsLocked
}

// Submit moves Draft -> Submitted.
func (t *Timesheet) Submit(by string, at time.Time) error {
	if t.IsLocked {
		return ErrTimesheetLocked
	}
	if t.Status != StatusDraft {
		return fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, t.Status)
	}
	if len(t.Entries) == 0 {
		return fmt.Errorf("%w: timesheet has no entries", ErrInvalidTransition)
	}
	t.Status = StatusSubmitted
	t.SubmittedAt = &at
	t.SubmittedBy = &by
	return nil
}

// Approve moves Submitted -> Approved and locks the timesheet.
func (t *Timesheet) Approve(by string, at time.Time) error {
	if t.Status != StatusSubmitted || t.IsLocked {
		return fmt.Errorf("%w: cannot approve from %s", ErrInvalidTransition, t.Status)
	}
	t.Status = StatusApproved
	t.ApprovedAt = &at
	t.ApprovedBy = &by
	t.IsLocked = true
	t.LockedAt = &at
	return nil
}

// Reject moves Submitted -> Rejected.
func (t *Timesheet) Reject(by, reason string, at time.Time) error {
	if t.Status != StatusSubmitted || t.IsLocked {
		return fmt.Errorf("%w: cannot reject from %s", ErrInvalidTransition, t.Status)
	}
	t.Status = StatusRejected
	t.RejectedAt = &at
	t.RejectedBy = &by
	t.RejectionReason = &reason
	return nil
}

// Reopen moves Rejected -> Draft, the only backward transition.
func (t *Timesheet) Reopen() error {
	if t.Status != StatusRejected {
		return fmt.Errorf("%w: only rejected timesheets can be reopened", ErrInvalidTransition)
	}
	t.Status = StatusDraft
	t.RejectedAt = nil
	t.RejectedBy = nil
	t.RejectionReason = nil
	return nil
}

// RecalculateTotals rebuilds the aggregates from the entries.
// absenceDailyHours is the fixed per-day assumption used to express
// absences in hours.
func (t *Timesheet) RecalculateTotals(absenceDailyHours decimal.Decimal) {
	totals := Totals{
		RegularHours:     decimal.Zero,
		OvertimeHours:    decimal.Zero,
		HolidayHours:     decimal.Zero,
		SickLeaveHours:   decimal.Zero,
		AnnualLeaveHours: decimal.Zero,
		UnpaidLeaveHours: decimal.Zero,
		AbsentHours:      decimal.Zero,
	}
	for _, e := range t.Entries {
		totals.RegularHours = totals.RegularHours.Add(e.RegularHours)
		totals.OvertimeHours = totals.OvertimeHours.Add(e.OvertimeHours)
		totals.HolidayHours = totals.HolidayHours.Add(e.HolidayHours)
		totals.SickLeaveHours = totals.SickLeaveHours.Add(e.SickLeaveHours)
		totals.AnnualLeaveHours = totals.AnnualLeaveHours.Add(e.AnnualLeaveHours)
		totals.UnpaidLeaveHours = totals.UnpaidLeaveHours.Add(e.UnpaidLeaveHours)
		if e.IsAbsent {
			totals.AbsentDays++
			totals.AbsentHours = totals.AbsentHours.Add(absenceDailyHours)
		}
		if e.UnpaidLeaveHours.GreaterThan(decimal.Zero) {
			totals.UnpaidLeaveDays++
		}
		if e.ActualHours.GreaterThan(decimal.Zero) && !e.IsOnLeave {
			totals.WorkedDays++
		}
	}
	t.Totals = totals
}
