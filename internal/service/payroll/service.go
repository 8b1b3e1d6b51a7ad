package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
	"github.com/lagoon-hr/payroll-backend-go/internal/service/rules"
	timesheetsvc "github.com/lagoon-hr/payroll-backend-go/internal/service/timesheet"
)

// Config tunes a payroll run.
type Config struct {
	// Workers bounds the number of concurrent employee calculations.
	Workers int
	// StrictTimesheets aborts the whole run when any in-scope employee's
	// timesheet is missing or not approved-and-locked, returning the
	// cycle to Draft. When false the employee is excluded from the run
	// without blocking the cycle.
	StrictTimesheets bool
}

// Service orchestrates the payroll cycle lifecycle:
// Draft -> Processing -> Approved -> Paid.
type Service struct {
	payrollRepo   payroll.Repository
	employeeRepo  employee.Repository
	timesheetRepo timesheet.Repository
	resolver      *rules.Resolver
	aggregator    *timesheetsvc.Aggregator
	composer      *Composer
	cfg           Config
	logger        *slog.Logger
}

func NewService(
	payrollRepo payroll.Repository,
	employeeRepo employee.Repository,
	timesheetRepo timesheet.Repository,
	resolver *rules.Resolver,
	aggregator *timesheetsvc.Aggregator,
	composer *Composer,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Service{
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		timesheetRepo: timesheetRepo,
		resolver:      resolver,
		aggregator:    aggregator,
		composer:      composer,
		cfg:           cfg,
		logger:        logger,
	}
}

// CreateCycle opens a Draft cycle for (tenant, month, year). At most
// one cycle may exist per period.
func (s *Service) CreateCycle(ctx context.Context, tenantID string, req payroll.CreateCycleRequest) (payroll.PayrollCycle, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollCycle{}, err
	}

	_, err := s.payrollRepo.GetCycleByPeriod(ctx, tenantID, req.Month, req.Year)
	switch {
	case err == nil:
		return payroll.PayrollCycle{}, fmt.Errorf("%w: %d/%d", payroll.ErrCycleAlreadyExists, req.Month, req.Year)
	case errors.Is(err, payroll.ErrCycleNotFound):
	default:
		return payroll.PayrollCycle{}, fmt.Errorf("checking for existing cycle: %w", err)
	}

	now := time.Now().UTC()
	cycle := payroll.PayrollCycle{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Month:     req.Month,
		Year:      req.Year,
		Status:    payroll.CycleStatusDraft,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.payrollRepo.CreateCycle(ctx, cycle)
}

func (s *Service) GetCycle(ctx context.Context, cycleID, tenantID string) (payroll.PayrollCycle, error) {
	return s.payrollRepo.GetCycleByID(ctx, cycleID, tenantID)
}

func (s *Service) ListCycles(ctx context.Context, tenantID string, year *int) ([]payroll.PayrollCycle, error) {
	return s.payrollRepo.ListCycles(ctx, tenantID, year)
}

// ProcessCycle runs the calculation for every selected employee and
// commits the results atomically. The rule snapshot is taken once at
// the start; rule edits made mid-run do not affect the cycle. On any
// infrastructure failure the cycle returns to Draft with no payslips.
func (s *Service) ProcessCycle(ctx context.Context, tenantID, cycleID, by string, req payroll.ProcessCycleRequest) (payroll.PayrollCycle, error) {
	cycle, err := s.payrollRepo.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}

	now := time.Now().UTC()
	if err := cycle.StartProcessing(by, now); err != nil {
		return payroll.PayrollCycle{}, err
	}
	// Persist Processing before calculating so a concurrent trigger
	// hits the status guard instead of racing the run.
	if err := s.payrollRepo.UpdateCycle(ctx, cycle); err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("marking cycle processing: %w", err)
	}

	processed, err := s.runCalculations(ctx, cycle, req)
	if err != nil {
		cycle.FailProcessing()
		if uerr := s.payrollRepo.UpdateCycle(ctx, cycle); uerr != nil {
			s.logger.Error("resetting failed cycle to draft",
				slog.String("cycle_id", cycle.ID), slog.String("error", uerr.Error()))
		}
		return payroll.PayrollCycle{}, err
	}
	return processed, nil
}

type employeeResult struct {
	outcome payroll.EmployeeOutcome
	payslip *payroll.Payslip
}

func (s *Service) runCalculations(ctx context.Context, cycle payroll.PayrollCycle, req payroll.ProcessCycleRequest) (payroll.PayrollCycle, error) {
	periodStart := startOfMonth(cycle.Year, cycle.Month)
	periodEnd := endOfMonth(cycle.Year, cycle.Month)
	now := time.Now().UTC()

	sector, err := s.resolver.TenantSector(ctx, cycle.TenantID)
	if err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("resolving tenant sector: %w", err)
	}
	snap, err := s.resolver.Snapshot(ctx, cycle.TenantID, sector.ID, periodEnd)
	if err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("building rule snapshot: %w", err)
	}

	employees, err := s.selectEmployees(ctx, cycle.TenantID, req.EmployeeIDs)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}

	results := make([]employeeResult, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			res, err := s.calculateEmployee(gctx, cycle, emp, snap, periodStart, periodEnd, now)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.EmployeeCode, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.PayrollCycle{}, err
	}

	// Single-writer reduce after all workers are done.
	var payslips []payroll.Payslip
	totals := payroll.CycleTotals{}
	cycle.Outcomes = cycle.Outcomes[:0]
	for _, res := range results {
		cycle.Outcomes = append(cycle.Outcomes, res.outcome)
		if res.payslip == nil {
			continue
		}
		payslips = append(payslips, *res.payslip)
		addToTotals(&totals, *res.payslip)
	}
	cycle.Totals = totals
	cycle.EmployeeCount = len(payslips)
	cycle.UpdatedAt = now
	if req.Notes != nil {
		cycle.Notes = req.Notes
	}

	if err := s.payrollRepo.ReplaceCyclePayslips(ctx, cycle, payslips); err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("committing cycle results: %w", err)
	}

	s.logger.Info("payroll cycle processed",
		slog.String("cycle_id", cycle.ID),
		slog.String("tenant_id", cycle.TenantID),
		slog.Int("payslips", len(payslips)),
		slog.Int("employees", len(employees)))
	return cycle, nil
}

func (s *Service) selectEmployees(ctx context.Context, tenantID string, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return s.employeeRepo.GetActiveByTenantID(ctx, tenantID)
	}
	out := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		emp, err := s.employeeRepo.GetByID(ctx, id, tenantID)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}
		out = append(out, emp)
	}
	return out, nil
}

// calculateEmployee computes one employee in isolation. Domain problems
// become outcomes; only infrastructure errors abort the whole run.
func (s *Service) calculateEmployee(ctx context.Context, cycle payroll.PayrollCycle, emp employee.Employee, snap *rules.Snapshot, periodStart, periodEnd, now time.Time) (employeeResult, error) {
	ts, err := s.timesheetRepo.GetForPeriod(ctx, cycle.TenantID, emp.ID, periodStart, periodEnd)
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return s.timesheetGap(emp, "no timesheet for the period")
		}
		return employeeResult{}, err
	}
	if !ts.Ready() {
		return s.timesheetGap(emp, fmt.Sprintf("timesheet is %s, not approved and locked", ts.Status))
	}

	wh, err := snap.WorkingHours()
	if err != nil {
		return employeeResult{}, err
	}
	if err := s.aggregator.Aggregate(&ts, wh); err != nil {
		return failedResult(emp, err), nil
	}

	components, err := s.employeeRepo.GetSalaryComponents(ctx, emp.ID)
	if err != nil {
		return employeeResult{}, err
	}

	slip, err := s.composer.Compose(cycle, emp, &ts, snap, components, now)
	if err != nil {
		return failedResult(emp, err), nil
	}

	return employeeResult{
		outcome: payroll.EmployeeOutcome{
			EmployeeID:   emp.ID,
			EmployeeCode: emp.EmployeeCode,
			Status:       payroll.OutcomeSuccess,
		},
		payslip: &slip,
	}, nil
}

// timesheetGap handles an employee whose timesheet is missing or not
// approved-and-locked. Strict policy aborts the whole run, returning
// the cycle to Draft; lenient policy excludes the employee.
func (s *Service) timesheetGap(emp employee.Employee, reason string) (employeeResult, error) {
	if s.cfg.StrictTimesheets {
		return employeeResult{}, fmt.Errorf("%w: %s", timesheet.ErrTimesheetNotReady, reason)
	}
	return employeeResult{outcome: payroll.EmployeeOutcome{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Status:       payroll.OutcomeExcluded,
		Reason:       reason,
	}}, nil
}

func failedResult(emp employee.Employee, err error) employeeResult {
	return employeeResult{outcome: payroll.EmployeeOutcome{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Status:       payroll.OutcomeFailed,
		Reason:       err.Error(),
		Blocking:     true,
	}}
}

func addToTotals(t *payroll.CycleTotals, p payroll.Payslip) {
	t.Gross = t.Gross.Add(p.Gross)
	t.Deductions = t.Deductions.Add(p.TotalDeductions)
	t.Net = t.Net.Add(p.Net)
	t.OvertimePay = t.OvertimePay.Add(p.OvertimePay)
	t.NPFEmployee = t.NPFEmployee.Add(p.Statutory.NPFEmployee)
	t.NPFEmployer = t.NPFEmployer.Add(p.Statutory.NPFEmployer)
	t.NSFEmployee = t.NSFEmployee.Add(p.Statutory.NSFEmployee)
	t.NSFEmployer = t.NSFEmployer.Add(p.Statutory.NSFEmployer)
	t.CSGEmployee = t.CSGEmployee.Add(p.Statutory.CSGEmployee)
	t.CSGEmployer = t.CSGEmployer.Add(p.Statutory.CSGEmployer)
	t.PRGF = t.PRGF.Add(p.Statutory.PRGF)
	t.TrainingLevy = t.TrainingLevy.Add(p.Statutory.TrainingLevy)
	t.PAYE = t.PAYE.Add(p.Statutory.PAYE)
}

// ApproveCycle moves a processed cycle to Approved. Any blocking
// employee outcome keeps the cycle in Processing until resolved and
// reprocessed.
func (s *Service) ApproveCycle(ctx context.Context, tenantID, cycleID, by string, req payroll.ApproveCycleRequest) (payroll.PayrollCycle, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollCycle{}, err
	}
	cycle, err := s.payrollRepo.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}

	now := time.Now().UTC()
	if err := cycle.Approve(by, now); err != nil {
		return payroll.PayrollCycle{}, err
	}
	paymentDate, _ := time.Parse("2006-01-02", req.PaymentDate)
	cycle.PaymentDate = &paymentDate
	if req.Notes != nil {
		cycle.Notes = req.Notes
	}
	cycle.UpdatedAt = now

	if err := s.payrollRepo.UpdateCycle(ctx, cycle); err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("persisting approval: %w", err)
	}
	return cycle, nil
}

// MarkCyclePaid records the bank run: the cycle moves to Paid and every
// payslip gets the payment reference. Amounts are never recomputed.
func (s *Service) MarkCyclePaid(ctx context.Context, tenantID, cycleID string, req payroll.MarkPaidRequest) (payroll.PayrollCycle, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollCycle{}, err
	}
	cycle, err := s.payrollRepo.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}

	now := time.Now().UTC()
	paymentDate, _ := time.Parse("2006-01-02", req.PaymentDate)
	if err := cycle.MarkPaid(req.PaymentReference, paymentDate, now); err != nil {
		return payroll.PayrollCycle{}, err
	}

	payslips, err := s.payrollRepo.GetPayslipsForCycle(ctx, cycle.ID, tenantID)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}
	method := "bank_transfer"
	for i := range payslips {
		payslips[i].PaymentStatus = payroll.PaymentStatusPaid
		payslips[i].PaidAt = &now
		payslips[i].PaymentMethod = &method
		payslips[i].PaymentReference = &req.PaymentReference
		payslips[i].UpdatedAt = now
	}
	if err := s.payrollRepo.CommitCyclePayment(ctx, cycle, payslips); err != nil {
		return payroll.PayrollCycle{}, fmt.Errorf("persisting payment: %w", err)
	}
	return cycle, nil
}

func (s *Service) GetPayslip(ctx context.Context, payslipID, tenantID string) (payroll.Payslip, error) {
	return s.payrollRepo.GetPayslipByID(ctx, payslipID, tenantID)
}

func (s *Service) GetCyclePayslips(ctx context.Context, cycleID, tenantID string) ([]payroll.Payslip, error) {
	return s.payrollRepo.GetPayslipsForCycle(ctx, cycleID, tenantID)
}

func (s *Service) GetEmployeePayslips(ctx context.Context, employeeID, tenantID string, year *int) ([]payroll.Payslip, error) {
	return s.payrollRepo.GetEmployeePayslips(ctx, employeeID, tenantID, year)
}
