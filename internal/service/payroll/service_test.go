package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/timesheet"
	"github.com/lagoon-hr/payroll-backend-go/internal/fixtures"
	"github.com/lagoon-hr/payroll-backend-go/internal/repository/memory"
	"github.com/lagoon-hr/payroll-backend-go/internal/service/rules"
	timesheetsvc "github.com/lagoon-hr/payroll-backend-go/internal/service/timesheet"
)

const tenantID = "tenant-hotel-1"

type testEnv struct {
	service       *Service
	payrollRepo   *memory.PayrollRepository
	employeeRepo  *memory.EmployeeRepository
	timesheetRepo *memory.TimesheetRepository
	ruleRepo      *memory.RuleRepository
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	ruleRepo := memory.NewRuleRepository()
	for _, s := range fixtures.Sectors() {
		ruleRepo.SeedSector(s)
	}
	for _, r := range fixtures.Rules() {
		ruleRepo.SeedRule(r)
	}
	ruleRepo.MapTenant(tenantID, fixtures.SectorHotelLarge)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	payrollRepo := memory.NewPayrollRepository()
	employeeRepo := memory.NewEmployeeRepository()
	timesheetRepo := memory.NewTimesheetRepository()

	service := NewService(
		payrollRepo, employeeRepo, timesheetRepo,
		rules.NewResolver(ruleRepo, logger),
		timesheetsvc.NewAggregator(logger),
		NewComposer(DefaultStatutoryRates(), mur("173.33")),
		cfg,
		logger,
	)

	return &testEnv{
		service:       service,
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		timesheetRepo: timesheetRepo,
		ruleRepo:      ruleRepo,
	}
}

func seedEmployee(env *testEnv, id, code string, basic decimal.Decimal) employee.Employee {
	emp := employee.Employee{
		ID:                id,
		TenantID:          tenantID,
		EmployeeCode:      code,
		FullName:          "Employee " + code,
		HireDate:          time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC),
		BasicSalary:       basic,
		Currency:          "MUR",
		BankName:          "MCB",
		BankAccountNumber: "000-" + code,
		IsActive:          true,
	}
	env.employeeRepo.Seed(emp)
	return emp
}

// seedTimesheet stores an approved, locked June 2025 timesheet with one
// 9 hour weekday per given day of month.
func seedTimesheet(env *testEnv, employeeID string, days ...int) {
	var entries []timesheet.Entry
	for _, day := range days {
		date := time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC)
		clockIn := date.Add(8 * time.Hour)
		clockOut := clockIn.Add(9 * time.Hour)
		entries = append(entries, timesheet.Entry{
			ID:       date.Format("2006-01-02"),
			Date:     date,
			ClockIn:  &clockIn,
			ClockOut: &clockOut,
		})
	}
	env.timesheetRepo.Seed(timesheet.Timesheet{
		ID:          "ts-" + employeeID,
		TenantID:    tenantID,
		EmployeeID:  employeeID,
		PeriodStart: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		Entries:     entries,
		Status:      timesheet.StatusApproved,
		IsLocked:    true,
	})
}

func createJuneCycle(t *testing.T, env *testEnv) payroll.PayrollCycle {
	t.Helper()
	cycle, err := env.service.CreateCycle(context.Background(), tenantID, payroll.CreateCycleRequest{
		Month: 6, Year: 2025,
	})
	require.NoError(t, err)
	return cycle
}

func TestCreateCycleDuplicatePeriodRejected(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	createJuneCycle(t, env)

	_, err := env.service.CreateCycle(context.Background(), tenantID, payroll.CreateCycleRequest{Month: 6, Year: 2025})
	require.ErrorIs(t, err, payroll.ErrCycleAlreadyExists)
}

func TestProcessCycleMinimumWageEarner(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	seedEmployee(env, "emp-1", "E001", mur("17110"))
	seedTimesheet(env, "emp-1", 2, 3, 4, 5, 6)
	cycle := createJuneCycle(t, env)

	processed, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusProcessing, processed.Status)
	assert.Equal(t, 1, processed.EmployeeCount)

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	slip := payslips[0]

	assert.Equal(t, "PS-2025-06-E001", slip.PayslipNumber)
	// Statutory salary compensation rides on top of the basic.
	assert.True(t, slip.BasicSalary.Equal(mur("17110")))
	assert.True(t, slip.Allowances.Equal(mur("610")))
	assert.True(t, slip.OvertimePay.IsZero())
	assert.True(t, slip.Gross.Equal(mur("17720")), "gross %s", slip.Gross)

	// Hired 2021: PRGF, never the legacy pension fund.
	assert.True(t, slip.Statutory.NPFEmployee.IsZero())
	assert.True(t, slip.Statutory.PRGF.Equal(mur("761.96")), "prgf %s", slip.Statutory.PRGF)
	assert.True(t, slip.Statutory.CSGEmployee.Equal(mur("265.80")), "csg %s", slip.Statutory.CSGEmployee)
	assert.True(t, slip.Statutory.NSFEmployee.Equal(mur("171.10")))
	assert.True(t, slip.Statutory.PAYE.IsZero())

	expectedNet := slip.Gross.Sub(slip.TotalDeductions)
	assert.True(t, slip.Net.Equal(expectedNet))
	require.NoError(t, slip.Validate())

	assert.True(t, processed.Totals.Gross.Equal(slip.Gross))
	assert.True(t, processed.Totals.PRGF.Equal(slip.Statutory.PRGF))
}

func TestProcessCycleOvertimePaid(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 2})
	seedEmployee(env, "emp-1", "E001", mur("34666"))

	// One weekday with 11 hours: 2 hours beyond the 9 hour standard.
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	clockIn := date.Add(8 * time.Hour)
	clockOut := clockIn.Add(11 * time.Hour)
	env.timesheetRepo.Seed(timesheet.Timesheet{
		ID: "ts-emp-1", TenantID: tenantID, EmployeeID: "emp-1",
		PeriodStart: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		Entries: []timesheet.Entry{{
			ID: "e1", Date: date, ClockIn: &clockIn, ClockOut: &clockOut,
		}},
		Status:   timesheet.StatusApproved,
		IsLocked: true,
	})
	cycle := createJuneCycle(t, env)

	_, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)

	// 34666 / 173.33 is exactly 200 hourly; 2h x 1.5 x 200 = 600.00.
	assert.True(t, payslips[0].OvertimeHours.Equal(mur("2")))
	assert.True(t, payslips[0].OvertimePay.Equal(mur("600.00")), "overtime pay %s", payslips[0].OvertimePay)
}

func TestProcessCycleRecomputeIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 2})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedTimesheet(env, "emp-1", 2)
	cycle := createJuneCycle(t, env)

	first, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)

	// Re-running a Processing cycle replaces the results wholesale.
	second, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	assert.True(t, second.Totals.Net.Equal(first.Totals.Net))

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	assert.Len(t, payslips, 1)
}

func TestProcessCycleFrozenOnceApproved(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 2})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedTimesheet(env, "emp-1", 2)
	cycle := createJuneCycle(t, env)

	_, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	_, err = env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.NoError(t, err)

	_, err = env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.ErrorIs(t, err, payroll.ErrCycleNotProcessable)
}

func TestReprocessUnblocksApproval(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	emp2 := seedEmployee(env, "emp-2", "E002", mur("20000"))
	seedTimesheet(env, "emp-1", 2, 3)
	seedTimesheet(env, "emp-2", 2, 3)
	env.employeeRepo.SeedComponent(employee.SalaryComponent{
		ID:            "comp-bad",
		EmployeeID:    emp2.ID,
		Name:          "mistyped deduction",
		Type:          employee.ComponentTypeDeduction,
		Amount:        mur("99999"),
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	cycle := createJuneCycle(t, env)

	_, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	_, err = env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.ErrorIs(t, err, payroll.ErrCycleNotApprovable)

	// The offending employee leaves the run; the cycle is reprocessed
	// from Processing and can then be approved.
	emp2.IsActive = false
	env.employeeRepo.Seed(emp2)

	processed, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, processed.EmployeeCount)
	require.Len(t, processed.Outcomes, 1)
	assert.Equal(t, payroll.OutcomeSuccess, processed.Outcomes[0].Status)

	approved, err := env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusApproved, approved.Status)
}

func TestProcessCycleLenientExcludesMissingTimesheet(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4, StrictTimesheets: false})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedEmployee(env, "emp-2", "E002", mur("25000"))
	seedTimesheet(env, "emp-1", 2, 3)
	// emp-2 has no timesheet.
	cycle := createJuneCycle(t, env)

	processed, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, processed.EmployeeCount)
	require.Len(t, processed.Outcomes, 2)

	byCode := map[string]payroll.EmployeeOutcome{}
	for _, o := range processed.Outcomes {
		byCode[o.EmployeeCode] = o
	}
	assert.Equal(t, payroll.OutcomeSuccess, byCode["E001"].Status)
	assert.Equal(t, payroll.OutcomeExcluded, byCode["E002"].Status)
	assert.False(t, byCode["E002"].Blocking)

	// Exclusions do not block approval.
	_, err = env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.NoError(t, err)
}

func TestProcessCycleStrictAbortsOnMissingTimesheet(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4, StrictTimesheets: true})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedEmployee(env, "emp-2", "E002", mur("25000"))
	seedTimesheet(env, "emp-1", 2, 3)
	// emp-2 has no timesheet: the whole run must abort.
	cycle := createJuneCycle(t, env)

	_, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.ErrorIs(t, err, timesheet.ErrTimesheetNotReady)

	// All-or-nothing: the cycle is back in Draft with no payslips.
	got, err := env.service.GetCycle(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusDraft, got.Status)

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	assert.Empty(t, payslips)
}

func TestProcessCycleStrictAbortsOnUnapprovedTimesheet(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4, StrictTimesheets: true})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedTimesheet(env, "emp-1", 2)
	ts, err := env.timesheetRepo.GetForPeriod(context.Background(), tenantID, "emp-1",
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ts.Status = timesheet.StatusSubmitted
	ts.IsLocked = false
	env.timesheetRepo.Seed(ts)
	cycle := createJuneCycle(t, env)

	_, err = env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.ErrorIs(t, err, timesheet.ErrTimesheetNotReady)

	got, err := env.service.GetCycle(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusDraft, got.Status)
}

func TestProcessCycleNegativeNetBlocksOnlyThatEmployee(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	emp2 := seedEmployee(env, "emp-2", "E002", mur("20000"))
	seedTimesheet(env, "emp-1", 2, 3)
	seedTimesheet(env, "emp-2", 2, 3)

	// A deduction bigger than the month's pay drives emp-2 negative.
	env.employeeRepo.SeedComponent(employee.SalaryComponent{
		ID:            "comp-1",
		EmployeeID:    emp2.ID,
		Name:          "equipment loss recovery",
		Type:          employee.ComponentTypeDeduction,
		Amount:        mur("99999"),
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	cycle := createJuneCycle(t, env)

	processed, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)

	byCode := map[string]payroll.EmployeeOutcome{}
	for _, o := range processed.Outcomes {
		byCode[o.EmployeeCode] = o
	}
	assert.Equal(t, payroll.OutcomeSuccess, byCode["E001"].Status)
	assert.Equal(t, payroll.OutcomeFailed, byCode["E002"].Status)
	assert.True(t, byCode["E002"].Blocking)
	assert.Contains(t, byCode["E002"].Reason, "negative")

	// E001 still has a payslip; the cycle cannot be approved.
	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.Equal(t, "E001", payslips[0].EmployeeCode)

	_, err = env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.ErrorIs(t, err, payroll.ErrCycleNotApprovable)
}

func TestCycleLifecycleThroughPaid(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedTimesheet(env, "emp-1", 2, 3, 4)
	cycle := createJuneCycle(t, env)

	_, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)

	approved, err := env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusApproved, approved.Status)

	paid, err := env.service.MarkCyclePaid(context.Background(), tenantID, cycle.ID,
		payroll.MarkPaidRequest{PaymentReference: "MCB-20250628-001", PaymentDate: "2025-06-28"})
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusPaid, paid.Status)

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	require.Len(t, payslips, 1)
	assert.Equal(t, payroll.PaymentStatusPaid, payslips[0].PaymentStatus)
	require.NotNil(t, payslips[0].PaymentReference)
	assert.Equal(t, "MCB-20250628-001", *payslips[0].PaymentReference)

	// Amounts are frozen: paying again is a state error, not a recompute.
	_, err = env.service.MarkCyclePaid(context.Background(), tenantID, cycle.ID,
		payroll.MarkPaidRequest{PaymentReference: "MCB-2", PaymentDate: "2025-06-29"})
	require.ErrorIs(t, err, payroll.ErrCycleNotPayable)
}

func TestApproveBeforeProcessingRejected(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	cycle := createJuneCycle(t, env)

	_, err := env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.ErrorIs(t, err, payroll.ErrCycleNotApprovable)
}

func TestBankTransferCSVRequiresApprovedCycle(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 4})
	seedEmployee(env, "emp-1", "E001", mur("20000"))
	seedTimesheet(env, "emp-1", 2)
	cycle := createJuneCycle(t, env)

	_, err := env.service.BankTransferCSV(context.Background(), cycle.ID, tenantID)
	require.ErrorIs(t, err, payroll.ErrCycleNotPayable)

	_, err = env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	_, err = env.service.ApproveCycle(context.Background(), tenantID, cycle.ID, "admin-1",
		payroll.ApproveCycleRequest{PaymentDate: "2025-06-28"})
	require.NoError(t, err)

	data, err := env.service.BankTransferCSV(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	assert.Contains(t, string(data), "E001")
	assert.Contains(t, string(data), "000-E001")
	assert.Contains(t, string(data), "PS-2025-06-E001")
}

func TestEstimateGratuity(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 1})
	emp := seedEmployee(env, "emp-legacy", "E010", mur("26000"))
	emp.HireDate = time.Date(2010, time.January, 15, 0, 0, 0, 0, time.UTC)
	emp.LegacyPensionScheme = true
	env.employeeRepo.Seed(emp)

	got, err := env.service.EstimateGratuity(context.Background(), tenantID, emp.ID,
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 15, got.YearsOfService)
	assert.True(t, got.Amount.Equal(mur("225000")), "amount %s", got.Amount)
	assert.Equal(t, "GN No. 185 of 2023", got.LegalReference)

	// Retirement-fund employees estimate zero.
	prgf := seedEmployee(env, "emp-prgf", "E011", mur("26000"))
	got, err = env.service.EstimateGratuity(context.Background(), tenantID, prgf.ID,
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, got.Amount.IsZero())
}

func TestProcessCycleWithManyEmployees(t *testing.T) {
	env := newTestEnv(t, Config{Workers: 8})
	for i := 0; i < 40; i++ {
		code := fmt.Sprintf("E%03d", i+1)
		id := "emp-bulk-" + code
		seedEmployee(env, id, code, mur("20000"))
		seedTimesheet(env, id, 2, 3, 4, 5, 6)
	}
	cycle := createJuneCycle(t, env)

	processed, err := env.service.ProcessCycle(context.Background(), tenantID, cycle.ID, "admin-1", payroll.ProcessCycleRequest{})
	require.NoError(t, err)
	assert.Equal(t, 40, processed.EmployeeCount)

	payslips, err := env.service.GetCyclePayslips(context.Background(), cycle.ID, tenantID)
	require.NoError(t, err)
	require.Len(t, payslips, 40)

	// Identical inputs produce identical results regardless of worker
	// interleaving.
	for _, slip := range payslips[1:] {
		assert.True(t, slip.Gross.Equal(payslips[0].Gross))
		assert.True(t, slip.Net.Equal(payslips[0].Net))
	}
}
