package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
)

func juneCycle(status payroll.CycleStatus) payroll.PayrollCycle {
	return payroll.PayrollCycle{
		ID:       "cycle-1",
		TenantID: "tenant-1",
		Month:    6,
		Year:     2025,
		Status:   status,
	}
}

func junePayslip(id, employeeID string) payroll.Payslip {
	return payroll.Payslip{
		ID:             id,
		PayrollCycleID: "cycle-1",
		EmployeeID:     employeeID,
		Month:          6,
		Year:           2025,
		Net:            decimal.NewFromInt(15000),
		PaymentStatus:  payroll.PaymentStatusPending,
	}
}

func TestReplaceCyclePayslipsRefusedOnceApproved(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository()

	cycle := juneCycle(payroll.CycleStatusProcessing)
	_, err := repo.CreateCycle(ctx, cycle)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceCyclePayslips(ctx, cycle, []payroll.Payslip{junePayslip("ps-1", "emp-1")}))

	cycle.Status = payroll.CycleStatusApproved
	require.NoError(t, repo.UpdateCycle(ctx, cycle))

	// The stored status decides, regardless of what the caller passes.
	stale := juneCycle(payroll.CycleStatusProcessing)
	err = repo.ReplaceCyclePayslips(ctx, stale, []payroll.Payslip{junePayslip("ps-2", "emp-1")})
	require.ErrorIs(t, err, payroll.ErrPayslipImmutable)

	slips, err := repo.GetPayslipsForCycle(ctx, "cycle-1", "tenant-1")
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, "ps-1", slips[0].ID)
}

func TestReplaceCyclePayslipsSwapsWholesale(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository()

	cycle := juneCycle(payroll.CycleStatusProcessing)
	_, err := repo.CreateCycle(ctx, cycle)
	require.NoError(t, err)

	first := []payroll.Payslip{junePayslip("ps-1", "emp-1"), junePayslip("ps-2", "emp-2")}
	require.NoError(t, repo.ReplaceCyclePayslips(ctx, cycle, first))

	second := []payroll.Payslip{junePayslip("ps-3", "emp-1")}
	require.NoError(t, repo.ReplaceCyclePayslips(ctx, cycle, second))

	slips, err := repo.GetPayslipsForCycle(ctx, "cycle-1", "tenant-1")
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, "ps-3", slips[0].ID)
}

func TestCommitCyclePaymentAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository()

	cycle := juneCycle(payroll.CycleStatusProcessing)
	_, err := repo.CreateCycle(ctx, cycle)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceCyclePayslips(ctx, cycle, []payroll.Payslip{junePayslip("ps-1", "emp-1")}))

	cycle.Status = payroll.CycleStatusPaid
	paid := junePayslip("ps-1", "emp-1")
	paid.PaymentStatus = payroll.PaymentStatusPaid
	unknown := junePayslip("ps-missing", "emp-2")
	unknown.PaymentStatus = payroll.PaymentStatusPaid

	// One unknown payslip fails the whole commit.
	err = repo.CommitCyclePayment(ctx, cycle, []payroll.Payslip{paid, unknown})
	require.ErrorIs(t, err, payroll.ErrPayslipNotFound)

	stored, err := repo.GetCycleByID(ctx, "cycle-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusProcessing, stored.Status)

	slip, err := repo.GetPayslipByID(ctx, "ps-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPending, slip.PaymentStatus)

	require.NoError(t, repo.CommitCyclePayment(ctx, cycle, []payroll.Payslip{paid}))

	stored, err = repo.GetCycleByID(ctx, "cycle-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusPaid, stored.Status)

	slip, err = repo.GetPayslipByID(ctx, "ps-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPaid, slip.PaymentStatus)
}

func TestCreateCycleUniquePerPeriod(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository()

	_, err := repo.CreateCycle(ctx, juneCycle(payroll.CycleStatusDraft))
	require.NoError(t, err)

	dup := juneCycle(payroll.CycleStatusDraft)
	dup.ID = "cycle-2"
	_, err = repo.CreateCycle(ctx, dup)
	require.ErrorIs(t, err, payroll.ErrCycleAlreadyExists)

	// Same period, different tenant is fine.
	other := juneCycle(payroll.CycleStatusDraft)
	other.ID = "cycle-3"
	other.TenantID = "tenant-2"
	_, err = repo.CreateCycle(ctx, other)
	require.NoError(t, err)
}
