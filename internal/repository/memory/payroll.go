package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
)

type PayrollRepository struct {
	mu       sync.RWMutex
	cycles   map[string]payroll.PayrollCycle
	payslips map[string]payroll.Payslip
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		cycles:   make(map[string]payroll.PayrollCycle),
		payslips: make(map[string]payroll.Payslip),
	}
}

func (r *PayrollRepository) CreateCycle(_ context.Context, cycle payroll.PayrollCycle) (payroll.PayrollCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.cycles {
		if c.TenantID == cycle.TenantID && c.Month == cycle.Month && c.Year == cycle.Year {
			return payroll.PayrollCycle{}, payroll.ErrCycleAlreadyExists
		}
	}
	r.cycles[cycle.ID] = cycle
	return cycle, nil
}

func (r *PayrollRepository) GetCycleByID(_ context.Context, id, tenantID string) (payroll.PayrollCycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cycles[id]
	if !ok || c.TenantID != tenantID {
		return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
	}
	return c, nil
}

func (r *PayrollRepository) GetCycleByPeriod(_ context.Context, tenantID string, month, year int) (payroll.PayrollCycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cycles {
		if c.TenantID == tenantID && c.Month == month && c.Year == year {
			return c, nil
		}
	}
	return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
}

func (r *PayrollRepository) ListCycles(_ context.Context, tenantID string, year *int) ([]payroll.PayrollCycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payroll.PayrollCycle
	for _, c := range r.cycles {
		if c.TenantID != tenantID {
			continue
		}
		if year != nil && c.Year != *year {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (r *PayrollRepository) UpdateCycle(_ context.Context, cycle payroll.PayrollCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cycles[cycle.ID]; !ok {
		return payroll.ErrCycleNotFound
	}
	r.cycles[cycle.ID] = cycle
	return nil
}

// ReplaceCyclePayslips swaps the cycle's payslips and the cycle record
// under one lock, matching the transactional commit of the SQL
// implementation. Payslips of an Approved or Paid cycle are immutable.
func (r *PayrollRepository) ReplaceCyclePayslips(_ context.Context, cycle payroll.PayrollCycle, payslips []payroll.Payslip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.cycles[cycle.ID]
	if !ok {
		return payroll.ErrCycleNotFound
	}
	if stored.Status == payroll.CycleStatusApproved || stored.Status == payroll.CycleStatusPaid {
		return fmt.Errorf("%w: cycle %s is %s", payroll.ErrPayslipImmutable, cycle.ID, stored.Status)
	}
	for id, slip := range r.payslips {
		if slip.PayrollCycleID == cycle.ID {
			delete(r.payslips, id)
		}
	}
	for _, slip := range payslips {
		if slip.PayrollCycleID != cycle.ID {
			return fmt.Errorf("payslip %s belongs to cycle %s, not %s", slip.ID, slip.PayrollCycleID, cycle.ID)
		}
		r.payslips[slip.ID] = slip
	}
	r.cycles[cycle.ID] = cycle
	return nil
}

func (r *PayrollRepository) GetPayslipByID(_ context.Context, id, tenantID string) (payroll.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slip, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	cycle, ok := r.cycles[slip.PayrollCycleID]
	if !ok || cycle.TenantID != tenantID {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return slip, nil
}

func (r *PayrollRepository) GetPayslipsForCycle(_ context.Context, cycleID, tenantID string) ([]payroll.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cycle, ok := r.cycles[cycleID]
	if !ok || cycle.TenantID != tenantID {
		return nil, payroll.ErrCycleNotFound
	}
	var out []payroll.Payslip
	for _, slip := range r.payslips {
		if slip.PayrollCycleID == cycleID {
			out = append(out, slip)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r *PayrollRepository) GetEmployeePayslips(_ context.Context, employeeID, tenantID string, year *int) ([]payroll.Payslip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payroll.Payslip
	for _, slip := range r.payslips {
		if slip.EmployeeID != employeeID {
			continue
		}
		cycle, ok := r.cycles[slip.PayrollCycleID]
		if !ok || cycle.TenantID != tenantID {
			continue
		}
		if year != nil && slip.Year != *year {
			continue
		}
		out = append(out, slip)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

// CommitCyclePayment updates the cycle and every payslip's payment
// fields under one lock, so partial payment state is never visible.
func (r *PayrollRepository) CommitCyclePayment(_ context.Context, cycle payroll.PayrollCycle, payslips []payroll.Payslip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cycles[cycle.ID]; !ok {
		return payroll.ErrCycleNotFound
	}
	for _, slip := range payslips {
		if _, ok := r.payslips[slip.ID]; !ok {
			return payroll.ErrPayslipNotFound
		}
	}
	r.cycles[cycle.ID] = cycle
	for _, slip := range payslips {
		r.payslips[slip.ID] = slip
	}
	return nil
}
