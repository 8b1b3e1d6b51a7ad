package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
)

type EmployeeRepository struct {
	mu         sync.RWMutex
	employees  map[string]employee.Employee
	components map[string][]employee.SalaryComponent
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{
		employees:  make(map[string]employee.Employee),
		components: make(map[string][]employee.SalaryComponent),
	}
}

func (r *EmployeeRepository) Seed(emp employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[emp.ID] = emp
}

func (r *EmployeeRepository) SeedComponent(c employee.SalaryComponent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.EmployeeID] = append(r.components[c.EmployeeID], c)
}

func (r *EmployeeRepository) GetByID(_ context.Context, id, tenantID string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emp, ok := r.employees[id]
	if !ok || emp.TenantID != tenantID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *EmployeeRepository) GetActiveByTenantID(_ context.Context, tenantID string) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.TenantID == tenantID && emp.IsActive {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

func (r *EmployeeRepository) GetSalaryComponents(_ context.Context, employeeID string) ([]employee.SalaryComponent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]employee.SalaryComponent, len(r.components[employeeID]))
	copy(out, r.components[employeeID])
	return out, nil
}
