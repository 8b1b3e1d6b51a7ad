package employee

import "context"

type Repository interface {
	GetByID(ctx context.Context, id, tenantID string) (Employee, error)
	GetActiveByTenantID(ctx context.Context, tenantID string) ([]Employee, error)

	// GetSalaryComponents returns all components assigned to an
	// employee; callers filter with SalaryComponent.AppliesOn.
	GetSalaryComponents(ctx context.Context, employeeID string) ([]SalaryComponent, error)
}
