package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, tenant_id, employee_code, full_name, manager_id, department_id,
	hire_date, resignation_date, basic_salary, currency, legacy_pension_scheme,
	bank_name, bank_account_number, is_active, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.TenantID, &e.EmployeeCode, &e.FullName, &e.ManagerID, &e.DepartmentID,
		&e.HireDate, &e.ResignationDate, &e.BasicSalary, &e.Currency, &e.LegacyPensionScheme,
		&e.BankName, &e.BankAccountNumber, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id, tenantID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND tenant_id = $2`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (r *employeeRepository) GetActiveByTenantID(ctx context.Context, tenantID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY employee_code`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *employeeRepository) GetSalaryComponents(ctx context.Context, employeeID string) ([]employee.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, name, type, amount, recurring,
			   effective_from, effective_to, requires_approval, approved_by, approved_at,
			   created_at, updated_at
		FROM salary_components
		WHERE employee_id = $1
		ORDER BY effective_from, name
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var out []employee.SalaryComponent
	for rows.Next() {
		var c employee.SalaryComponent
		err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.Name, &c.Type, &c.Amount, &c.Recurring,
			&c.EffectiveFrom, &c.EffectiveTo, &c.RequiresApproval, &c.ApprovedBy, &c.ApprovedAt,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
