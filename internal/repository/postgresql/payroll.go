package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

// ========== CYCLES ==========

const cycleColumns = `
	id, tenant_id, month, year, status,
	total_gross, total_deductions, total_net, total_overtime_pay,
	total_npf_employee, total_npf_employer, total_nsf_employee, total_nsf_employer,
	total_csg_employee, total_csg_employer, total_prgf, total_training_levy, total_paye,
	employee_count, outcomes,
	processed_at, processed_by, approved_at, approved_by,
	payment_date, payment_reference, notes, created_at, updated_at
`

func scanCycle(row pgx.Row) (payroll.PayrollCycle, error) {
	var c payroll.PayrollCycle
	var outcomes []byte
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Month, &c.Year, &c.Status,
		&c.Totals.Gross, &c.Totals.Deductions, &c.Totals.Net, &c.Totals.OvertimePay,
		&c.Totals.NPFEmployee, &c.Totals.NPFEmployer, &c.Totals.NSFEmployee, &c.Totals.NSFEmployer,
		&c.Totals.CSGEmployee, &c.Totals.CSGEmployer, &c.Totals.PRGF, &c.Totals.TrainingLevy, &c.Totals.PAYE,
		&c.EmployeeCount, &outcomes,
		&c.ProcessedAt, &c.ProcessedBy, &c.ApprovedAt, &c.ApprovedBy,
		&c.PaymentDate, &c.PaymentReference, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}
	if len(outcomes) > 0 {
		if err := json.Unmarshal(outcomes, &c.Outcomes); err != nil {
			return payroll.PayrollCycle{}, fmt.Errorf("failed to decode cycle outcomes: %w", err)
		}
	}
	return c, nil
}

func cycleArgs(c payroll.PayrollCycle) ([]interface{}, error) {
	outcomes, err := json.Marshal(c.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cycle outcomes: %w", err)
	}
	return []interface{}{
		c.ID, c.TenantID, c.Month, c.Year, c.Status,
		c.Totals.Gross, c.Totals.Deductions, c.Totals.Net, c.Totals.OvertimePay,
		c.Totals.NPFEmployee, c.Totals.NPFEmployer, c.Totals.NSFEmployee, c.Totals.NSFEmployer,
		c.Totals.CSGEmployee, c.Totals.CSGEmployer, c.Totals.PRGF, c.Totals.TrainingLevy, c.Totals.PAYE,
		c.EmployeeCount, outcomes,
		c.ProcessedAt, c.ProcessedBy, c.ApprovedAt, c.ApprovedBy,
		c.PaymentDate, c.PaymentReference, c.Notes, c.CreatedAt, c.UpdatedAt,
	}, nil
}

func (r *payrollRepository) CreateCycle(ctx context.Context, cycle payroll.PayrollCycle) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_cycles (` + cycleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	args, err := cycleArgs(cycle)
	if err != nil {
		return payroll.PayrollCycle{}, err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "uk_payroll_cycle_period") {
			return payroll.PayrollCycle{}, payroll.ErrCycleAlreadyExists
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to create payroll cycle: %w", err)
	}
	return cycle, nil
}

func (r *payrollRepository) GetCycleByID(ctx context.Context, id, tenantID string) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE id = $1 AND tenant_id = $2`

	c, err := scanCycle(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) GetCycleByPeriod(ctx context.Context, tenantID string, month, year int) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE tenant_id = $1 AND month = $2 AND year = $3`

	c, err := scanCycle(q.QueryRow(ctx, query, tenantID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to get payroll cycle by period: %w", err)
	}
	return c, nil
}

func (r *payrollRepository) ListCycles(ctx context.Context, tenantID string, year *int) ([]payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if year != nil {
		query += ` AND year = $2`
		args = append(args, *year)
	}
	query += ` ORDER BY year DESC, month DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	defer rows.Close()

	var out []payroll.PayrollCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *payrollRepository) UpdateCycle(ctx context.Context, cycle payroll.PayrollCycle) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles SET
			status = $3,
			total_gross = $4, total_deductions = $5, total_net = $6, total_overtime_pay = $7,
			total_npf_employee = $8, total_npf_employer = $9,
			total_nsf_employee = $10, total_nsf_employer = $11,
			total_csg_employee = $12, total_csg_employer = $13,
			total_prgf = $14, total_training_levy = $15, total_paye = $16,
			employee_count = $17, outcomes = $18,
			processed_at = $19, processed_by = $20, approved_at = $21, approved_by = $22,
			payment_date = $23, payment_reference = $24, notes = $25, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`

	outcomes, err := json.Marshal(cycle.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to encode cycle outcomes: %w", err)
	}
	tag, err := q.Exec(ctx, query,
		cycle.ID, cycle.TenantID, cycle.Status,
		cycle.Totals.Gross, cycle.Totals.Deductions, cycle.Totals.Net, cycle.Totals.OvertimePay,
		cycle.Totals.NPFEmployee, cycle.Totals.NPFEmployer,
		cycle.Totals.NSFEmployee, cycle.Totals.NSFEmployer,
		cycle.Totals.CSGEmployee, cycle.Totals.CSGEmployer,
		cycle.Totals.PRGF, cycle.Totals.TrainingLevy, cycle.Totals.PAYE,
		cycle.EmployeeCount, outcomes,
		cycle.ProcessedAt, cycle.ProcessedBy, cycle.ApprovedAt, cycle.ApprovedBy,
		cycle.PaymentDate, cycle.PaymentReference, cycle.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrCycleNotFound
	}
	return nil
}

// ReplaceCyclePayslips commits a processing run: inside one transaction
// the cycle's previous payslips are removed, the new set inserted and
// the cycle record updated. The stored cycle's status is re-read under
// the transaction; payslips of an Approved or Paid cycle are immutable.
func (r *payrollRepository) ReplaceCyclePayslips(ctx context.Context, cycle payroll.PayrollCycle, payslips []payroll.Payslip) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		var status payroll.CycleStatus
		err := q.QueryRow(txCtx,
			`SELECT status FROM payroll_cycles WHERE id = $1 FOR UPDATE`, cycle.ID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrCycleNotFound
			}
			return fmt.Errorf("failed to lock payroll cycle: %w", err)
		}
		if status == payroll.CycleStatusApproved || status == payroll.CycleStatusPaid {
			return fmt.Errorf("%w: cycle %s is %s", payroll.ErrPayslipImmutable, cycle.ID, status)
		}

		if _, err := q.Exec(txCtx, `DELETE FROM payslips WHERE payroll_cycle_id = $1`, cycle.ID); err != nil {
			return fmt.Errorf("failed to clear cycle payslips: %w", err)
		}
		for _, slip := range payslips {
			if err := insertPayslip(txCtx, q, slip); err != nil {
				return err
			}
		}
		return r.UpdateCycle(txCtx, cycle)
	})
}

// CommitCyclePayment writes the Paid cycle and every payslip's payment
// fields under one transaction.
func (r *payrollRepository) CommitCyclePayment(ctx context.Context, cycle payroll.PayrollCycle, payslips []payroll.Payslip) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		if err := r.UpdateCycle(txCtx, cycle); err != nil {
			return err
		}
		for _, slip := range payslips {
			if err := r.updatePayslipPayment(txCtx, slip); err != nil {
				return err
			}
		}
		return nil
	})
}

// ========== PAYSLIPS ==========

const payslipColumns = `
	id, payroll_cycle_id, employee_id, employee_code, employee_name, payslip_number,
	month, year,
	basic_salary, allowances, bonuses, overtime_hours, overtime_pay, gross,
	working_days, days_worked, unpaid_leave_days, unpaid_leave_deduction,
	npf_employee, npf_employer, nsf_employee, nsf_employer,
	csg_employee, csg_employer, prgf, training_levy, paye,
	other_deductions, total_deductions, net,
	payment_status, paid_at, payment_method, payment_reference,
	bank_account_number, currency, created_at, updated_at
`

// qualifiedPayslipColumns prefixes every payslip column with a table
// alias for joined queries.
func qualifiedPayslipColumns(alias string) string {
	cols := strings.Split(payslipColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func insertPayslip(ctx context.Context, q database.Querier, p payroll.Payslip) error {
	query := `
		INSERT INTO payslips (` + payslipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
				$31, $32, $33, $34, $35, $36, $37, $38)
	`
	_, err := q.Exec(ctx, query,
		p.ID, p.PayrollCycleID, p.EmployeeID, p.EmployeeCode, p.EmployeeName, p.PayslipNumber,
		p.Month, p.Year,
		p.BasicSalary, p.Allowances, p.Bonuses, p.OvertimeHours, p.OvertimePay, p.Gross,
		p.WorkingDays, p.DaysWorked, p.UnpaidLeaveDays, p.UnpaidLeaveDeduction,
		p.Statutory.NPFEmployee, p.Statutory.NPFEmployer, p.Statutory.NSFEmployee, p.Statutory.NSFEmployer,
		p.Statutory.CSGEmployee, p.Statutory.CSGEmployer, p.Statutory.PRGF, p.Statutory.TrainingLevy, p.Statutory.PAYE,
		p.OtherDeductions, p.TotalDeductions, p.Net,
		p.PaymentStatus, p.PaidAt, p.PaymentMethod, p.PaymentReference,
		p.BankAccountNumber, p.Currency, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payslip %s: %w", p.PayslipNumber, err)
	}
	return nil
}

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.PayrollCycleID, &p.EmployeeID, &p.EmployeeCode, &p.EmployeeName, &p.PayslipNumber,
		&p.Month, &p.Year,
		&p.BasicSalary, &p.Allowances, &p.Bonuses, &p.OvertimeHours, &p.OvertimePay, &p.Gross,
		&p.WorkingDays, &p.DaysWorked, &p.UnpaidLeaveDays, &p.UnpaidLeaveDeduction,
		&p.Statutory.NPFEmployee, &p.Statutory.NPFEmployer, &p.Statutory.NSFEmployee, &p.Statutory.NSFEmployer,
		&p.Statutory.CSGEmployee, &p.Statutory.CSGEmployer, &p.Statutory.PRGF, &p.Statutory.TrainingLevy, &p.Statutory.PAYE,
		&p.OtherDeductions, &p.TotalDeductions, &p.Net,
		&p.PaymentStatus, &p.PaidAt, &p.PaymentMethod, &p.PaymentReference,
		&p.BankAccountNumber, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id, tenantID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + qualifiedPayslipColumns("p") + `
		FROM payslips p
		JOIN payroll_cycles c ON c.id = p.payroll_cycle_id
		WHERE p.id = $1 AND c.tenant_id = $2
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetPayslipsForCycle(ctx context.Context, cycleID, tenantID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + qualifiedPayslipColumns("p") + `
		FROM payslips p
		JOIN payroll_cycles c ON c.id = p.payroll_cycle_id
		WHERE p.payroll_cycle_id = $1 AND c.tenant_id = $2
		ORDER BY p.employee_code
	`

	return r.queryPayslips(ctx, q, query, cycleID, tenantID)
}

func (r *payrollRepository) GetEmployeePayslips(ctx context.Context, employeeID, tenantID string, year *int) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + qualifiedPayslipColumns("p") + `
		FROM payslips p
		JOIN payroll_cycles c ON c.id = p.payroll_cycle_id
		WHERE p.employee_id = $1 AND c.tenant_id = $2
	`
	args := []interface{}{employeeID, tenantID}
	if year != nil {
		query += ` AND p.year = $3`
		args = append(args, *year)
	}
	query += ` ORDER BY p.year DESC, p.month DESC`

	return r.queryPayslips(ctx, q, query, args...)
}

func (r *payrollRepository) queryPayslips(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payroll.Payslip, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var out []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *payrollRepository) updatePayslipPayment(ctx context.Context, payslip payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips SET
			payment_status = $2, paid_at = $3, payment_method = $4, payment_reference = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		payslip.ID, payslip.PaymentStatus, payslip.PaidAt, payslip.PaymentMethod, payslip.PaymentReference,
	)
	if err != nil {
		return fmt.Errorf("failed to update payslip payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayslipNotFound
	}
	return nil
}
