package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
)

// BankTransferCSV renders the payment instruction file for an approved
// cycle, one row per payslip with a positive net. Draft and Processing
// cycles cannot be exported; their amounts are not final.
func (s *Service) BankTransferCSV(ctx context.Context, cycleID, tenantID string) ([]byte, error) {
	cycle, err := s.payrollRepo.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return nil, err
	}
	if cycle.Status != payroll.CycleStatusApproved && cycle.Status != payroll.CycleStatusPaid {
		return nil, fmt.Errorf("%w: bank export requires an approved cycle, got %s",
			payroll.ErrCycleNotPayable, cycle.Status)
	}

	payslips, err := s.payrollRepo.GetPayslipsForCycle(ctx, cycleID, tenantID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"employee_code", "employee_name", "bank_account_number", "currency", "amount", "reference"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, slip := range payslips {
		if !slip.Net.IsPositive() {
			continue
		}
		row := []string{
			slip.EmployeeCode,
			slip.EmployeeName,
			slip.BankAccountNumber,
			slip.Currency,
			slip.Net.StringFixed(2),
			slip.PayslipNumber,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
