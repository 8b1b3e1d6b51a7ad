package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CreateCycleRequest struct {
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Notes *string `json:"notes,omitempty"`
}

func (r CreateCycleRequest) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12")
	}
	if r.Year < 2000 || r.Year > 2100 {
		return fmt.Errorf("year %d is out of range", r.Year)
	}
	return nil
}

type ProcessCycleRequest struct {
	EmployeeIDs []string `json:"employee_ids,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

type ApproveCycleRequest struct {
	PaymentDate string  `json:"payment_date"`
	Notes       *string `json:"notes,omitempty"`
}

func (r ApproveCycleRequest) Validate() error {
	if r.PaymentDate == "" {
		return fmt.Errorf("payment_date is required")
	}
	if _, err := time.Parse("2006-01-02", r.PaymentDate); err != nil {
		return fmt.Errorf("payment_date must be YYYY-MM-DD")
	}
	return nil
}

type MarkPaidRequest struct {
	PaymentReference string `json:"payment_reference"`
	PaymentDate      string `json:"payment_date"`
}

func (r MarkPaidRequest) Validate() error {
	if r.PaymentReference == "" {
		return fmt.Errorf("payment_reference is required")
	}
	if _, err := time.Parse("2006-01-02", r.PaymentDate); err != nil {
		return fmt.Errorf("payment_date must be YYYY-MM-DD")
	}
	return nil
}

// GratuityEstimate previews the end-of-service gratuity for an
// employee exiting on a given date. Zero for employees covered by the
// retirement gratuity fund.
type GratuityEstimate struct {
	EmployeeID          string          `json:"employee_id"`
	EmployeeCode        string          `json:"employee_code"`
	LegacyPensionScheme bool            `json:"legacy_pension_scheme"`
	YearsOfService      int             `json:"years_of_service"`
	ExitDate            string          `json:"exit_date"`
	Amount              decimal.Decimal `json:"amount"`
	LegalReference      string          `json:"legal_reference"`
}

type CycleResponse struct {
	ID            string            `json:"id"`
	Month         int               `json:"month"`
	Year          int               `json:"year"`
	Status        string            `json:"status"`
	EmployeeCount int               `json:"employee_count"`
	Totals        CycleTotalsDTO    `json:"totals"`
	Outcomes      []OutcomeResponse `json:"outcomes,omitempty"`
	ProcessedAt   *string           `json:"processed_at,omitempty"`
	ApprovedAt    *string           `json:"approved_at,omitempty"`
	PaymentDate   *string           `json:"payment_date,omitempty"`
}

type CycleTotalsDTO struct {
	Gross        decimal.Decimal `json:"gross"`
	Deductions   decimal.Decimal `json:"deductions"`
	Net          decimal.Decimal `json:"net"`
	OvertimePay  decimal.Decimal `json:"overtime_pay"`
	PAYE         decimal.Decimal `json:"paye"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
}

type OutcomeResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	Blocking     bool   `json:"blocking"`
}

type PayslipResponse struct {
	ID                   string          `json:"id"`
	PayslipNumber        string          `json:"payslip_number"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeCode         string          `json:"employee_code"`
	EmployeeName         string          `json:"employee_name"`
	Month                int             `json:"month"`
	Year                 int             `json:"year"`
	BasicSalary          decimal.Decimal `json:"basic_salary"`
	Allowances           decimal.Decimal `json:"allowances"`
	Bonuses              decimal.Decimal `json:"bonuses"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	OvertimePay          decimal.Decimal `json:"overtime_pay"`
	Gross                decimal.Decimal `json:"gross"`
	NPFEmployee          decimal.Decimal `json:"npf_employee"`
	NSFEmployee          decimal.Decimal `json:"nsf_employee"`
	CSGEmployee          decimal.Decimal `json:"csg_employee"`
	PAYE                 decimal.Decimal `json:"paye"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	Net                  decimal.Decimal `json:"net"`
	PaymentStatus        string          `json:"payment_status"`
	Currency             string          `json:"currency"`
}

func ToCycleResponse(c PayrollCycle) CycleResponse {
	resp := CycleResponse{
		ID:            c.ID,
		Month:         c.Month,
		Year:          c.Year,
		Status:        string(c.Status),
		EmployeeCount: c.EmployeeCount,
		Totals: CycleTotalsDTO{
			Gross:        c.Totals.Gross,
			Deductions:   c.Totals.Deductions,
			Net:          c.Totals.Net,
			OvertimePay:  c.Totals.OvertimePay,
			PAYE:         c.Totals.PAYE,
			EmployerCost: c.Totals.EmployerCost(),
		},
	}
	for _, o := range c.Outcomes {
		resp.Outcomes = append(resp.Outcomes, OutcomeResponse{
			EmployeeID:   o.EmployeeID,
			EmployeeCode: o.EmployeeCode,
			Status:       string(o.Status),
			Reason:       o.Reason,
			Blocking:     o.Blocking,
		})
	}
	if c.ProcessedAt != nil {
		s := c.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	if c.ApprovedAt != nil {
		s := c.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if c.PaymentDate != nil {
		s := c.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &s
	}
	return resp
}

func ToPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:                   p.ID,
		PayslipNumber:        p.PayslipNumber,
		EmployeeID:           p.EmployeeID,
		EmployeeCode:         p.EmployeeCode,
		EmployeeName:         p.EmployeeName,
		Month:                p.Month,
		Year:                 p.Year,
		BasicSalary:          p.BasicSalary,
		Allowances:           p.Allowances,
		Bonuses:              p.Bonuses,
		OvertimeHours:        p.OvertimeHours,
		OvertimePay:          p.OvertimePay,
		Gross:                p.Gross,
		NPFEmployee:          p.Statutory.NPFEmployee,
		NSFEmployee:          p.Statutory.NSFEmployee,
		CSGEmployee:          p.Statutory.CSGEmployee,
		PAYE:                 p.Statutory.PAYE,
		OtherDeductions:      p.OtherDeductions,
		UnpaidLeaveDeduction: p.UnpaidLeaveDeduction,
		TotalDeductions:      p.TotalDeductions,
		Net:                  p.Net,
		PaymentStatus:        string(p.PaymentStatus),
		Currency:             p.Currency,
	}
}
