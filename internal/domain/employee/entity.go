package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID              string
	TenantID        string
	EmployeeCode    string
	FullName        string
	ManagerID       *string
	DepartmentID    *string
	HireDate        time.Time
	ResignationDate *time.Time
	BasicSalary     decimal.Decimal
	Currency        string
	// LegacyPensionScheme marks employees who stayed on the national
	// pension fund after the retirement gratuity fund replaced it for
	// new hires. An employee is on exactly one of the two schemes.
	LegacyPensionScheme bool
	BankName            string
	BankAccountNumber   string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// YearsOfService counts full anniversary years between the hire date
// and asOf.
func (e Employee) YearsOfService(asOf time.Time) int {
	years := asOf.Year() - e.HireDate.Year()
	if asOf.Month() < e.HireDate.Month() ||
		(asOf.Month() == e.HireDate.Month() && asOf.Day() < e.HireDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// ComponentType enum for recurring and one-time salary components.
type ComponentType string

const (
	ComponentTypeAllowance     ComponentType = "allowance"
	ComponentTypeBonus         ComponentType = "bonus"
	ComponentTypeDeduction     ComponentType = "deduction"
	ComponentTypeLoanRepayment ComponentType = "loan_repayment"
)

// SalaryComponent - an independently configured earning or deduction
// with its own effective window and optional approval gate.
type SalaryComponent struct {
	ID               string
	EmployeeID       string
	Name             string
	Type             ComponentType
	Amount           decimal.Decimal
	Recurring        bool
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
	RequiresApproval bool
	ApprovedBy       *string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AppliesOn reports whether the component is payable for a period
// anchored at refDate: inside its effective window and, when gated,
// approved.
func (c SalaryComponent) AppliesOn(refDate time.Time) bool {
	if refDate.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveTo != nil && refDate.After(*c.EffectiveTo) {
		return false
	}
	if c.RequiresApproval && (c.ApprovedBy == nil || c.ApprovedAt == nil) {
		return false
	}
	return true
}
