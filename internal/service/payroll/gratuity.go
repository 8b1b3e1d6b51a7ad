package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
)

// EstimateGratuity previews the end-of-service gratuity an employee
// would receive on exitDate. Employees covered by the retirement
// gratuity fund accrue their benefit there and estimate zero.
func (s *Service) EstimateGratuity(ctx context.Context, tenantID, employeeID string, exitDate time.Time) (payroll.GratuityEstimate, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, tenantID)
	if err != nil {
		return payroll.GratuityEstimate{}, err
	}
	sector, err := s.resolver.TenantSector(ctx, tenantID)
	if err != nil {
		return payroll.GratuityEstimate{}, fmt.Errorf("resolving tenant sector: %w", err)
	}
	res, err := s.resolver.Resolve(ctx, tenantID, sector.ID, rule.CategoryGratuity, exitDate)
	if err != nil {
		return payroll.GratuityEstimate{}, err
	}

	return payroll.GratuityEstimate{
		EmployeeID:          emp.ID,
		EmployeeCode:        emp.EmployeeCode,
		LegacyPensionScheme: emp.LegacyPensionScheme,
		YearsOfService:      emp.YearsOfService(exitDate),
		ExitDate:            exitDate.Format("2006-01-02"),
		Amount:              GratuityAtExit(emp, res.Config.Gratuity, exitDate),
		LegalReference:      res.LegalReference,
	}, nil
}
