// Package fixtures holds the Mauritius sector compliance seed data.
// Loaded into a fresh database by the migration tooling and reused
// directly by the in-memory repositories in tests and local runs.
package fixtures

import (
	"encoding/json"
	"time"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
)

const (
	SectorHotelLarge = 1
	SectorBPO        = 2
	SectorConstruct  = 3
	SectorSecurity   = 4
)

var effectiveFrom = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func Sectors() []rule.Sector {
	return []rule.Sector{
		{
			ID:                   SectorHotelLarge,
			SectorCode:           "CAT-HOTEL-LARGE",
			SectorName:           "Catering and Tourism - Hotels (more than 100 rooms)",
			RemunerationOrderRef: "Catering and Tourism Industries Remuneration Order",
			IsActive:             true,
		},
		{
			ID:                   SectorBPO,
			SectorCode:           "BPO",
			SectorName:           "Business Process Outsourcing and ICT",
			RemunerationOrderRef: "ICT and BPO Sector Remuneration Order",
			IsActive:             true,
		},
		{
			ID:                   SectorConstruct,
			SectorCode:           "CONST",
			SectorName:           "Construction Industry",
			RemunerationOrderRef: "Construction Industry Remuneration Order",
			IsActive:             true,
		},
		{
			ID:                   SectorSecurity,
			SectorCode:           "SECURITY",
			SectorName:           "Private Security Services",
			RemunerationOrderRef: "Private Security Service Providers Remuneration Order",
			IsActive:             true,
		},
	}
}

func Rules() []rule.ComplianceRule {
	var out []rule.ComplianceRule

	out = append(out, sectorRules(SectorHotelLarge, "CAT-HOTEL-LARGE", "GN No. 185 of 2023", map[rule.Category]string{
		rule.CategoryOvertime: `{
			"weekday_overtime_rate": 1.5,
			"weekend_overtime_rate": 2.0,
			"sunday_rate": 2.0,
			"public_holiday_after_hours_rate": 3.0,
			"cyclone_warning_class_3_rate": 3.0,
			"night_shift_rate": 1.25,
			"max_overtime_hours_per_day": 4,
			"max_overtime_hours_per_week": 20
		}`,
		rule.CategoryWorkingHours: `{
			"standard_weekly_hours": 45,
			"standard_daily_hours": 9,
			"daily_max_hours": 12,
			"mandatory_break_minutes": 60
		}`,
		rule.CategoryMinimumWage: `{
			"monthly_minimum_wage_mur": 17110,
			"salary_compensation_mur": 610,
			"applies_to_basic_salary_up_to_mur": 50000,
			"currency": "MUR"
		}`,
		rule.CategoryAllowances: `{
			"meal_allowance_per_shift_mur": 85,
			"transport_allowance_per_month_mur": 1200,
			"uniform_allowance_per_year_mur": 3500,
			"housing_allowance_applicable": false
		}`,
		rule.CategoryLeave: `{
			"annual_leave_days": 20,
			"sick_leave_days": 15,
			"casual_leave_days": 2,
			"leave_calculation_basis": "working_days",
			"annual_leave_carry_forward_max_days": 10
		}`,
		rule.CategoryGratuity: `{
			"days_per_year_of_service": 15,
			"monthly_divisor": 26,
			"minimum_service_months": 12
		}`,
	})...)

	out = append(out, sectorRules(SectorBPO, "BPO", "GN No. 142 of 2022", map[rule.Category]string{
		rule.CategoryOvertime: `{
			"weekday_overtime_rate": 1.5,
			"weekend_overtime_rate": 2.0,
			"sunday_rate": 2.0,
			"public_holiday_after_hours_rate": 3.0,
			"night_shift_rate": 1.5,
			"max_overtime_hours_per_day": 4,
			"max_overtime_hours_per_week": 15
		}`,
		rule.CategoryWorkingHours: `{
			"standard_weekly_hours": 40,
			"standard_daily_hours": 8,
			"daily_max_hours": 12,
			"mandatory_break_minutes": 45
		}`,
		rule.CategoryMinimumWage: `{
			"monthly_minimum_wage_mur": 17110,
			"salary_compensation_mur": 610,
			"applies_to_basic_salary_up_to_mur": 50000,
			"currency": "MUR"
		}`,
		rule.CategoryLeave: `{
			"annual_leave_days": 22,
			"sick_leave_days": 15,
			"casual_leave_days": 0,
			"leave_calculation_basis": "working_days",
			"annual_leave_carry_forward_max_days": 5
		}`,
		rule.CategoryGratuity: `{
			"days_per_year_of_service": 15,
			"monthly_divisor": 26,
			"minimum_service_months": 12
		}`,
	})...)

	out = append(out, sectorRules(SectorConstruct, "CONST", "GN No. 97 of 2023", map[rule.Category]string{
		rule.CategoryOvertime: `{
			"weekday_overtime_rate": 1.5,
			"weekend_overtime_rate": 2.0,
			"sunday_rate": 2.0,
			"public_holiday_after_hours_rate": 3.0,
			"cyclone_warning_class_3_rate": 3.0,
			"max_overtime_hours_per_day": 4,
			"max_overtime_hours_per_week": 20
		}`,
		rule.CategoryWorkingHours: `{
			"standard_weekly_hours": 45,
			"standard_daily_hours": 8,
			"daily_max_hours": 12,
			"mandatory_break_minutes": 60
		}`,
		rule.CategoryMinimumWage: `{
			"monthly_minimum_wage_mur": 17110,
			"salary_compensation_mur": 610,
			"applies_to_basic_salary_up_to_mur": 50000,
			"currency": "MUR"
		}`,
		rule.CategoryGratuity: `{
			"days_per_year_of_service": 15,
			"monthly_divisor": 26,
			"minimum_service_months": 12
		}`,
	})...)

	out = append(out, sectorRules(SectorSecurity, "SECURITY", "GN No. 203 of 2022", map[rule.Category]string{
		rule.CategoryOvertime: `{
			"weekday_overtime_rate": 1.5,
			"weekend_overtime_rate": 2.0,
			"sunday_rate": 2.0,
			"public_holiday_after_hours_rate": 3.0,
			"cyclone_warning_class_3_rate": 3.0,
			"night_shift_rate": 1.25,
			"max_overtime_hours_per_day": 6,
			"max_overtime_hours_per_week": 24
		}`,
		rule.CategoryWorkingHours: `{
			"standard_weekly_hours": 60,
			"standard_daily_hours": 12,
			"daily_max_hours": 12,
			"mandatory_break_minutes": 90
		}`,
		rule.CategoryMinimumWage: `{
			"monthly_minimum_wage_mur": 17110,
			"salary_compensation_mur": 610,
			"applies_to_basic_salary_up_to_mur": 50000,
			"currency": "MUR"
		}`,
		rule.CategoryGratuity: `{
			"days_per_year_of_service": 15,
			"monthly_divisor": 26,
			"minimum_service_months": 12
		}`,
	})...)

	return out
}

func sectorRules(sectorID int, sectorCode, legalRef string, payloads map[rule.Category]string) []rule.ComplianceRule {
	out := make([]rule.ComplianceRule, 0, len(payloads))
	for _, cat := range rule.AllCategories {
		payload, ok := payloads[cat]
		if !ok {
			continue
		}
		out = append(out, rule.ComplianceRule{
			ID:             sectorCode + "-" + string(cat) + "-2024",
			SectorID:       sectorID,
			Category:       cat,
			RuleName:       sectorCode + " " + string(cat) + " defaults",
			RawConfig:      json.RawMessage(payload),
			EffectiveFrom:  effectiveFrom,
			LegalReference: legalRef,
			CreatedAt:      effectiveFrom,
			UpdatedAt:      effectiveFrom,
		})
	}
	return out
}
