package rule

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CapPolicy controls what happens to overtime hours beyond the sector caps.
type CapPolicy string

const (
	// CapPolicyPayAtRate pays beyond-cap hours at the last applicable
	// multiplier. Dropping worked hours creates wage liability,
	// overpayment is recoverable, so this is the default.
	CapPolicyPayAtRate CapPolicy = "pay_at_rate"
	// CapPolicyReject fails the employee calculation when caps are exceeded.
	CapPolicyReject CapPolicy = "reject"
)

// OvertimeConfig - OVERTIME category payload.
type OvertimeConfig struct {
	WeekdayRate        decimal.Decimal `json:"weekday_overtime_rate"`
	WeekendRate        decimal.Decimal `json:"weekend_overtime_rate"`
	SundayRate         decimal.Decimal `json:"sunday_rate"`
	PublicHolidayRate  decimal.Decimal `json:"public_holiday_after_hours_rate"`
	CycloneClass3Rate  decimal.Decimal `json:"cyclone_warning_class_3_rate"`
	NightShiftRate     decimal.Decimal `json:"night_shift_rate"`
	MaxOvertimePerDay  decimal.Decimal `json:"max_overtime_hours_per_day"`
	MaxOvertimePerWeek decimal.Decimal `json:"max_overtime_hours_per_week"`
	CapPolicy          CapPolicy       `json:"cap_policy"`
}

func (c *OvertimeConfig) validate() error {
	one := decimal.NewFromInt(1)
	if c.WeekdayRate.LessThan(one) {
		return fmt.Errorf("weekday_overtime_rate must be at least 1.0, got %s", c.WeekdayRate)
	}
	if c.WeekendRate.LessThan(one) {
		return fmt.Errorf("weekend_overtime_rate must be at least 1.0, got %s", c.WeekendRate)
	}
	if c.SundayRate.LessThan(one) {
		return fmt.Errorf("sunday_rate must be at least 1.0, got %s", c.SundayRate)
	}
	if c.PublicHolidayRate.IsZero() {
		return fmt.Errorf("public_holiday_after_hours_rate is required")
	}
	if c.CycloneClass3Rate.IsZero() {
		// Not every sector defines a cyclone rate; the public holiday
		// rate is never lower, so it is the safe fallback.
		c.CycloneClass3Rate = c.PublicHolidayRate
	}
	if c.NightShiftRate.IsZero() {
		c.NightShiftRate = c.WeekdayRate
	}
	switch c.CapPolicy {
	case "":
		c.CapPolicy = CapPolicyPayAtRate
	case CapPolicyPayAtRate, CapPolicyReject:
	default:
		return fmt.Errorf("unknown cap_policy %q", c.CapPolicy)
	}
	return nil
}

// WorkingHoursConfig - WORKING_HOURS category payload.
type WorkingHoursConfig struct {
	StandardWeeklyHours   decimal.Decimal `json:"standard_weekly_hours"`
	StandardDailyHours    decimal.Decimal `json:"standard_daily_hours"`
	DailyMaxHours         decimal.Decimal `json:"daily_max_hours"`
	MandatoryBreakMinutes int             `json:"mandatory_break_minutes"`
}

func (c *WorkingHoursConfig) validate() error {
	if c.StandardWeeklyHours.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("standard_weekly_hours must be positive")
	}
	if c.StandardDailyHours.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("standard_daily_hours must be positive")
	}
	if c.StandardDailyHours.GreaterThan(c.StandardWeeklyHours) {
		return fmt.Errorf("standard_daily_hours exceeds standard_weekly_hours")
	}
	return nil
}

// MinimumWageConfig - MINIMUM_WAGE category payload.
type MinimumWageConfig struct {
	MonthlyMinimumWage decimal.Decimal `json:"monthly_minimum_wage_mur"`
	SalaryCompensation decimal.Decimal `json:"salary_compensation_mur"`
	AppliesUpTo        decimal.Decimal `json:"applies_to_basic_salary_up_to_mur"`
	Currency           string          `json:"currency"`
}

func (c *MinimumWageConfig) validate() error {
	if c.MonthlyMinimumWage.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("monthly_minimum_wage_mur must be positive")
	}
	return nil
}

// AllowancesConfig - ALLOWANCES category payload.
type AllowancesConfig struct {
	MealAllowancePerShift decimal.Decimal `json:"meal_allowance_per_shift_mur"`
	TransportPerMonth     decimal.Decimal `json:"transport_allowance_per_month_mur"`
	UniformPerYear        decimal.Decimal `json:"uniform_allowance_per_year_mur"`
	HousingApplicable     bool            `json:"housing_allowance_applicable"`
}

func (c *AllowancesConfig) validate() error { return nil }

// LeaveConfig - LEAVE category payload.
type LeaveConfig struct {
	AnnualLeaveDays     int    `json:"annual_leave_days"`
	SickLeaveDays       int    `json:"sick_leave_days"`
	CasualLeaveDays     int    `json:"casual_leave_days"`
	CalculationBasis    string `json:"leave_calculation_basis"`
	CarryForwardMaxDays int    `json:"annual_leave_carry_forward_max_days"`
}

func (c *LeaveConfig) validate() error {
	if c.AnnualLeaveDays < 0 || c.SickLeaveDays < 0 {
		return fmt.Errorf("leave day entitlements cannot be negative")
	}
	return nil
}

// GratuityConfig - GRATUITY category payload. Governs end-of-service
// gratuity for employees on the pre-2020 scheme.
type GratuityConfig struct {
	DaysPerYearOfService decimal.Decimal `json:"days_per_year_of_service"`
	MonthlyDivisor       decimal.Decimal `json:"monthly_divisor"`
	MinimumServiceMonths int             `json:"minimum_service_months"`
}

func (c *GratuityConfig) validate() error {
	if c.DaysPerYearOfService.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("days_per_year_of_service must be positive")
	}
	if c.MonthlyDivisor.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("monthly_divisor must be positive")
	}
	return nil
}

// Config is the closed union of category payloads. Exactly one variant
// is populated, matching the Category it was parsed for.
type Config struct {
	Overtime     *OvertimeConfig
	WorkingHours *WorkingHoursConfig
	MinimumWage  *MinimumWageConfig
	Allowances   *AllowancesConfig
	Leave        *LeaveConfig
	Gratuity     *GratuityConfig
}

// ParseConfig decodes and validates a category payload. A malformed or
// out-of-range payload surfaces ErrInvalidRuleConfiguration so a broken
// rule fails the cycle instead of silently producing wrong pay.
func ParseConfig(category Category, raw json.RawMessage) (Config, error) {
	if len(raw) == 0 {
		return Config{}, fmt.Errorf("%w: empty %s payload", ErrInvalidRuleConfiguration, category)
	}

	var cfg Config
	var err error
	switch category {
	case CategoryOvertime:
		v := &OvertimeConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.Overtime = v
	case CategoryWorkingHours:
		v := &WorkingHoursConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.WorkingHours = v
	case CategoryMinimumWage:
		v := &MinimumWageConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.MinimumWage = v
	case CategoryAllowances:
		v := &AllowancesConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.Allowances = v
	case CategoryLeave:
		v := &LeaveConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.Leave = v
	case CategoryGratuity:
		v := &GratuityConfig{}
		if err = json.Unmarshal(raw, v); err == nil {
			err = v.validate()
		}
		cfg.Gratuity = v
	default:
		return Config{}, fmt.Errorf("%w: unknown category %q", ErrInvalidRuleConfiguration, category)
	}

	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidRuleConfiguration, category, err)
	}
	return cfg, nil
}
