package rule

import (
	"encoding/json"
	"time"
)

// Category enum - the closed set of compliance rule categories
type Category string

const (
	CategoryOvertime     Category = "OVERTIME"
	CategoryMinimumWage  Category = "MINIMUM_WAGE"
	CategoryWorkingHours Category = "WORKING_HOURS"
	CategoryAllowances   Category = "ALLOWANCES"
	CategoryLeave        Category = "LEAVE"
	CategoryGratuity     Category = "GRATUITY"
)

// AllCategories lists every category a payroll run may resolve.
var AllCategories = []Category{
	CategoryOvertime,
	CategoryMinimumWage,
	CategoryWorkingHours,
	CategoryAllowances,
	CategoryLeave,
	CategoryGratuity,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryOvertime, CategoryMinimumWage, CategoryWorkingHours,
		CategoryAllowances, CategoryLeave, CategoryGratuity:
		return true
	}
	return false
}

// Sector - Mauritius industry sector carrying its own remuneration order
type Sector struct {
	ID                   int
	SectorCode           string
	SectorName           string
	ParentSectorID       *int
	RemunerationOrderRef string
	IsActive             bool
}

// ComplianceRule - versioned sector default for one category.
// RawConfig holds the category-shaped JSON payload; it is parsed and
// validated at the resolver boundary, never consumed as an untyped blob.
type ComplianceRule struct {
	ID             string
	SectorID       int
	Category       Category
	RuleName       string
	RawConfig      json.RawMessage
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
	LegalReference string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ActiveOn reports whether the rule's effective interval contains d.
func (r ComplianceRule) ActiveOn(d time.Time) bool {
	if d.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && d.After(*r.EffectiveTo) {
		return false
	}
	return true
}

// TenantOverride - a tenant's approved customization of a sector default.
// When UsesSectorDefault is true any RawConfig present is ignored.
type TenantOverride struct {
	ID                string
	TenantID          string
	ComplianceRuleID  string
	Category          Category
	UsesSectorDefault bool
	RawConfig         json.RawMessage
	Justification     string
	ApprovedBy        *string
	ApprovedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Approved reports whether the override has gone through its approval gate.
func (o TenantOverride) Approved() bool {
	return o.ApprovedBy != nil && o.ApprovedAt != nil
}

// Source identifies where a resolved configuration came from.
type Source string

const (
	SourceSectorDefault  Source = "sector_default"
	SourceTenantOverride Source = "tenant_override"
)
