package rule

import (
	"context"
	"time"
)

// Repository - pure storage for sector defaults and tenant overrides.
// Rules are immutable once effective, so reads are safe for concurrent use.
type Repository interface {
	// GetSectorRule returns the sector default of a category whose
	// effective interval contains refDate, or ErrRuleNotFound.
	GetSectorRule(ctx context.Context, sectorID int, category Category, refDate time.Time) (ComplianceRule, error)

	// GetTenantOverride returns the tenant's override for a category,
	// or ErrOverrideNotFound when the tenant has none.
	GetTenantOverride(ctx context.Context, tenantID string, category Category) (TenantOverride, error)

	// GetSector resolves a sector by id.
	GetSector(ctx context.Context, sectorID int) (Sector, error)

	// GetTenantSector returns the sector the tenant operates in, or
	// ErrSectorNotFound when the tenant is not mapped to one.
	GetTenantSector(ctx context.Context, tenantID string) (Sector, error)
}
