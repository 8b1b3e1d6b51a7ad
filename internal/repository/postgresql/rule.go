package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/pkg/database"
)

type ruleRepository struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) rule.Repository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetSectorRule(ctx context.Context, sectorID int, category rule.Category, refDate time.Time) (rule.ComplianceRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, sector_id, category, rule_name, config, effective_from, effective_to,
			   legal_reference, created_at, updated_at
		FROM compliance_rules
		WHERE sector_id = $1
		  AND category = $2
		  AND effective_from <= $3
		  AND (effective_to IS NULL OR effective_to >= $3)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var cr rule.ComplianceRule
	err := q.QueryRow(ctx, query, sectorID, category, refDate).Scan(
		&cr.ID, &cr.SectorID, &cr.Category, &cr.RuleName, &cr.RawConfig,
		&cr.EffectiveFrom, &cr.EffectiveTo, &cr.LegalReference,
		&cr.CreatedAt, &cr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.ComplianceRule{}, rule.ErrRuleNotFound
		}
		return rule.ComplianceRule{}, fmt.Errorf("failed to get sector rule: %w", err)
	}

	return cr, nil
}

func (r *ruleRepository) GetTenantOverride(ctx context.Context, tenantID string, category rule.Category) (rule.TenantOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, compliance_rule_id, category, uses_sector_default, config,
			   justification, approved_by, approved_at, created_at, updated_at
		FROM tenant_rule_overrides
		WHERE tenant_id = $1 AND category = $2
	`

	var o rule.TenantOverride
	err := q.QueryRow(ctx, query, tenantID, category).Scan(
		&o.ID, &o.TenantID, &o.ComplianceRuleID, &o.Category, &o.UsesSectorDefault,
		&o.RawConfig, &o.Justification, &o.ApprovedBy, &o.ApprovedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.TenantOverride{}, rule.ErrOverrideNotFound
		}
		return rule.TenantOverride{}, fmt.Errorf("failed to get tenant override: %w", err)
	}

	return o, nil
}

func (r *ruleRepository) GetSector(ctx context.Context, sectorID int) (rule.Sector, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, sector_code, sector_name, parent_sector_id, remuneration_order_ref, is_active
		FROM sectors
		WHERE id = $1
	`

	var s rule.Sector
	err := q.QueryRow(ctx, query, sectorID).Scan(
		&s.ID, &s.SectorCode, &s.SectorName, &s.ParentSectorID, &s.RemunerationOrderRef, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.Sector{}, rule.ErrSectorNotFound
		}
		return rule.Sector{}, fmt.Errorf("failed to get sector: %w", err)
	}

	return s, nil
}

func (r *ruleRepository) GetTenantSector(ctx context.Context, tenantID string) (rule.Sector, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.sector_code, s.sector_name, s.parent_sector_id, s.remuneration_order_ref, s.is_active
		FROM sectors s
		JOIN tenants t ON t.sector_id = s.id
		WHERE t.id = $1
	`

	var s rule.Sector
	err := q.QueryRow(ctx, query, tenantID).Scan(
		&s.ID, &s.SectorCode, &s.SectorName, &s.ParentSectorID, &s.RemunerationOrderRef, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.Sector{}, fmt.Errorf("tenant %s: %w", tenantID, rule.ErrSectorNotFound)
		}
		return rule.Sector{}, fmt.Errorf("failed to get tenant sector: %w", err)
	}

	return s, nil
}
