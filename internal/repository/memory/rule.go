// Package memory provides map-backed repository implementations. They
// power the calculation-service tests and local development without a
// database; production wiring uses the postgresql package.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
)

type RuleRepository struct {
	mu            sync.RWMutex
	sectors       map[int]rule.Sector
	tenantSectors map[string]int
	rules         []rule.ComplianceRule
	overrides     map[string]rule.TenantOverride
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{
		sectors:       make(map[int]rule.Sector),
		tenantSectors: make(map[string]int),
		overrides:     make(map[string]rule.TenantOverride),
	}
}

func overrideKey(tenantID string, category rule.Category) string {
	return tenantID + "/" + string(category)
}

func (r *RuleRepository) SeedSector(s rule.Sector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sectors[s.ID] = s
}

func (r *RuleRepository) MapTenant(tenantID string, sectorID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenantSectors[tenantID] = sectorID
}

func (r *RuleRepository) SeedRule(cr rule.ComplianceRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, cr)
}

func (r *RuleRepository) SeedOverride(o rule.TenantOverride) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[overrideKey(o.TenantID, o.Category)] = o
}

// GetSectorRule picks the active rule version with the most recent
// effective-from date, mirroring the versioned lookup the SQL
// repository performs with an ordered query.
func (r *RuleRepository) GetSectorRule(_ context.Context, sectorID int, category rule.Category, refDate time.Time) (rule.ComplianceRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *rule.ComplianceRule
	for i := range r.rules {
		cr := &r.rules[i]
		if cr.SectorID != sectorID || cr.Category != category || !cr.ActiveOn(refDate) {
			continue
		}
		if best == nil || cr.EffectiveFrom.After(best.EffectiveFrom) {
			best = cr
		}
	}
	if best == nil {
		return rule.ComplianceRule{}, fmt.Errorf("sector %d category %s: %w", sectorID, category, rule.ErrRuleNotFound)
	}
	return *best, nil
}

func (r *RuleRepository) GetTenantOverride(_ context.Context, tenantID string, category rule.Category) (rule.TenantOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.overrides[overrideKey(tenantID, category)]
	if !ok {
		return rule.TenantOverride{}, rule.ErrOverrideNotFound
	}
	return o, nil
}

func (r *RuleRepository) GetSector(_ context.Context, sectorID int) (rule.Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sectors[sectorID]
	if !ok {
		return rule.Sector{}, rule.ErrSectorNotFound
	}
	return s, nil
}

func (r *RuleRepository) GetTenantSector(_ context.Context, tenantID string) (rule.Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sectorID, ok := r.tenantSectors[tenantID]
	if !ok {
		return rule.Sector{}, fmt.Errorf("tenant %s: %w", tenantID, rule.ErrSectorNotFound)
	}
	s, ok := r.sectors[sectorID]
	if !ok {
		return rule.Sector{}, rule.ErrSectorNotFound
	}
	return s, nil
}
