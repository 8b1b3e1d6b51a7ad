package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
)

// Resolution is the effective configuration for one category, with
// provenance so payslips and audits can cite the governing text.
type Resolution struct {
	Category       rule.Category
	Config         rule.Config
	Source         rule.Source
	LegalReference string
}

// Resolver answers "what does this rule category say for this tenant on
// this date". Pure read: it never mutates rule storage.
type Resolver struct {
	repo   rule.Repository
	logger *slog.Logger
}

func NewResolver(repo rule.Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve returns the effective configuration for (tenant, category,
// refDate): the tenant's approved override when it does not defer to
// the sector default, otherwise the sector rule whose effective
// interval contains refDate. Missing rules are fatal - the engine never
// silently falls back to a default rate.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, sectorID int, category rule.Category, refDate time.Time) (Resolution, error) {
	if !category.Valid() {
		return Resolution{}, fmt.Errorf("%w: unknown category %q", rule.ErrInvalidRuleConfiguration, category)
	}

	sectorRule, sectorErr := r.repo.GetSectorRule(ctx, sectorID, category, refDate)

	override, err := r.repo.GetTenantOverride(ctx, tenantID, category)
	switch {
	case err == nil:
		if override.Approved() && !override.UsesSectorDefault {
			cfg, err := rule.ParseConfig(category, override.RawConfig)
			if err != nil {
				return Resolution{}, fmt.Errorf("tenant %s override for %s: %w", tenantID, category, err)
			}
			legalRef := ""
			if sectorErr == nil {
				legalRef = sectorRule.LegalReference
			}
			return Resolution{
				Category:       category,
				Config:         cfg,
				Source:         rule.SourceTenantOverride,
				LegalReference: legalRef,
			}, nil
		}
		// "Uses sector default" or unapproved: any override payload is
		// ignored and the sector rule applies.
	case errors.Is(err, rule.ErrOverrideNotFound):
	default:
		return Resolution{}, fmt.Errorf("looking up override for %s/%s: %w", tenantID, category, err)
	}

	if sectorErr != nil {
		return Resolution{}, fmt.Errorf("sector %d category %s on %s: %w",
			sectorID, category, refDate.Format("2006-01-02"), sectorErr)
	}

	cfg, err := rule.ParseConfig(category, sectorRule.RawConfig)
	if err != nil {
		return Resolution{}, fmt.Errorf("sector rule %s: %w", sectorRule.ID, err)
	}
	return Resolution{
		Category:       category,
		Config:         cfg,
		Source:         rule.SourceSectorDefault,
		LegalReference: sectorRule.LegalReference,
	}, nil
}

// TenantSector looks up the sector a tenant's rules resolve against.
func (r *Resolver) TenantSector(ctx context.Context, tenantID string) (rule.Sector, error) {
	return r.repo.GetTenantSector(ctx, tenantID)
}

// Snapshot holds every resolved category for one calculation run.
// Resolved once at the start of Processing so mid-run administrative
// rule edits cannot change an in-flight cycle. Not cached across runs.
type Snapshot struct {
	TenantID      string
	SectorID      int
	ReferenceDate time.Time
	resolutions   map[rule.Category]Resolution
}

// Snapshot resolves all categories for a run. Categories the run cannot
// do without (OVERTIME, WORKING_HOURS) fail the snapshot; the others
// are resolved best-effort and looked up lazily via Get.
func (r *Resolver) Snapshot(ctx context.Context, tenantID string, sectorID int, refDate time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		TenantID:      tenantID,
		SectorID:      sectorID,
		ReferenceDate: refDate,
		resolutions:   make(map[rule.Category]Resolution, len(rule.AllCategories)),
	}

	required := map[rule.Category]bool{
		rule.CategoryOvertime:     true,
		rule.CategoryWorkingHours: true,
	}

	for _, cat := range rule.AllCategories {
		res, err := r.Resolve(ctx, tenantID, sectorID, cat, refDate)
		if err != nil {
			if required[cat] || errors.Is(err, rule.ErrInvalidRuleConfiguration) {
				return nil, err
			}
			r.logger.Debug("category not resolved for run",
				slog.String("tenant_id", tenantID),
				slog.String("category", string(cat)),
				slog.String("reason", err.Error()))
			continue
		}
		snap.resolutions[cat] = res
	}
	return snap, nil
}

// Get returns the snapshot's resolution for a category.
func (s *Snapshot) Get(category rule.Category) (Resolution, error) {
	res, ok := s.resolutions[category]
	if !ok {
		return Resolution{}, fmt.Errorf("category %s for tenant %s: %w", category, s.TenantID, rule.ErrRuleNotFound)
	}
	return res, nil
}

// Overtime is a convenience accessor for the OVERTIME payload.
func (s *Snapshot) Overtime() (*rule.OvertimeConfig, error) {
	res, err := s.Get(rule.CategoryOvertime)
	if err != nil {
		return nil, err
	}
	return res.Config.Overtime, nil
}

// WorkingHours is a convenience accessor for the WORKING_HOURS payload.
func (s *Snapshot) WorkingHours() (*rule.WorkingHoursConfig, error) {
	res, err := s.Get(rule.CategoryWorkingHours)
	if err != nil {
		return nil, err
	}
	return res.Config.WorkingHours, nil
}

// Gratuity is a convenience accessor for the GRATUITY payload.
func (s *Snapshot) Gratuity() (*rule.GratuityConfig, error) {
	res, err := s.Get(rule.CategoryGratuity)
	if err != nil {
		return nil, err
	}
	return res.Config.Gratuity, nil
}
