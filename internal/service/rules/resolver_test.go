package rules

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-hr/payroll-backend-go/internal/domain/rule"
	"github.com/lagoon-hr/payroll-backend-go/internal/fixtures"
	"github.com/lagoon-hr/payroll-backend-go/internal/repository/memory"
)

const testTenant = "tenant-hotel-1"

func newTestResolver(t *testing.T) (*Resolver, *memory.RuleRepository) {
	t.Helper()
	repo := memory.NewRuleRepository()
	for _, s := range fixtures.Sectors() {
		repo.SeedSector(s)
	}
	for _, r := range fixtures.Rules() {
		repo.SeedRule(r)
	}
	repo.MapTenant(testTenant, fixtures.SectorHotelLarge)
	return NewResolver(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func refDate() time.Time {
	return time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
}

func TestResolveSectorDefault(t *testing.T) {
	resolver, _ := newTestResolver(t)

	res, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime, refDate())
	require.NoError(t, err)

	assert.Equal(t, rule.SourceSectorDefault, res.Source)
	assert.Equal(t, "GN No. 185 of 2023", res.LegalReference)
	require.NotNil(t, res.Config.Overtime)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, res.Config.Overtime.CycloneClass3Rate.Equal(decimal.NewFromFloat(3.0)))
}

func TestResolveApprovedOverrideWins(t *testing.T) {
	resolver, repo := newTestResolver(t)
	approvedBy := "hr-manager-1"
	approvedAt := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	repo.SeedOverride(rule.TenantOverride{
		ID:       "ov-1",
		TenantID: testTenant,
		Category: rule.CategoryOvertime,
		RawConfig: json.RawMessage(`{
			"weekday_overtime_rate": 2.0,
			"weekend_overtime_rate": 2.5,
			"sunday_rate": 2.5,
			"public_holiday_after_hours_rate": 3.0
		}`),
		Justification: "collective agreement above sector minimum",
		ApprovedBy:    &approvedBy,
		ApprovedAt:    &approvedAt,
	})

	res, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime, refDate())
	require.NoError(t, err)

	assert.Equal(t, rule.SourceTenantOverride, res.Source)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(2.0)))
	// Legal reference still cites the sector's governing text.
	assert.Equal(t, "GN No. 185 of 2023", res.LegalReference)
}

func TestResolveUnapprovedOverrideIgnored(t *testing.T) {
	resolver, repo := newTestResolver(t)

	repo.SeedOverride(rule.TenantOverride{
		ID:        "ov-2",
		TenantID:  testTenant,
		Category:  rule.CategoryOvertime,
		RawConfig: json.RawMessage(`{"weekday_overtime_rate": 9.9, "weekend_overtime_rate": 9.9, "sunday_rate": 9.9, "public_holiday_after_hours_rate": 9.9}`),
	})

	res, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime, refDate())
	require.NoError(t, err)

	assert.Equal(t, rule.SourceSectorDefault, res.Source)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(1.5)))
}

func TestResolveOverrideDeferringToSectorDefault(t *testing.T) {
	resolver, repo := newTestResolver(t)
	approvedBy := "hr-manager-1"
	approvedAt := refDate()

	// Approved override that explicitly defers; its stale payload must
	// never be read.
	repo.SeedOverride(rule.TenantOverride{
		ID:                "ov-3",
		TenantID:          testTenant,
		Category:          rule.CategoryOvertime,
		UsesSectorDefault: true,
		RawConfig:         json.RawMessage(`{"weekday_overtime_rate": 7.7}`),
		ApprovedBy:        &approvedBy,
		ApprovedAt:        &approvedAt,
	})

	res, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime, refDate())
	require.NoError(t, err)
	assert.Equal(t, rule.SourceSectorDefault, res.Source)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(1.5)))
}

func TestResolveVersionedByEffectiveDate(t *testing.T) {
	resolver, repo := newTestResolver(t)

	// A 2026 revision raises the weekday rate; June 2025 must still
	// resolve the 2024 version.
	repo.SeedRule(rule.ComplianceRule{
		ID:            "CAT-HOTEL-LARGE-OVERTIME-2026",
		SectorID:      fixtures.SectorHotelLarge,
		Category:      rule.CategoryOvertime,
		RawConfig:     json.RawMessage(`{"weekday_overtime_rate": 1.75, "weekend_overtime_rate": 2.0, "sunday_rate": 2.0, "public_holiday_after_hours_rate": 3.0}`),
		EffectiveFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	res, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime, refDate())
	require.NoError(t, err)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(1.5)))

	res, err = resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryOvertime,
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, res.Config.Overtime.WeekdayRate.Equal(decimal.NewFromFloat(1.75)))
}

func TestResolveMissingRuleIsFatal(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), testTenant, 999, rule.CategoryOvertime, refDate())
	require.ErrorIs(t, err, rule.ErrRuleNotFound)
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver, _ := newTestResolver(t)

	first, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryWorkingHours, refDate())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := resolver.Resolve(context.Background(), testTenant, fixtures.SectorHotelLarge, rule.CategoryWorkingHours, refDate())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSnapshotResolvesAllSeededCategories(t *testing.T) {
	resolver, _ := newTestResolver(t)

	snap, err := resolver.Snapshot(context.Background(), testTenant, fixtures.SectorHotelLarge, refDate())
	require.NoError(t, err)

	for _, cat := range rule.AllCategories {
		res, err := snap.Get(cat)
		require.NoError(t, err, "category %s", cat)
		assert.Equal(t, cat, res.Category)
	}

	wh, err := snap.WorkingHours()
	require.NoError(t, err)
	assert.True(t, wh.StandardWeeklyHours.Equal(decimal.NewFromInt(45)))
}

func TestSnapshotFailsOnBrokenRequiredRule(t *testing.T) {
	repo := memory.NewRuleRepository()
	repo.SeedSector(rule.Sector{ID: 7, SectorCode: "X", IsActive: true})
	repo.MapTenant(testTenant, 7)
	repo.SeedRule(rule.ComplianceRule{
		ID:            "X-OVERTIME-2024",
		SectorID:      7,
		Category:      rule.CategoryOvertime,
		RawConfig:     json.RawMessage(`{"weekday_overtime_rate": 0.5}`),
		EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	resolver := NewResolver(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := resolver.Snapshot(context.Background(), testTenant, 7, refDate())
	require.ErrorIs(t, err, rule.ErrInvalidRuleConfiguration)
}
