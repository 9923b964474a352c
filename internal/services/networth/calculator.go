// Package networth rolls asset and liability collections into dated
// net-worth snapshots with category breakdowns and deltas.
package networth

import (
	"strings"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
)

// Snapshot aggregates assets and liabilities into a point-in-time snapshot.
// Net worth is exactly totalAssets - totalLiabilities. When a previous
// snapshot is supplied the delta is computed against it; the percentage is
// zero when the previous net worth is exactly zero. The function has no side
// effects; persisting the snapshot (replace-on-duplicate-date) is the
// caller's concern.
func Snapshot(date calendar.Date, assets []models.Asset, liabilities []models.Liability, previous *models.NetWorthSnapshot) models.NetWorthSnapshot {
	snap := models.NetWorthSnapshot{
		Date:               date,
		TotalAssets:        decimal.Zero,
		TotalLiabilities:   decimal.Zero,
		AssetBreakdown:     make(map[string]decimal.Decimal),
		LiabilityBreakdown: make(map[string]decimal.Decimal),
	}

	for _, a := range assets {
		cat := breakdownCategory(a.Category)
		snap.AssetBreakdown[cat] = snap.AssetBreakdown[cat].Add(a.CurrentValue)
		snap.TotalAssets = snap.TotalAssets.Add(a.CurrentValue)
	}
	for _, l := range liabilities {
		cat := breakdownCategory(l.Category)
		snap.LiabilityBreakdown[cat] = snap.LiabilityBreakdown[cat].Add(l.CurrentBalance)
		snap.TotalLiabilities = snap.TotalLiabilities.Add(l.CurrentBalance)
	}

	snap.NetWorth = snap.TotalAssets.Sub(snap.TotalLiabilities)

	if previous != nil {
		snap.DeltaFromPrevious = DeltaBetween(*previous, snap)
	}

	return snap
}

// DeltaBetween computes the change from prev to cur. The percentage is zero
// when the previous net worth is exactly zero.
func DeltaBetween(prev, cur models.NetWorthSnapshot) *models.NetWorthDelta {
	delta := &models.NetWorthDelta{
		Assets:      cur.TotalAssets.Sub(prev.TotalAssets),
		Liabilities: cur.TotalLiabilities.Sub(prev.TotalLiabilities),
		NetWorth:    cur.NetWorth.Sub(prev.NetWorth),
	}
	if !prev.NetWorth.IsZero() {
		ratio := delta.NetWorth.Div(prev.NetWorth.Abs())
		delta.Percentage, _ = ratio.Mul(decimal.NewFromInt(100)).Float64()
	}
	return delta
}

// breakdownCategory normalizes a holding's category for grouping. Asset and
// liability categories are free-form (savings, property, mortgage), so they
// are kept as-is rather than mapped onto spending categories.
func breakdownCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return "uncategorized"
	}
	return c
}
