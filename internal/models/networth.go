package models

import (
	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

// Asset is a point-in-time valued holding
type Asset struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

// Liability is an owed balance. InterestRate (annual percent) and
// MinimumPayment are optional; payoff projection requires both.
type Liability struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	InterestRate   *float64         `json:"interest_rate,omitempty"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment,omitempty"`
}

// NetWorthDelta is the change versus a previous snapshot
type NetWorthDelta struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"net_worth"`
	Percentage  float64         `json:"percentage"`
}

// NetWorthSnapshot is a dated aggregate of assets and liabilities.
// Snapshots are keyed by date; saving over an existing date replaces it.
type NetWorthSnapshot struct {
	Date               calendar.Date              `json:"date"`
	TotalAssets        decimal.Decimal            `json:"total_assets"`
	TotalLiabilities   decimal.Decimal            `json:"total_liabilities"`
	NetWorth           decimal.Decimal            `json:"net_worth"`
	AssetBreakdown     map[string]decimal.Decimal `json:"asset_breakdown"`
	LiabilityBreakdown map[string]decimal.Decimal `json:"liability_breakdown"`
	DeltaFromPrevious  *NetWorthDelta             `json:"delta_from_previous,omitempty"`
}
