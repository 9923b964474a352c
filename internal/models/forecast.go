package models

import (
	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

// Forecast is a trend- and seasonally-adjusted spending extrapolation
type Forecast struct {
	NextPeriodEstimate decimal.Decimal            `json:"next_period_estimate"`
	Confidence         float64                    `json:"confidence"`
	TrendFactor        float64                    `json:"trend_factor"`
	YearEndEstimate    decimal.Decimal            `json:"year_end_estimate"`
	PerCategory        map[string]decimal.Decimal `json:"per_category"`
}

// SavingsGoal is a target amount with an optional deadline
type SavingsGoal struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Saved    decimal.Decimal `json:"saved"`
	Deadline *calendar.Date  `json:"deadline,omitempty"`
}

// GoalProgress reports how a savings goal is tracking
type GoalProgress struct {
	GoalID           string          `json:"goal_id"`
	Percent          float64         `json:"percent"`
	Remaining        decimal.Decimal `json:"remaining"`
	ExpectedSpending decimal.Decimal `json:"expected_spending"`
	OnTrack          bool            `json:"on_track"`
}
