package models

import (
	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

// PatternKind distinguishes recurring clusters from statistical outliers
type PatternKind string

const (
	PatternRecurring PatternKind = "recurring"
	PatternAnomaly   PatternKind = "anomaly"
)

// SpendingPattern is a derived analysis result, recomputed on every pass.
// IDs are deterministic so identical inputs reproduce identical output.
type SpendingPattern struct {
	ID             string          `json:"id"`
	Kind           PatternKind     `json:"kind"`
	Category       string          `json:"category"`
	Confidence     float64         `json:"confidence"` // 0.0-1.0
	Frequency      string          `json:"frequency"`  // "daily", "weekly", "monthly", "yearly"
	AverageAmount  decimal.Decimal `json:"average_amount"`
	LastOccurrence calendar.Date   `json:"last_occurrence"`
	NextPredicted  *calendar.Date  `json:"next_predicted,omitempty"`
	Occurrences    int             `json:"occurrences"`
}
