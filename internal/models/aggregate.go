package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodDelta is the change versus the immediately preceding period
type PeriodDelta struct {
	Expense        decimal.Decimal `json:"expense"`
	Income         decimal.Decimal `json:"income"`
	NetFlow        decimal.Decimal `json:"net_flow"`
	ExpensePercent float64         `json:"expense_percent"`
}

// MonthlyAggregate holds per-month totals and breakdowns. DeltaFromPrevious
// is nil for January since no prior-year context is assumed.
type MonthlyAggregate struct {
	PeriodKey         string                     `json:"period_key"` // "2024-01"
	Year              int                        `json:"year"`
	Month             time.Month                 `json:"month"`
	TotalExpense      decimal.Decimal            `json:"total_expense"`
	TotalIncome       decimal.Decimal            `json:"total_income"`
	NetFlow           decimal.Decimal            `json:"net_flow"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expense_by_category"`
	IncomeByCategory  map[string]decimal.Decimal `json:"income_by_category"`
	TopCategory       string                     `json:"top_category"`
	DeltaFromPrevious *PeriodDelta               `json:"delta_from_previous,omitempty"`
}

// TrendDirection describes the half-year spending trajectory
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// YearlySummary rolls 12 monthly aggregates into annual totals
type YearlySummary struct {
	Year                int                `json:"year"`
	TotalExpense        decimal.Decimal    `json:"total_expense"`
	TotalIncome         decimal.Decimal    `json:"total_income"`
	NetFlow             decimal.Decimal    `json:"net_flow"`
	Trend               TrendDirection     `json:"trend"`
	HighestExpenseMonth time.Month         `json:"highest_expense_month"`
	LowestExpenseMonth  time.Month         `json:"lowest_expense_month"`
	HighestIncomeMonth  time.Month         `json:"highest_income_month"`
	Months              []MonthlyAggregate `json:"months"`
}
