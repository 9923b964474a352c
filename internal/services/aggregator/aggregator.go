// Package aggregator buckets expenses and income into monthly and annual
// views that feed pattern detection and trend projection.
package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
)

// stabilityBand is the +/-5% band inside which a half-year comparison
// counts as stable.
const stabilityBand = 0.05

// Service provides aggregation functionality
type Service struct{}

// New creates a new aggregator service
func New() *Service {
	return &Service{}
}

// AggregateByMonth returns exactly 12 aggregates for Jan-Dec of the given
// year, zero-filled where no records fall in a month. Each entry's delta is
// computed against the immediately preceding month within this call and is
// omitted for January, since no prior-year context is assumed.
func (s *Service) AggregateByMonth(records *models.RecordSet, year int) []models.MonthlyAggregate {
	inYear := records.FilterYear(year)

	aggregates := make([]models.MonthlyAggregate, 12)
	for i := range aggregates {
		month := time.Month(i + 1)
		aggregates[i] = models.MonthlyAggregate{
			PeriodKey:         fmt.Sprintf("%04d-%02d", year, i+1),
			Year:              year,
			Month:             month,
			TotalExpense:      decimal.Zero,
			TotalIncome:       decimal.Zero,
			NetFlow:           decimal.Zero,
			ExpenseByCategory: make(map[string]decimal.Decimal),
			IncomeByCategory:  make(map[string]decimal.Decimal),
		}
	}

	for _, r := range inYear.Records {
		agg := &aggregates[int(r.OccurredOn.Month)-1]
		cat := models.CanonicalCategory(r.Category)
		switch r.Kind {
		case models.Expense:
			agg.TotalExpense = agg.TotalExpense.Add(r.Amount)
			agg.ExpenseByCategory[cat] = agg.ExpenseByCategory[cat].Add(r.Amount)
		case models.Income:
			agg.TotalIncome = agg.TotalIncome.Add(r.Amount)
			agg.IncomeByCategory[cat] = agg.IncomeByCategory[cat].Add(r.Amount)
		}
	}

	for i := range aggregates {
		agg := &aggregates[i]
		agg.NetFlow = agg.TotalIncome.Sub(agg.TotalExpense)
		agg.TopCategory = topCategory(agg.ExpenseByCategory)

		if i == 0 {
			continue
		}
		prev := &aggregates[i-1]
		delta := &models.PeriodDelta{
			Expense: agg.TotalExpense.Sub(prev.TotalExpense),
			Income:  agg.TotalIncome.Sub(prev.TotalIncome),
			NetFlow: agg.NetFlow.Sub(prev.NetFlow),
		}
		if !prev.TotalExpense.IsZero() {
			ratio := delta.Expense.Div(prev.TotalExpense.Abs())
			delta.ExpensePercent, _ = ratio.Mul(decimal.NewFromInt(100)).Float64()
		}
		agg.DeltaFromPrevious = delta
	}

	return aggregates
}

// AggregateByYear rolls 12 monthly aggregates into annual totals, a
// half-year trend direction, and the extreme months.
func (s *Service) AggregateByYear(records *models.RecordSet, year int) models.YearlySummary {
	months := s.AggregateByMonth(records, year)

	summary := models.YearlySummary{
		Year:         year,
		TotalExpense: decimal.Zero,
		TotalIncome:  decimal.Zero,
		Months:       months,
	}

	highestExpense, lowestExpense, highestIncome := 0, 0, 0
	for i, m := range months {
		summary.TotalExpense = summary.TotalExpense.Add(m.TotalExpense)
		summary.TotalIncome = summary.TotalIncome.Add(m.TotalIncome)
		if m.TotalExpense.GreaterThan(months[highestExpense].TotalExpense) {
			highestExpense = i
		}
		if m.TotalExpense.LessThan(months[lowestExpense].TotalExpense) {
			lowestExpense = i
		}
		if m.TotalIncome.GreaterThan(months[highestIncome].TotalIncome) {
			highestIncome = i
		}
	}

	summary.NetFlow = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.HighestExpenseMonth = months[highestExpense].Month
	summary.LowestExpenseMonth = months[lowestExpense].Month
	summary.HighestIncomeMonth = months[highestIncome].Month
	summary.Trend = halfYearTrend(months)

	return summary
}

// halfYearTrend compares first-half and second-half monthly expense
// averages with a +/-5% stability band.
func halfYearTrend(months []models.MonthlyAggregate) models.TrendDirection {
	firstHalf := decimal.Zero
	secondHalf := decimal.Zero
	for i, m := range months {
		if i < 6 {
			firstHalf = firstHalf.Add(m.TotalExpense)
		} else {
			secondHalf = secondHalf.Add(m.TotalExpense)
		}
	}

	if firstHalf.IsZero() {
		if secondHalf.IsZero() {
			return models.TrendStable
		}
		return models.TrendIncreasing
	}

	upper := firstHalf.Mul(decimal.NewFromFloat(1 + stabilityBand))
	lower := firstHalf.Mul(decimal.NewFromFloat(1 - stabilityBand))
	switch {
	case secondHalf.GreaterThan(upper):
		return models.TrendIncreasing
	case secondHalf.LessThan(lower):
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// topCategory returns the category with the largest expense total, breaking
// ties by name so output is reproducible.
func topCategory(byCategory map[string]decimal.Decimal) string {
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	top := ""
	best := decimal.Zero
	for _, cat := range cats {
		if byCategory[cat].GreaterThan(best) {
			top = cat
			best = byCategory[cat]
		}
	}
	return top
}
