// Package forecast extrapolates future spending from recent monthly
// aggregates using a trailing trend factor and a fixed seasonal table.
// Everything here is deterministic statistics, not a trained model.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
)

const (
	// window is how many trailing aggregates the projection reads.
	window = 6

	minConfidence = 0.6
	maxConfidence = 0.95
)

// Projector computes trend projections. The seasonal table multiplies
// forward-month estimates when projecting beyond one step.
type Projector struct {
	Seasonal map[time.Month]float64
}

// NewProjector returns a projector with the standard seasonal adjustments:
// December runs hot, January cools off, and the summer months bump up.
func NewProjector() *Projector {
	return &Projector{
		Seasonal: map[time.Month]float64{
			time.January:  0.85,
			time.June:     1.10,
			time.July:     1.10,
			time.December: 1.15,
		},
	}
}

func (p *Projector) seasonalFor(m time.Month) float64 {
	if f, ok := p.Seasonal[m]; ok {
		return f
	}
	return 1.0
}

// Project extrapolates the next period and year end from recent aggregates,
// ordered oldest first. Short history degrades gracefully: fewer than six
// aggregates narrow the window, and fewer than two pin the trend factor at
// one. An empty history yields a zero estimate, never an error.
func (p *Projector) Project(recent []models.MonthlyAggregate) models.Forecast {
	forecast := models.Forecast{
		TrendFactor:        1.0,
		NextPeriodEstimate: decimal.Zero,
		YearEndEstimate:    decimal.Zero,
		PerCategory:        map[string]decimal.Decimal{},
	}
	if len(recent) == 0 {
		forecast.Confidence = minConfidence
		return forecast
	}

	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	series := make([]float64, len(recent))
	for i, agg := range recent {
		series[i], _ = agg.TotalExpense.Float64()
	}

	forecast.TrendFactor = trendFactor(series)
	next := avg(series) * forecast.TrendFactor
	forecast.NextPeriodEstimate = decimal.NewFromFloat(next).Round(2)
	forecast.Confidence = clamp(1-math.Abs(forecast.TrendFactor-1), minConfidence, maxConfidence)

	forecast.YearEndEstimate = p.yearEnd(recent, next)
	forecast.PerCategory = perCategory(recent, forecast.TrendFactor)

	return forecast
}

// trendFactor is avg(last three) / avg(first three) of the window; shorter
// histories split in half, and a zero older average pins the factor at one.
func trendFactor(series []float64) float64 {
	if len(series) < 2 {
		return 1.0
	}
	half := len(series) / 2
	older := avg(series[:half])
	newer := avg(series[len(series)-half:])
	if older == 0 {
		return 1.0
	}
	return newer / older
}

// yearEnd sums the year's actuals so far with seasonally adjusted estimates
// for each remaining month.
func (p *Projector) yearEnd(recent []models.MonthlyAggregate, next float64) decimal.Decimal {
	last := recent[len(recent)-1]

	total := decimal.Zero
	for _, agg := range recent {
		if agg.Year == last.Year {
			total = total.Add(agg.TotalExpense)
		}
	}
	for m := last.Month + 1; m <= time.December; m++ {
		projected := next * p.seasonalFor(m)
		total = total.Add(decimal.NewFromFloat(projected).Round(2))
	}
	return total
}

// perCategory applies the overall trend factor to each category's windowed
// average independently; categories are never cross-correlated.
func perCategory(recent []models.MonthlyAggregate, factor float64) map[string]decimal.Decimal {
	sums := make(map[string]float64)
	for _, agg := range recent {
		for cat, amount := range agg.ExpenseByCategory {
			f, _ := amount.Float64()
			sums[cat] += f
		}
	}

	cats := make([]string, 0, len(sums))
	for cat := range sums {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	result := make(map[string]decimal.Decimal, len(cats))
	for _, cat := range cats {
		catAvg := sums[cat] / float64(len(recent))
		result[cat] = decimal.NewFromFloat(catAvg * factor).Round(2)
	}
	return result
}

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
