// Package patterns detects recurring spending clusters and statistical
// outliers in expense history. Results are derived values, recomputed on
// every pass and never treated as ground truth.
package patterns

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
)

const (
	// minRecurring is the smallest cluster considered for recurrence.
	minRecurring = 3
	// minAnomaly is the smallest category sample considered for outliers.
	minAnomaly = 5
	// amountBand snaps amounts to the nearest 5-unit band before clustering.
	amountBand = 5
	// zScoreThreshold flags amounts beyond this many standard deviations.
	zScoreThreshold = 2.0
)

// Detect runs both analysis passes over a flat list of expense records and
// returns all findings sorted by confidence, descending, across categories.
func Detect(records []models.Record) []models.SpendingPattern {
	var found []models.SpendingPattern

	byCategory := models.NewRecordSet(records).FilterKind(models.Expense).GroupByCategory()

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		sorted := byCategory[cat].SortByDate().Records
		found = append(found, detectRecurring(cat, sorted)...)
		found = append(found, detectAnomalies(cat, sorted)...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	return found
}

// detectRecurring buckets a category's expenses by rounded amount and tests
// each bucket's inter-occurrence intervals for low variance.
func detectRecurring(category string, sorted []models.Record) []models.SpendingPattern {
	if len(sorted) < minRecurring {
		return nil
	}

	buckets := make(map[int64][]models.Record)
	for _, r := range sorted {
		buckets[roundToBand(r.Amount)] = append(buckets[roundToBand(r.Amount)], r)
	}

	bands := make([]int64, 0, len(buckets))
	for band := range buckets {
		bands = append(bands, band)
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i] < bands[j] })

	var found []models.SpendingPattern
	for _, band := range bands {
		group := buckets[band]
		if len(group) < minRecurring {
			continue
		}

		intervals := make([]float64, 0, len(group)-1)
		for i := 1; i < len(group); i++ {
			intervals = append(intervals, float64(calendar.DaysBetween(group[i-1].OccurredOn, group[i].OccurredOn)))
		}

		meanInterval := mean(intervals)
		if meanInterval <= 0 {
			continue
		}
		if variance(intervals, meanInterval) >= 0.3*meanInterval {
			continue
		}

		last := group[len(group)-1].OccurredOn
		next := last.AddDays(int(math.Round(meanInterval)))

		avg := decimal.Zero
		for _, r := range group {
			avg = avg.Add(r.Amount)
		}
		avg = avg.Div(decimal.NewFromInt(int64(len(group)))).Round(2)

		found = append(found, models.SpendingPattern{
			ID:             fmt.Sprintf("recurring-%s-%d", category, band),
			Kind:           models.PatternRecurring,
			Category:       category,
			Confidence:     math.Min(0.9, 0.3+0.1*float64(len(group))),
			Frequency:      inferFrequency(meanInterval),
			AverageAmount:  avg,
			LastOccurrence: last,
			NextPredicted:  &next,
			Occurrences:    len(group),
		})
	}
	return found
}

// detectAnomalies flags amounts more than two standard deviations from the
// category mean. A zero-deviation category is skipped entirely rather than
// divided by.
func detectAnomalies(category string, sorted []models.Record) []models.SpendingPattern {
	if len(sorted) < minAnomaly {
		return nil
	}

	amounts := make([]float64, len(sorted))
	for i, r := range sorted {
		amounts[i], _ = r.Amount.Float64()
	}

	m := mean(amounts)
	stdDev := math.Sqrt(variance(amounts, m))
	if stdDev == 0 {
		return nil
	}

	var found []models.SpendingPattern
	for i, r := range sorted {
		z := math.Abs(amounts[i]-m) / stdDev
		if z <= zScoreThreshold {
			continue
		}
		found = append(found, models.SpendingPattern{
			ID:             fmt.Sprintf("anomaly-%s", r.ID),
			Kind:           models.PatternAnomaly,
			Category:       category,
			Confidence:     math.Min(0.95, z/3),
			AverageAmount:  r.Amount,
			LastOccurrence: r.OccurredOn,
			Occurrences:    1,
		})
	}
	return found
}

// inferFrequency maps a mean inter-occurrence interval onto a named cadence.
func inferFrequency(meanIntervalDays float64) string {
	switch {
	case meanIntervalDays <= 2:
		return "daily"
	case meanIntervalDays <= 10:
		return "weekly"
	case meanIntervalDays <= 40:
		return "monthly"
	default:
		return "yearly"
	}
}

// roundToBand snaps an amount to the nearest 5-unit band.
func roundToBand(amount decimal.Decimal) int64 {
	f, _ := amount.Float64()
	return int64(math.Round(f/amountBand)) * amountBand
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance around the supplied mean.
func variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values))
}
