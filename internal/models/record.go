package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

// RecordKind indicates whether a record is an expense or income
type RecordKind string

const (
	Expense RecordKind = "expense"
	Income  RecordKind = "income"
)

// Record represents a single expense or income entry. A recurring definition
// is itself a Record with IsRecurring set; expansion only reads it, never
// mutates it.
type Record struct {
	ID          string             `json:"id"`
	Kind        RecordKind         `json:"kind"`
	Amount      decimal.Decimal    `json:"amount"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	OccurredOn  calendar.Date      `json:"occurred_on"`
	IsRecurring bool               `json:"is_recurring"`
	Frequency   calendar.Frequency `json:"frequency,omitempty"`
}

// DedupKey returns the exact-match triple used for duplicate detection:
// date, normalized description, and amount to cent precision.
func (r *Record) DedupKey() string {
	desc := strings.ToLower(strings.TrimSpace(r.Description))
	return fmt.Sprintf("%s|%s|%s", r.OccurredOn, desc, r.Amount.StringFixed(2))
}

// RecordSet wraps a slice with filtering/aggregation methods
type RecordSet struct {
	Records []Record
}

// NewRecordSet creates a new RecordSet from a slice
func NewRecordSet(records []Record) *RecordSet {
	return &RecordSet{Records: records}
}

// Len returns the number of records
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// FilterKind returns records of the specified kind
func (rs *RecordSet) FilterKind(kind RecordKind) *RecordSet {
	result := &RecordSet{}
	for _, r := range rs.Records {
		if r.Kind == kind {
			result.Records = append(result.Records, r)
		}
	}
	return result
}

// FilterYear returns records that fall in the given calendar year
func (rs *RecordSet) FilterYear(year int) *RecordSet {
	result := &RecordSet{}
	for _, r := range rs.Records {
		if r.OccurredOn.Year == year {
			result.Records = append(result.Records, r)
		}
	}
	return result
}

// FilterCategory returns records matching the category (case-insensitive)
func (rs *RecordSet) FilterCategory(category string) *RecordSet {
	result := &RecordSet{}
	catLower := strings.ToLower(category)
	for _, r := range rs.Records {
		if strings.ToLower(r.Category) == catLower {
			result.Records = append(result.Records, r)
		}
	}
	return result
}

// SumAmount returns the sum of all record amounts
func (rs *RecordSet) SumAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rs.Records {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// GroupByCategory groups records by canonical category
func (rs *RecordSet) GroupByCategory() map[string]*RecordSet {
	result := make(map[string]*RecordSet)
	for _, r := range rs.Records {
		cat := CanonicalCategory(r.Category)
		if result[cat] == nil {
			result[cat] = &RecordSet{}
		}
		result[cat].Records = append(result[cat].Records, r)
	}
	return result
}

// CategoryTotals returns a map of canonical category -> total amount
func (rs *RecordSet) CategoryTotals() map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)
	for _, r := range rs.Records {
		cat := CanonicalCategory(r.Category)
		result[cat] = result[cat].Add(r.Amount)
	}
	return result
}

// SortByDate returns a copy sorted by occurrence date (ascending).
// Ties keep their relative input order.
func (rs *RecordSet) SortByDate() *RecordSet {
	sorted := make([]Record, len(rs.Records))
	copy(sorted, rs.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredOn.Before(sorted[j].OccurredOn)
	})
	return &RecordSet{Records: sorted}
}

// Categories returns a sorted list of unique canonical categories
func (rs *RecordSet) Categories() []string {
	catMap := make(map[string]bool)
	for _, r := range rs.Records {
		catMap[CanonicalCategory(r.Category)] = true
	}

	cats := make([]string, 0, len(catMap))
	for cat := range catMap {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// MinDate returns the earliest record date
func (rs *RecordSet) MinDate() calendar.Date {
	if len(rs.Records) == 0 {
		return calendar.Date{}
	}
	minDate := rs.Records[0].OccurredOn
	for _, r := range rs.Records[1:] {
		if r.OccurredOn.Before(minDate) {
			minDate = r.OccurredOn
		}
	}
	return minDate
}

// MaxDate returns the latest record date
func (rs *RecordSet) MaxDate() calendar.Date {
	if len(rs.Records) == 0 {
		return calendar.Date{}
	}
	maxDate := rs.Records[0].OccurredOn
	for _, r := range rs.Records[1:] {
		if r.OccurredOn.After(maxDate) {
			maxDate = r.OccurredOn
		}
	}
	return maxDate
}
