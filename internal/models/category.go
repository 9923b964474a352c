package models

import "strings"

// Canonical spending categories. Free-text categories from imports are
// normalized onto these before any analysis so that pattern buckets and
// aggregate breakdowns line up across data sources.
const (
	CategoryHousing       = "housing"
	CategoryUtilities     = "utilities"
	CategoryGroceries     = "groceries"
	CategoryDining        = "dining"
	CategoryTransport     = "transport"
	CategoryHealth        = "health"
	CategoryEntertainment = "entertainment"
	CategorySubscriptions = "subscriptions"
	CategoryDebt          = "debt"
	CategorySalary        = "salary"
	CategoryOther         = "other"
)

// categoryKeywords maps lowercase substrings to canonical categories.
// First match wins, checked in the order listed per category below.
var categoryKeywords = map[string][]string{
	CategoryHousing:       {"rent", "mortgage", "housing", "hoa", "property"},
	CategoryUtilities:     {"utility", "utilities", "electric", "water", "gas bill", "internet", "phone"},
	CategoryGroceries:     {"grocery", "groceries", "supermarket", "market"},
	CategoryDining:        {"dining", "restaurant", "cafe", "coffee", "takeout", "food"},
	CategoryTransport:     {"transport", "fuel", "gasoline", "parking", "transit", "car", "auto"},
	CategoryHealth:        {"health", "medical", "pharmacy", "doctor", "dental", "insurance"},
	CategoryEntertainment: {"entertainment", "movie", "music", "game", "hobby"},
	CategorySubscriptions: {"subscription", "streaming", "membership", "saas"},
	CategoryDebt:          {"loan", "debt", "credit card", "interest"},
	CategorySalary:        {"salary", "payroll", "paycheck", "wages", "income"},
}

// checkOrder keeps normalization deterministic across map iteration.
var checkOrder = []string{
	CategoryHousing, CategoryUtilities, CategoryGroceries, CategoryDining,
	CategoryTransport, CategoryHealth, CategoryEntertainment,
	CategorySubscriptions, CategoryDebt, CategorySalary,
}

// CanonicalCategory maps a raw category string onto a canonical category.
// An exact canonical name passes through; otherwise keywords decide, and
// anything unrecognized becomes "other".
func CanonicalCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" {
		return CategoryOther
	}

	for _, canonical := range checkOrder {
		if c == canonical {
			return canonical
		}
	}
	if c == CategoryOther {
		return CategoryOther
	}

	for _, canonical := range checkOrder {
		for _, kw := range categoryKeywords[canonical] {
			if strings.Contains(c, kw) {
				return canonical
			}
		}
	}

	return CategoryOther
}
