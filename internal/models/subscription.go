package models

import (
	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

// Subscription is a recurring billing definition. NextBilling is derived,
// never stored: it is always recomputed from LastBilled (or StartDate when
// the subscription has never billed) plus one frequency step.
type Subscription struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Amount       decimal.Decimal    `json:"amount"`
	Frequency    calendar.Frequency `json:"frequency"`
	StartDate    calendar.Date      `json:"start_date"`
	EndDate      *calendar.Date     `json:"end_date,omitempty"`
	Category     string             `json:"category"`
	IsActive     bool               `json:"is_active"`
	AutoGenerate bool               `json:"auto_generate"`
	LastBilled   *calendar.Date     `json:"last_billed,omitempty"`
}

// SeedDate returns the date expansion starts from: the day after the last
// billing, or the start date for a never-billed subscription.
func (s *Subscription) SeedDate() calendar.Date {
	if s.LastBilled != nil {
		return s.LastBilled.AddPeriod(s.Frequency, 1)
	}
	return s.StartDate
}

// NextBilling returns the next billing date, derived from
// LastBilled ?? StartDate plus one frequency step.
func (s *Subscription) NextBilling() calendar.Date {
	base := s.StartDate
	if s.LastBilled != nil {
		base = *s.LastBilled
	}
	return base.AddPeriod(s.Frequency, 1)
}

// ExpiredAt reports whether the subscription has ended as of the given date.
func (s *Subscription) ExpiredAt(asOf calendar.Date) bool {
	return s.EndDate != nil && s.EndDate.Before(asOf)
}
