package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/services/calendar"
)

func TestSubscriptionNextBilling(t *testing.T) {
	sub := Subscription{
		ID:        "s1",
		Name:      "cloud storage",
		Amount:    decimal.NewFromFloat(9.99),
		Frequency: calendar.Monthly,
		StartDate: calendar.New(2024, time.January, 15),
		IsActive:  true,
	}

	t.Run("never billed derives from start date", func(t *testing.T) {
		if got := sub.NextBilling(); got != calendar.New(2024, time.February, 15) {
			t.Errorf("NextBilling = %s, want 2024-02-15", got)
		}
	})

	t.Run("derives from last billed", func(t *testing.T) {
		billed := sub
		last := calendar.New(2024, time.May, 15)
		billed.LastBilled = &last
		if got := billed.NextBilling(); got != calendar.New(2024, time.June, 15) {
			t.Errorf("NextBilling = %s, want 2024-06-15", got)
		}
	})

	t.Run("month-end clamps carry through", func(t *testing.T) {
		eom := sub
		eom.StartDate = calendar.New(2024, time.January, 31)
		if got := eom.NextBilling(); got != calendar.New(2024, time.February, 29) {
			t.Errorf("NextBilling = %s, want 2024-02-29", got)
		}
	})
}

func TestSubscriptionSeedDate(t *testing.T) {
	sub := Subscription{
		Frequency: calendar.Monthly,
		StartDate: calendar.New(2024, time.January, 15),
	}

	// A never-billed subscription backfills from its start date, while a
	// billed one resumes one step past the last billing.
	if got := sub.SeedDate(); got != sub.StartDate {
		t.Errorf("SeedDate = %s, want start date", got)
	}

	last := calendar.New(2024, time.March, 15)
	sub.LastBilled = &last
	if got := sub.SeedDate(); got != calendar.New(2024, time.April, 15) {
		t.Errorf("SeedDate = %s, want 2024-04-15", got)
	}
}

func TestSubscriptionExpiredAt(t *testing.T) {
	end := calendar.New(2024, time.June, 30)
	sub := Subscription{EndDate: &end}

	if sub.ExpiredAt(calendar.New(2024, time.June, 30)) {
		t.Error("end date itself is not expired")
	}
	if !sub.ExpiredAt(calendar.New(2024, time.July, 1)) {
		t.Error("day after end date is expired")
	}

	open := Subscription{}
	if open.ExpiredAt(calendar.New(2099, time.December, 31)) {
		t.Error("a subscription without an end date never expires")
	}
}
