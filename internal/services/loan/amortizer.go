// Package loan simulates month-by-month paydown of a liability and the
// effect of extra payments on payoff time and interest cost.
package loan

import (
	"github.com/shopspring/decimal"

	"finlens/internal/models"
)

const (
	// maxMonths caps the simulation at 50 years; a loan that has not paid
	// off by then is reported as not computable instead of looping on.
	maxMonths = 600
)

// epsilon is the balance below which a loan counts as paid off.
var epsilon = decimal.NewFromFloat(0.01)

// extraDeltas are the fixed per-period extra payments compared against the
// baseline. Each is a full independent re-simulation, not an approximation.
var extraDeltas = []int64{50, 100, 200, 500}

// Amortize simulates the paydown of a liability under its minimum payment.
// A liability is amortizable only when it has both an interest rate and a
// minimum payment, and the payment exceeds the first month's interest
// accrual; anything else yields a non-computable projection.
func Amortize(l models.Liability) *models.PayoffProjection {
	if l.InterestRate == nil || l.MinimumPayment == nil {
		return notComputable("liability has no interest rate or minimum payment")
	}
	if l.CurrentBalance.Sign() < 0 {
		return notComputable("balance is negative")
	}
	if *l.InterestRate < 0 || l.MinimumPayment.Sign() < 0 {
		return notComputable("negative interest rate or payment")
	}

	monthlyRate := decimal.NewFromFloat(*l.InterestRate).Div(decimal.NewFromInt(1200))
	payment := *l.MinimumPayment

	firstInterest := l.CurrentBalance.Mul(monthlyRate).Round(2)
	if payment.LessThanOrEqual(firstInterest) && l.CurrentBalance.GreaterThan(epsilon) {
		return notComputable("payment does not cover monthly interest; balance can never decrease")
	}

	months, totalInterest, schedule, ok := simulate(l.CurrentBalance, monthlyRate, payment, true)
	if !ok {
		return notComputable("payoff exceeds the 600-month simulation cap")
	}

	projection := &models.PayoffProjection{
		Computable:     true,
		MonthsToPayoff: months,
		TotalInterest:  totalInterest,
		TotalPaid:      l.CurrentBalance.Add(totalInterest),
		Schedule:       schedule,
	}

	for _, delta := range extraDeltas {
		extra := decimal.NewFromInt(delta)
		sMonths, sInterest, _, sOK := simulate(l.CurrentBalance, monthlyRate, payment.Add(extra), false)
		if !sOK {
			continue
		}
		projection.Scenarios = append(projection.Scenarios, models.ExtraPaymentScenario{
			ExtraPayment:   extra,
			MonthsToPayoff: sMonths,
			TotalInterest:  sInterest,
			InterestSaved:  totalInterest.Sub(sInterest),
			MonthsSaved:    months - sMonths,
		})
	}

	return projection
}

// simulate runs the amortization loop: each month accrue simple interest,
// apply the payment to interest first, and reduce the balance by the rest.
// Returns ok=false when the cap is hit before payoff.
func simulate(balance, monthlyRate, payment decimal.Decimal, keepSchedule bool) (months int, totalInterest decimal.Decimal, schedule []models.ScheduleEntry, ok bool) {
	totalInterest = decimal.Zero

	for months = 0; balance.GreaterThan(epsilon); {
		if months >= maxMonths {
			return months, totalInterest, schedule, false
		}
		months++

		interest := balance.Mul(monthlyRate).Round(2)
		principal := payment.Sub(interest)
		if principal.GreaterThan(balance) {
			principal = balance
		}
		if principal.Sign() <= 0 {
			// Payment no longer covers interest; the balance would diverge.
			return months, totalInterest, schedule, false
		}

		balance = balance.Sub(principal)
		totalInterest = totalInterest.Add(interest)

		if keepSchedule {
			schedule = append(schedule, models.ScheduleEntry{
				Period:    months,
				Payment:   principal.Add(interest),
				Principal: principal,
				Interest:  interest,
				Balance:   balance,
			})
		}
	}

	return months, totalInterest, schedule, true
}

func notComputable(reason string) *models.PayoffProjection {
	return &models.PayoffProjection{
		Computable:    false,
		Reason:        reason,
		TotalInterest: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}
}
