package loan

import (
	"testing"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
)

func liability(balance float64, rate float64, payment float64) models.Liability {
	p := decimal.NewFromFloat(payment)
	return models.Liability{
		ID:             "loan-1",
		Name:           "card",
		CurrentBalance: decimal.NewFromFloat(balance),
		InterestRate:   &rate,
		MinimumPayment: &p,
	}
}

func TestAmortizeBaseline(t *testing.T) {
	// 1200 at 24% APR with a 100 payment: monthly rate 2%,
	// first-month interest 24, first principal 76.
	result := Amortize(liability(1200, 24, 100))

	if !result.Computable {
		t.Fatalf("expected computable projection, got reason %q", result.Reason)
	}
	if result.MonthsToPayoff <= 1 {
		t.Errorf("MonthsToPayoff = %d, want > 1", result.MonthsToPayoff)
	}
	if len(result.Schedule) != result.MonthsToPayoff {
		t.Errorf("schedule has %d entries, want %d", len(result.Schedule), result.MonthsToPayoff)
	}

	first := result.Schedule[0]
	if !first.Interest.Equal(decimal.NewFromInt(24)) {
		t.Errorf("first-month interest = %s, want 24", first.Interest)
	}
	if !first.Principal.Equal(decimal.NewFromInt(76)) {
		t.Errorf("first-month principal = %s, want 76", first.Principal)
	}

	prev := decimal.NewFromInt(1200)
	for _, entry := range result.Schedule {
		if entry.Balance.GreaterThanOrEqual(prev) {
			t.Fatalf("balance not strictly decreasing at period %d: %s -> %s", entry.Period, prev, entry.Balance)
		}
		prev = entry.Balance
	}

	final := result.Schedule[len(result.Schedule)-1].Balance
	if final.GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("final balance = %s, want <= 0.01", final)
	}
	if result.TotalInterest.Sign() <= 0 {
		t.Errorf("TotalInterest = %s, want > 0", result.TotalInterest)
	}
	if !result.TotalPaid.Equal(decimal.NewFromInt(1200).Add(result.TotalInterest)) {
		t.Errorf("TotalPaid = %s, want balance plus interest", result.TotalPaid)
	}
}

func TestAmortizeNotComputable(t *testing.T) {
	t.Run("payment below monthly interest", func(t *testing.T) {
		// 2% of 10000 is 200; a 150 payment can never reduce the balance.
		result := Amortize(liability(10000, 24, 150))
		if result.Computable {
			t.Error("expected not computable when payment <= monthly interest")
		}
		if len(result.Schedule) != 0 {
			t.Error("non-computable projection must not iterate a schedule")
		}
	})

	t.Run("missing rate or payment", func(t *testing.T) {
		l := models.Liability{ID: "x", CurrentBalance: decimal.NewFromInt(500)}
		if Amortize(l).Computable {
			t.Error("expected not computable without rate and payment")
		}
	})

	t.Run("payoff beyond the 600-month cap", func(t *testing.T) {
		// Interest is 10000/month and the payment barely exceeds it, so the
		// principal shrinks by pennies and payoff takes over 1000 months.
		result := Amortize(liability(1000000, 12, 10000.01))
		if result.Computable {
			t.Errorf("expected cap-hit to be not computable, got %d months", result.MonthsToPayoff)
		}
	})

	t.Run("zero balance needs no payoff", func(t *testing.T) {
		result := Amortize(liability(0, 10, 50))
		if !result.Computable {
			t.Fatalf("zero balance should be computable, got %q", result.Reason)
		}
		if result.MonthsToPayoff != 0 {
			t.Errorf("MonthsToPayoff = %d, want 0", result.MonthsToPayoff)
		}
	})
}

func TestAmortizeTerminatesWithinCap(t *testing.T) {
	cases := []models.Liability{
		liability(500, 0, 100),      // zero-rate loan
		liability(25000, 6.5, 450),  // car-loan shape
		liability(3500, 19.99, 120), // card shape
	}

	for _, l := range cases {
		result := Amortize(l)
		if !result.Computable {
			t.Errorf("%s: expected computable, got %q", l.CurrentBalance, result.Reason)
			continue
		}
		if result.MonthsToPayoff > 600 {
			t.Errorf("%s: %d months exceeds cap", l.CurrentBalance, result.MonthsToPayoff)
		}
	}
}

func TestExtraPaymentScenarios(t *testing.T) {
	result := Amortize(liability(12000, 18, 300))
	if !result.Computable {
		t.Fatalf("expected computable, got %q", result.Reason)
	}
	if len(result.Scenarios) != 4 {
		t.Fatalf("got %d scenarios, want 4", len(result.Scenarios))
	}

	prevMonths := result.MonthsToPayoff
	prevInterest := result.TotalInterest
	for _, s := range result.Scenarios {
		if s.MonthsToPayoff > prevMonths {
			t.Errorf("extra %s: months %d exceed previous %d", s.ExtraPayment, s.MonthsToPayoff, prevMonths)
		}
		if s.TotalInterest.GreaterThan(prevInterest) {
			t.Errorf("extra %s: interest %s exceeds previous %s", s.ExtraPayment, s.TotalInterest, prevInterest)
		}
		if s.InterestSaved.Sign() < 0 {
			t.Errorf("extra %s: negative interest saved %s", s.ExtraPayment, s.InterestSaved)
		}
		if s.MonthsSaved != result.MonthsToPayoff-s.MonthsToPayoff {
			t.Errorf("extra %s: MonthsSaved inconsistent", s.ExtraPayment)
		}
		prevMonths = s.MonthsToPayoff
		prevInterest = s.TotalInterest
	}
}
