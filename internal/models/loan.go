package models

import "github.com/shopspring/decimal"

// ScheduleEntry is one simulated month of loan paydown
type ScheduleEntry struct {
	Period    int             `json:"period"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

// ExtraPaymentScenario is a full re-simulation with a larger payment
type ExtraPaymentScenario struct {
	ExtraPayment   decimal.Decimal `json:"extra_payment"`
	MonthsToPayoff int             `json:"months_to_payoff"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	InterestSaved  decimal.Decimal `json:"interest_saved"`
	MonthsSaved    int             `json:"months_saved"`
}

// PayoffProjection is the amortization result. A loan that cannot amortize
// under its payment is an expected business outcome, reported with
// Computable=false and a reason rather than an error.
type PayoffProjection struct {
	Computable     bool                   `json:"computable"`
	Reason         string                 `json:"reason,omitempty"`
	MonthsToPayoff int                    `json:"months_to_payoff"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	TotalPaid      decimal.Decimal        `json:"total_paid"`
	Schedule       []ScheduleEntry        `json:"schedule,omitempty"`
	Scenarios      []ExtraPaymentScenario `json:"scenarios,omitempty"`
}
