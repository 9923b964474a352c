package forecast

import (
	"github.com/shopspring/decimal"

	"finlens/internal/models"
)

// GoalEvaluator scores savings-goal progress. The expected-spending
// multiplier is deliberately a parameter: the conventional 1.5x of target is
// a heuristic with no firmer rationale, so callers can tune it.
type GoalEvaluator struct {
	SpendingMultiplier float64
}

// NewGoalEvaluator returns an evaluator with the conventional multiplier.
func NewGoalEvaluator() *GoalEvaluator {
	return &GoalEvaluator{SpendingMultiplier: 1.5}
}

// Progress reports how a goal is tracking given the average monthly net
// flow and the number of months remaining until the deadline (zero when the
// goal has no deadline).
func (g *GoalEvaluator) Progress(goal models.SavingsGoal, monthlyNetFlow decimal.Decimal, monthsRemaining int) models.GoalProgress {
	progress := models.GoalProgress{
		GoalID:    goal.ID,
		Remaining: goal.Target.Sub(goal.Saved),
	}

	if goal.Target.Sign() > 0 {
		ratio := goal.Saved.Div(goal.Target)
		progress.Percent, _ = ratio.Mul(decimal.NewFromInt(100)).Float64()
	}
	if progress.Remaining.Sign() < 0 {
		progress.Remaining = decimal.Zero
	}

	progress.ExpectedSpending = goal.Target.Mul(decimal.NewFromFloat(g.SpendingMultiplier)).Round(2)

	if progress.Remaining.IsZero() {
		progress.OnTrack = true
		return progress
	}
	if monthsRemaining <= 0 {
		// No deadline pressure: saving anything at all counts as on track.
		progress.OnTrack = monthlyNetFlow.Sign() > 0
		return progress
	}

	projected := goal.Saved.Add(monthlyNetFlow.Mul(decimal.NewFromInt(int64(monthsRemaining))))
	progress.OnTrack = projected.GreaterThanOrEqual(goal.Target)
	return progress
}
