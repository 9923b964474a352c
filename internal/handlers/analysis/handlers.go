// Package analysis serves derived views over the record history: spending
// patterns, monthly/annual aggregates, trend forecasts and savings-goal
// progress. Nothing here writes to the store; responses are cached briefly
// and flushed whenever records change.
package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"finlens/internal/models"
	"finlens/internal/services/aggregator"
	"finlens/internal/services/forecast"
	"finlens/internal/services/patterns"
	"finlens/internal/services/storage"
)

var (
	store       storage.Store
	resultCache *gocache.Cache
	aggregate   *aggregator.Service
	projector   *forecast.Projector
	goals       *forecast.GoalEvaluator
)

// Initialize sets up the analysis package with required dependencies
func Initialize(s storage.Store, cacheTTL time.Duration) {
	store = s
	resultCache = gocache.New(cacheTTL, 2*cacheTTL)
	aggregate = aggregator.New()
	projector = forecast.NewProjector()
	goals = forecast.NewGoalEvaluator()
}

// FlushCache drops all cached analysis results. Write paths call this so a
// commit is immediately visible in analysis responses.
func FlushCache() {
	if resultCache != nil {
		resultCache.Flush()
	}
}

// RegisterRoutes registers all analysis routes
func RegisterRoutes(r chi.Router) {
	r.Get("/analysis/patterns", handlePatterns)
	r.Get("/analysis/monthly/{year}", handleMonthly)
	r.Get("/analysis/yearly/{year}", handleYearly)
	r.Get("/analysis/forecast", handleForecast)
	r.Post("/analysis/goals/progress", handleGoalProgress)
}

func handlePatterns(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "patterns"
	if cached, ok := resultCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	detected := patterns.Detect(records)
	response := map[string]any{
		"patterns": detected,
		"count":    len(detected),
	}
	resultCache.SetDefault(cacheKey, response)
	writeJSON(w, http.StatusOK, response)
}

func handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("monthly-%d", year)
	if cached, found := resultCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	months := aggregate.AggregateByMonth(models.NewRecordSet(records), year)
	response := map[string]any{"year": year, "months": months}
	resultCache.SetDefault(cacheKey, response)
	writeJSON(w, http.StatusOK, response)
}

func handleYearly(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("yearly-%d", year)
	if cached, found := resultCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	summary := aggregate.AggregateByYear(models.NewRecordSet(records), year)
	resultCache.SetDefault(cacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleForecast projects the next period from the trailing months of the
// given year (default: the year of the latest record).
func handleForecast(w http.ResponseWriter, r *http.Request) {
	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	set := models.NewRecordSet(records)
	year := set.MaxDate().Year
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year: "+v)
			return
		}
	}

	cacheKey := fmt.Sprintf("forecast-%d", year)
	if cached, found := resultCache.Get(cacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	months := aggregate.AggregateByMonth(set, year)
	// Feed only months that have activity so a sparse year does not drag
	// the trailing average toward zero.
	var recent []models.MonthlyAggregate
	for _, m := range months {
		if !m.TotalExpense.IsZero() || !m.TotalIncome.IsZero() {
			recent = append(recent, m)
		}
	}

	result := projector.Project(recent)
	response := map[string]any{"year": year, "forecast": result}
	resultCache.SetDefault(cacheKey, response)
	writeJSON(w, http.StatusOK, response)
}

type goalProgressRequest struct {
	Goal            models.SavingsGoal `json:"goal"`
	MonthlyNetFlow  decimal.Decimal    `json:"monthly_net_flow"`
	MonthsRemaining int                `json:"months_remaining"`
}

func handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req goalProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Goal.Target.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "goal target must be positive")
		return
	}

	writeJSON(w, http.StatusOK, goals.Progress(req.Goal, req.MonthlyNetFlow, req.MonthsRemaining))
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 3000 {
		writeError(w, http.StatusBadRequest, "invalid year: "+raw)
		return 0, false
	}
	return year, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
