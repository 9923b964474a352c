// Package recurring exposes bulk materialization of recurring definitions
// and subscriptions, plus validation and dedupe maintenance over the record
// history.
package recurring

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finlens/internal/handlers/analysis"
	"finlens/internal/models"
	"finlens/internal/services/calendar"
	"finlens/internal/services/recurrence"
	"finlens/internal/services/storage"
)

var (
	store        storage.Store
	materializer *recurrence.Materializer
)

// Initialize sets up the recurring package with required dependencies
func Initialize(s storage.Store) {
	store = s
	materializer = recurrence.NewMaterializer()
}

// RegisterRoutes registers all recurring routes
func RegisterRoutes(r chi.Router) {
	r.Post("/recurring/materialize", handleMaterialize)
	r.Get("/recurring/analyze", handleAnalyze)
	r.Get("/recurring/validate", handleValidate)
	r.Post("/recurring/deduplicate", handleDeduplicate)
}

// loadInput assembles a materialization input from the store. The as-of date
// defaults to today; an explicit as_of query keeps runs reproducible.
func loadInput(r *http.Request) (recurrence.Input, error) {
	records, err := store.Records()
	if err != nil {
		return recurrence.Input{}, err
	}
	subs, err := store.Subscriptions()
	if err != nil {
		return recurrence.Input{}, err
	}

	asOf := calendar.Today()
	if v := r.URL.Query().Get("as_of"); v != "" {
		if asOf, err = calendar.Parse(v); err != nil {
			return recurrence.Input{}, err
		}
	}

	var definitions []models.Record
	for _, rec := range records {
		if rec.IsRecurring {
			definitions = append(definitions, rec)
		}
	}

	return recurrence.Input{
		Definitions:   definitions,
		Subscriptions: subs,
		Existing:      records,
		AsOf:          asOf,
	}, nil
}

func handleMaterialize(w http.ResponseWriter, r *http.Request) {
	in, err := loadInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dryRun := r.URL.Query().Get("dry_run") == "true"
	result := materializer.MaterializeAll(in, recurrence.Options{DryRun: dryRun, SkipExisting: true})

	if !dryRun && len(result.Generated) > 0 {
		if err := store.AddRecords(result.Generated); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to persist generated records: "+err.Error())
			return
		}
		advanceLastBilled(in.Subscriptions, result.GeneratedCounts)
		analysis.FlushCache()
		slog.Info("materialized recurring records", "added", result.TotalAdded, "skipped", result.SkippedExisting, "as_of", in.AsOf.String())
	}

	writeJSON(w, http.StatusOK, result)
}

// advanceLastBilled moves each subscription's LastBilled marker past the
// occurrences just committed, so the next run resumes where this one ended.
func advanceLastBilled(subs []models.Subscription, counts map[string]int) {
	for _, sub := range subs {
		n := counts[sub.ID]
		if n == 0 {
			continue
		}
		last := sub.SeedDate().AddPeriod(sub.Frequency, n-1)
		sub.LastBilled = &last
		if err := store.SaveSubscription(sub); err != nil {
			slog.Error("failed to advance subscription billing marker", "subscription", sub.ID, "error", err)
		}
	}
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, err := loadInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, materializer.Analyze(in))
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	in, err := loadInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	warnings := materializer.Validate(in, recurrence.DefaultValidateConfig())
	writeJSON(w, http.StatusOK, map[string]any{
		"warnings": warnings,
		"count":    len(warnings),
	})
}

func handleDeduplicate(w http.ResponseWriter, r *http.Request) {
	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	kept, removed := recurrence.Deduplicate(records)

	dryRun := r.URL.Query().Get("dry_run") == "true"
	totalRemoved := 0
	for _, n := range removed {
		totalRemoved += n
	}

	if !dryRun && totalRemoved > 0 {
		keptIDs := make(map[string]bool, len(kept))
		for _, rec := range kept {
			keptIDs[rec.ID] = true
		}
		var removeIDs []string
		for _, rec := range records {
			if !keptIDs[rec.ID] {
				removeIDs = append(removeIDs, rec.ID)
			}
		}
		if _, err := store.RemoveRecords(removeIDs); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to remove duplicates: "+err.Error())
			return
		}
		analysis.FlushCache()
		slog.Info("removed duplicate records", "removed", totalRemoved)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dry_run":         dryRun,
		"removed_by_kind": removed,
		"total_removed":   totalRemoved,
		"remaining_count": len(kept),
	})
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
