// Package records handles record and subscription ingestion, plus JSON
// export of the full dataset (optionally age-encrypted).
package records

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finlens/internal/handlers/analysis"
	"finlens/internal/models"
	"finlens/internal/services/calendar"
	"finlens/internal/services/storage"
)

var (
	store     storage.Store
	vault     storage.Vault
	exportDir string
)

// Initialize sets up the records package with required dependencies
func Initialize(s storage.Store, exportDirectory string) {
	store = s
	exportDir = exportDirectory
}

// RegisterRoutes registers all record routes
func RegisterRoutes(r chi.Router) {
	r.Get("/records", handleList)
	r.Post("/records", handleAdd)
	r.Get("/subscriptions", handleListSubscriptions)
	r.Post("/subscriptions", handleSaveSubscription)
	r.Post("/export", handleExport)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}

	set := models.NewRecordSet(records)
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year: "+v)
			return
		}
		set = set.FilterYear(year)
	}
	if v := r.URL.Query().Get("category"); v != "" {
		set = set.FilterCategory(v)
	}

	sorted := set.SortByDate()
	writeJSON(w, http.StatusOK, map[string]any{
		"records": sorted.Records,
		"count":   sorted.Len(),
	})
}

func handleAdd(w http.ResponseWriter, r *http.Request) {
	var incoming []models.Record
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	for i := range incoming {
		rec := &incoming[i]
		if rec.Amount.Sign() <= 0 {
			writeError(w, http.StatusBadRequest, "record amounts must be positive")
			return
		}
		if rec.Kind != models.Expense && rec.Kind != models.Income {
			writeError(w, http.StatusBadRequest, "record kind must be expense or income")
			return
		}
		if rec.OccurredOn.IsZero() {
			writeError(w, http.StatusBadRequest, "record date is required")
			return
		}
		if rec.IsRecurring && !rec.Frequency.Valid() {
			writeError(w, http.StatusBadRequest, "recurring records need a valid frequency")
			return
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
	}

	if err := store.AddRecords(incoming); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save records: "+err.Error())
		return
	}
	analysis.FlushCache()
	writeJSON(w, http.StatusCreated, map[string]any{"added": len(incoming)})
}

func handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := store.Subscriptions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load subscriptions: "+err.Error())
		return
	}

	// NextBilling is derived on read, never stored.
	type subWithNext struct {
		models.Subscription
		NextBilling calendar.Date `json:"next_billing"`
	}
	out := make([]subWithNext, len(subs))
	for i, s := range subs {
		out[i] = subWithNext{Subscription: s, NextBilling: s.NextBilling()}
	}

	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": out, "count": len(out)})
}

func handleSaveSubscription(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if sub.Name == "" {
		writeError(w, http.StatusBadRequest, "subscription name is required")
		return
	}
	if !sub.Frequency.Valid() {
		writeError(w, http.StatusBadRequest, "invalid frequency")
		return
	}
	if sub.StartDate.IsZero() {
		writeError(w, http.StatusBadRequest, "start date is required")
		return
	}
	if sub.EndDate != nil && sub.EndDate.Before(sub.StartDate) {
		writeError(w, http.StatusBadRequest, "end date is before start date")
		return
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if err := store.SaveSubscription(sub); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save subscription: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type exportRequest struct {
	Password string `json:"password,omitempty"`
}

// handleExport writes the full dataset to the export directory as JSON,
// sealed with age when a password is supplied.
func handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.Body != nil {
		// An empty body means an unencrypted export.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	records, err := store.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load records: "+err.Error())
		return
	}
	subs, err := store.Subscriptions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load subscriptions: "+err.Error())
		return
	}
	snaps, err := store.Snapshots()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshots: "+err.Error())
		return
	}

	payload, err := json.MarshalIndent(map[string]any{
		"records":       records,
		"subscriptions": subs,
		"snapshots":     snaps,
	}, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode export: "+err.Error())
		return
	}

	name := "finlens-export-" + calendar.Today().String() + ".json"
	path := filepath.Join(exportDir, name)

	encrypted := false
	if req.Password != "" {
		if payload, err = vault.Encrypt(payload, req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		name += ".age"
		path += ".age"
		encrypted = true
	}

	if err := os.WriteFile(path, payload, 0600); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write export: "+err.Error())
		return
	}

	slog.Info("wrote export", "file", name, "encrypted", encrypted)
	writeJSON(w, http.StatusCreated, map[string]any{"file": name, "encrypted": encrypted})
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
