// Package networth manages assets, liabilities and dated net-worth
// snapshots. Snapshots are keyed by date; saving twice on one date replaces.
package networth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
	"finlens/internal/services/networth"
	"finlens/internal/services/storage"
)

var store storage.Store

// Initialize sets up the networth package with required dependencies
func Initialize(s storage.Store) {
	store = s
}

// RegisterRoutes registers all net-worth routes
func RegisterRoutes(r chi.Router) {
	r.Get("/networth/current", handleCurrent)
	r.Get("/networth/snapshots", handleListSnapshots)
	r.Post("/networth/snapshots", handleSaveSnapshot)
	r.Post("/networth/assets", handleSaveAsset)
	r.Post("/networth/liabilities", handleSaveLiability)
}

// compute builds a snapshot for the given date from current holdings, with
// the delta against the latest stored snapshot strictly before that date.
func compute(date calendar.Date) (models.NetWorthSnapshot, error) {
	assets, err := store.Assets()
	if err != nil {
		return models.NetWorthSnapshot{}, err
	}
	liabilities, err := store.Liabilities()
	if err != nil {
		return models.NetWorthSnapshot{}, err
	}
	stored, err := store.Snapshots()
	if err != nil {
		return models.NetWorthSnapshot{}, err
	}

	var previous *models.NetWorthSnapshot
	for i := range stored {
		if stored[i].Date.Before(date) {
			previous = &stored[i]
		}
	}

	return networth.Snapshot(date, assets, liabilities, previous), nil
}

func parseDate(r *http.Request) (calendar.Date, error) {
	if v := r.URL.Query().Get("date"); v != "" {
		return calendar.Parse(v)
	}
	return calendar.Today(), nil
}

func handleCurrent(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := compute(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute snapshot: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleListSnapshots returns stored snapshots date-ascending, with each
// delta recomputed against its predecessor in the stored sequence.
func handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := store.Snapshots()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load snapshots: "+err.Error())
		return
	}

	for i := range snaps {
		if i == 0 {
			snaps[i].DeltaFromPrevious = nil
			continue
		}
		snaps[i].DeltaFromPrevious = networth.DeltaBetween(snaps[i-1], snaps[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
}

func handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := compute(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute snapshot: "+err.Error())
		return
	}
	if err := store.SaveSnapshot(snap); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save snapshot: "+err.Error())
		return
	}

	slog.Info("saved net worth snapshot", "date", snap.Date.String(), "net_worth", snap.NetWorth.String())
	writeJSON(w, http.StatusCreated, snap)
}

func handleSaveAsset(w http.ResponseWriter, r *http.Request) {
	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if asset.Name == "" {
		writeError(w, http.StatusBadRequest, "asset name is required")
		return
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}

	if err := store.SaveAsset(asset); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save asset: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func handleSaveLiability(w http.ResponseWriter, r *http.Request) {
	var liability models.Liability
	if err := json.NewDecoder(r.Body).Decode(&liability); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if liability.Name == "" {
		writeError(w, http.StatusBadRequest, "liability name is required")
		return
	}
	if liability.ID == "" {
		liability.ID = uuid.NewString()
	}

	if err := store.SaveLiability(liability); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save liability: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, liability)
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
