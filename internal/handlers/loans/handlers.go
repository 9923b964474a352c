// Package loans serves liability payoff projections.
package loans

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finlens/internal/models"
	"finlens/internal/services/loan"
	"finlens/internal/services/storage"
)

var store storage.Store

// Initialize sets up the loans package with required dependencies
func Initialize(s storage.Store) {
	store = s
}

// RegisterRoutes registers all loan routes
func RegisterRoutes(r chi.Router) {
	r.Get("/loans", handleList)
	r.Post("/loans", handleSave)
	r.Get("/loans/{id}/payoff", handlePayoff)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	liabilities, err := store.Liabilities()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load liabilities: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liabilities": liabilities})
}

func handleSave(w http.ResponseWriter, r *http.Request) {
	var liability models.Liability
	if err := json.NewDecoder(r.Body).Decode(&liability); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if liability.Name == "" {
		writeError(w, http.StatusBadRequest, "liability name is required")
		return
	}
	if liability.CurrentBalance.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "balance cannot be negative")
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

// handlePayoff amortizes one liability. A loan that cannot pay off under its
// minimum payment is still a 200: not-computable is a business outcome, with
// the reason in the body.
func handlePayoff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	liabilities, err := store.Liabilities()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load liabilities: "+err.Error())
		return
	}

	for _, l := range liabilities {
		if l.ID == id {
			writeJSON(w, http.StatusOK, loan.Amortize(l))
			return
		}
	}
	writeError(w, http.StatusNotFound, "liability not found: "+id)
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
