// Package handlers implements the HTTP handlers for the API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/plans"
	"github.com/alphalens/backend/internal/recommend"
	"github.com/alphalens/backend/pkg/logger"
)

// identityFunc extracts the caller's user ID and plan from the request
// context. Injected so handlers stay decoupled from the auth middleware.
type identityFunc func(ctx context.Context) (userID, plan string)

// RecommendationHandler handles recommendation API endpoints.
type RecommendationHandler struct {
	service  *recommend.Service
	catalog  *plans.Catalog
	identity identityFunc
	logger   *logger.Logger
}

// NewRecommendationHandler creates a recommendation handler.
func NewRecommendationHandler(service *recommend.Service, catalog *plans.Catalog, identity func(ctx context.Context) (string, string), log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service:  service,
		catalog:  catalog,
		identity: identity,
		logger:   log,
	}
}

// CreateRequest is the POST /api/recommendations request body.
type CreateRequest struct {
	Tickers []string `json:"tickers"`
	Horizon string   `json:"horizon"`
}

// Create runs a new recommendation.
// POST /api/recommendations
func (h *RecommendationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, plan := h.identity(ctx)

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.service.Run(ctx, recommend.Request{
		UserID:     userID,
		Tickers:    req.Tickers,
		Horizon:    req.Horizon,
		PlanLimits: h.catalog.Limits(plan),
	})
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetByID returns a stored run. Runs owned by other users read as 404.
// GET /api/recommendations/{run_id}
func (h *RecommendationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := h.identity(ctx)
	runID := mux.Vars(r)["run_id"]

	result, err := h.service.GetRun(ctx, userID, runID)
	if errors.Is(err, contracts.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// History lists the caller's past runs, newest first.
// GET /api/recommendations?limit=20&offset=0
func (h *RecommendationHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := h.identity(ctx)

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	summaries, err := h.service.History(ctx, userID, limit, offset)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   summaries,
		"limit":  limit,
		"offset": offset,
	})
}

// Delete removes a stored run owned by the caller.
// DELETE /api/recommendations/{run_id}
func (h *RecommendationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := h.identity(ctx)
	runID := mux.Vars(r)["run_id"]

	// Ownership check reads the run first; foreign runs read as 404.
	if _, err := h.service.GetRun(ctx, userID, runID); err != nil {
		if errors.Is(err, contracts.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "Run not found")
			return
		}
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}

	if _, err := h.service.DeleteRun(ctx, runID); err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to delete run")
		respondError(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondRunError maps pipeline errors to HTTP statuses.
func (h *RecommendationHandler) respondRunError(w http.ResponseWriter, err error) {
	if contracts.IsValidationError(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithError(err).Error("Recommendation run failed")
	respondError(w, http.StatusInternalServerError, "Recommendation run failed")
}

// Helper functions

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
