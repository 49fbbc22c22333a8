package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reflectbench/domain/bench"
	"reflectbench/domain/core"
	apperrors "reflectbench/internal/errors"
)

// analyzeRequest mirrors the harness suite document
type analyzeRequest struct {
	PerformanceMetrics map[string]bench.RawPair `json:"performance_metrics"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	suite, err := bench.NewSuite(req.PerformanceMetrics)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.InvalidInput(err.Error()))
		return
	}

	run, err := a.service.AnalyzeSuite(r.Context(), suite)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.ledger == nil {
		respondError(w, http.StatusNotImplemented, apperrors.New(apperrors.CodeConfigInvalid, "run ledger is not configured"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := a.ledger.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if a.ledger == nil {
		respondError(w, http.StatusNotImplemented, apperrors.New(apperrors.CodeConfigInvalid, "run ledger is not configured"))
		return
	}

	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.InvalidInput(err.Error()))
		return
	}

	run, err := a.ledger.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeInsufficientSampleSize:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
