package server

import (
	"context"
	"net/http"

	"github.com/bobmcallan/totalreturn/internal/models"
	"github.com/bobmcallan/totalreturn/internal/services/performance"
)

// buildModel loads the stored record batches and builds the reconciled
// portfolio model. ok=false means a response has already been written.
func (s *Server) buildModel(ctx context.Context, w http.ResponseWriter) (*models.PortfolioModel, bool) {
	records := s.app.Storage.RecordStorage()

	activity, err := records.Records(ctx, models.BatchKindActivity)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load activity records")
		WriteError(w, http.StatusInternalServerError, "Failed to load activity records")
		return nil, false
	}
	holdings, err := records.Records(ctx, models.BatchKindHoldings)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load holdings records")
		WriteError(w, http.StatusInternalServerError, "Failed to load holdings records")
		return nil, false
	}
	if len(activity) == 0 && len(holdings) == 0 {
		WriteError(w, http.StatusBadRequest, "Upload an activity or holdings CSV first")
		return nil, false
	}

	return s.app.LedgerService.BuildPortfolioModel(activity, holdings), true
}

// handlePortfolio computes and returns the full performance report.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	model, ok := s.buildModel(r.Context(), w)
	if !ok {
		return
	}

	report, err := s.app.PerformanceService.ComputePerformance(r.Context(), model)
	if err != nil {
		s.logger.Error().Err(err).Msg("Performance computation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to compute performance")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handlePortfolioModel returns the reconciled ledgers without running the
// performance pipeline; useful for inspecting normalization results.
func (s *Server) handlePortfolioModel(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	model, ok := s.buildModel(r.Context(), w)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, model)
}

// handlePortfolioChart renders the portfolio daily value series as a PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	model, ok := s.buildModel(r.Context(), w)
	if !ok {
		return
	}

	report, err := s.app.PerformanceService.ComputePerformance(r.Context(), model)
	if err != nil {
		s.logger.Error().Err(err).Msg("Performance computation failed")
		WriteError(w, http.StatusInternalServerError, "Failed to compute performance")
		return
	}

	png, err := performance.RenderPortfolioChart(report.History)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Cannot render chart: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
