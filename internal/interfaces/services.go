package interfaces

import (
	"context"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// LedgerService turns raw export rows into a reconciled portfolio model.
type LedgerService interface {
	// BuildPortfolioModel normalizes activity rows, folds them into
	// per-symbol ledgers and reconciles authoritative holdings. It is a
	// pure function of its inputs: no I/O, no clock, no shared state.
	BuildPortfolioModel(activity, holdings []models.RawRecord) *models.PortfolioModel
}

// PerformanceService derives return metrics from a portfolio model.
type PerformanceService interface {
	// ComputePerformance builds daily timelines, unitizes them and derives
	// TWR/XIRR per symbol and for the whole portfolio. It may block only
	// while awaiting the price provider; a price failure for one symbol
	// degrades that symbol alone.
	ComputePerformance(ctx context.Context, model *models.PortfolioModel) (*models.PerformanceReport, error)
}
