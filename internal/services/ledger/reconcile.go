package ledger

import (
	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// Service implements interfaces.LedgerService
type Service struct {
	logger *common.Logger
}

// NewService creates a new ledger service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// BuildPortfolioModel normalizes activity rows into per-symbol ledgers and
// reconciles authoritative holdings over them. Pure: the result depends
// only on the two record batches.
func (s *Service) BuildPortfolioModel(activity, holdings []models.RawRecord) *models.PortfolioModel {
	candidates := s.normalizeActivity(activity)
	ledgers := buildLedgers(candidates)
	positions := s.normalizeHoldings(holdings)

	model := s.reconcile(ledgers, positions)

	s.logger.Info().
		Int("activity_rows", len(activity)).
		Int("holdings_rows", len(holdings)).
		Int("events", len(candidates)).
		Int("symbols", len(model.Ledgers)).
		Msg("Portfolio model built")
	return model
}

// reconcile merges holdings into ledgers across the union of symbols.
// Holdings are authoritative: they override the activity-derived share
// count, supply the position cost basis, and a live (positive-share)
// holding forces the position open even when the derived history looks
// fully sold.
func (s *Service) reconcile(ledgers map[string]*models.SecurityLedger, positions map[string]holdingPosition) *models.PortfolioModel {
	model := &models.PortfolioModel{
		Ledgers: make(map[string]*models.SecurityLedger, len(ledgers)),
	}

	for symbol, l := range ledgers {
		model.Ledgers[symbol] = l
	}
	for symbol, pos := range positions {
		l, ok := model.Ledgers[symbol]
		if !ok {
			// Holding with no activity history: synthetic empty ledger.
			l = &models.SecurityLedger{Symbol: symbol, Closed: true}
			model.Ledgers[symbol] = l
		}
		l.HasHolding = true
		l.CurrentShares = pos.Shares
		l.PositionCostBasis = pos.CostBasis
		if pos.Shares > 0 {
			l.Closed = false
		}
		if l.Description == "" {
			l.Description = pos.Description
		}
	}

	for _, l := range model.Ledgers {
		// Exports sometimes omit basis (in-kind transfers); fall back to
		// the cash actually invested per the activity history.
		if l.PositionCostBasis > 0 {
			l.EffectiveCostBasis = l.PositionCostBasis
		} else {
			l.EffectiveCostBasis = l.NetInvestedCash
		}

		// Model bounds span symbols with at least one event;
		// holdings-only symbols never extend the range.
		if !l.HasEvents() {
			continue
		}
		if l.StartDate != nil && (model.StartDate == nil || l.StartDate.Before(*model.StartDate)) {
			start := *l.StartDate
			model.StartDate = &start
		}
		if l.EndDate != nil && (model.EndDate == nil || l.EndDate.After(*model.EndDate)) {
			end := *l.EndDate
			model.EndDate = &end
		}
	}

	return model
}
