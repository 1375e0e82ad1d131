package performance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/interfaces"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// maxConcurrent bounds the per-symbol fan-out.
const maxConcurrent = 5

// Service implements interfaces.PerformanceService
type Service struct {
	prices interfaces.PriceProvider
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new performance service
func NewService(prices interfaces.PriceProvider, logger *common.Logger) *Service {
	return &Service{
		prices: prices,
		logger: logger,
		now:    time.Now,
	}
}

// symbolResult carries one symbol's computed row and timeline across the
// fan-in barrier.
type symbolResult struct {
	row      models.SymbolMetrics
	timeline *models.DailyTimeline
	missing  bool
}

// ComputePerformance builds per-symbol daily timelines, unitizes them and
// derives TWR/XIRR, then rolls everything up into a portfolio report.
// Per-symbol work runs concurrently; aggregation waits for every symbol.
// A price lookup failure degrades only that symbol, surfaced in
// missing_prices.
func (s *Service) ComputePerformance(ctx context.Context, model *models.PortfolioModel) (*models.PerformanceReport, error) {
	asOf := truncateDay(s.now().UTC())
	report := &models.PerformanceReport{
		Rows:            []models.SymbolMetrics{},
		SymbolHistories: make(map[string][]models.SymbolPoint),
		CashFlows:       []models.ReportedCashFlow{},
		Dividends:       []models.ReportedDividend{},
		MissingPrices:   []string{},
		GeneratedAt:     asOf,
	}

	symbols := model.Symbols()
	if len(symbols) == 0 {
		return report, nil
	}

	start := asOf
	if model.StartDate != nil {
		start = truncateDay(*model.StartDate)
	}
	days := dayIndex(start, asOf)

	histories, err := s.prices.History(ctx, symbols, start, asOf)
	if err != nil {
		// Live quotes can still price the final day for every symbol.
		s.logger.Warn().Err(err).Msg("Price history lookup failed, degrading to live quotes")
		histories = map[string][]models.PriceBar{}
	}

	results := make(map[string]*symbolResult, len(symbols))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := s.computeSymbol(ctx, model.Ledgers[symbol], days, histories[symbol], asOf)

			mu.Lock()
			results[symbol] = res
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	s.aggregate(report, model, symbols, days, results, asOf)

	s.logger.Info().
		Int("symbols", len(symbols)).
		Int("days", len(days)).
		Int("missing_prices", len(report.MissingPrices)).
		Msg("Performance computed")
	return report, nil
}

// computeSymbol runs the timeline → unitization → return-calculator chain
// for one ledger.
func (s *Service) computeSymbol(ctx context.Context, ledger *models.SecurityLedger, days []time.Time, bars []models.PriceBar, asOf time.Time) *symbolResult {
	var livePrice *float64
	price, ok, err := s.prices.CurrentPrice(ctx, ledger.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", ledger.Symbol).Msg("Current price lookup failed")
	} else if ok {
		livePrice = &price
	}

	tl := buildTimeline(ledger, days, bars, livePrice)

	known := make([]bool, tl.Len())
	anyKnown := false
	for i := range known {
		known[i] = tl.Price[i] != nil
		anyKnown = anyKnown || known[i]
	}
	tl.NAV, tl.Units = unitize(tl.CashFlow, tl.MarketValue, known)

	marketValue := 0.0
	if livePrice != nil {
		marketValue = *livePrice * ledger.CurrentShares
	} else if mv, found := tl.LastKnownValue(); found {
		marketValue = mv
	}

	row := buildSymbolRow(ledger, livePrice, marketValue)
	if anyKnown {
		// A never-priced series has no real valuation: the seed NAV of 1
		// would claim a flat 0% return.
		row.TWRPct = timeWeightedReturn(tl.NAV, tl.Units)
	}
	row.XIRRPct = xirrPct(externalFlows(ledger), marketValue, asOf)

	return &symbolResult{
		row:      row,
		timeline: tl,
		missing:  len(bars) == 0 && livePrice == nil,
	}
}

// externalFlows extracts the dated external flows of a ledger for XIRR.
func externalFlows(ledger *models.SecurityLedger) []datedFlow {
	var flows []datedFlow
	for _, cf := range ledger.CashFlows {
		if !cf.External || cf.Amount == 0 {
			continue
		}
		flows = append(flows, datedFlow{date: cf.Date, amount: cf.Amount})
	}
	return flows
}

// aggregate is the fan-in barrier: rows, portfolio series, rollups and
// overlap groups from the per-symbol results.
func (s *Service) aggregate(report *models.PerformanceReport, model *models.PortfolioModel, symbols []string, days []time.Time, results map[string]*symbolResult, asOf time.Time) {
	portfolioMV := make([]float64, len(days))
	portfolioCF := make([]float64, len(days))
	portfolioKnown := make([]bool, len(days))

	for _, symbol := range symbols {
		res := results[symbol]
		report.Rows = append(report.Rows, res.row)
		if res.missing {
			report.MissingPrices = append(report.MissingPrices, symbol)
		}

		tl := res.timeline
		points := make([]models.SymbolPoint, tl.Len())
		for i := range days {
			points[i] = models.SymbolPoint{
				Date:        tl.Days[i],
				Shares:      tl.Shares[i],
				Price:       tl.Price[i],
				MarketValue: tl.MarketValue[i],
			}
			portfolioMV[i] += tl.MarketValue[i]
			portfolioCF[i] += tl.CashFlow[i]
			if tl.Price[i] != nil {
				portfolioKnown[i] = true
			}
		}
		report.SymbolHistories[symbol] = points

		ledger := model.Ledgers[symbol]
		for _, cf := range ledger.CashFlows {
			if !cf.External {
				continue
			}
			report.CashFlows = append(report.CashFlows, models.ReportedCashFlow{
				Date: cf.Date, Symbol: symbol, Amount: cf.Amount, Type: cf.Type,
			})
		}
		for _, d := range ledger.DividendEvents {
			report.Dividends = append(report.Dividends, models.ReportedDividend{
				Date: d.Date, Symbol: symbol, Amount: d.Amount,
				SharesHeldBeforeEvent: d.SharesHeldBeforeEvent, Reinvested: d.Reinvested,
			})
		}
	}

	sort.Slice(report.CashFlows, func(i, j int) bool {
		a, b := report.CashFlows[i], report.CashFlows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Symbol < b.Symbol
	})
	sort.Slice(report.Dividends, func(i, j int) bool {
		a, b := report.Dividends[i], report.Dividends[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Symbol < b.Symbol
	})

	report.OverlapGroups = overlapGroups(report.Rows)
	report.Overall = buildOverall(report.Rows)

	// Portfolio-level TWR/XIRR over the summed series.
	nav, units := unitize(portfolioCF, portfolioMV, portfolioKnown)
	for _, k := range portfolioKnown {
		if k {
			report.Overall.TWRPct = timeWeightedReturn(nav, units)
			break
		}
	}

	var allFlows []datedFlow
	for _, symbol := range symbols {
		allFlows = append(allFlows, externalFlows(model.Ledgers[symbol])...)
	}
	totalMV := 0.0
	for _, r := range report.Rows {
		totalMV += r.MarketValue
	}
	report.Overall.XIRRPct = xirrPct(allFlows, totalMV, asOf)

	report.History.Series = make([]models.PortfolioPoint, len(days))
	for i, day := range days {
		report.History.Series[i] = models.PortfolioPoint{
			Date:        day,
			MarketValue: portfolioMV[i],
			CashFlow:    portfolioCF[i],
			NAV:         nav[i],
			Units:       units[i],
		}
	}
}
