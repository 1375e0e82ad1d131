package performance

import (
	"github.com/bobmcallan/totalreturn/internal/models"
)

// rocDividendRatio: dividends covering at least this share of the cost
// basis on a losing position suggest income substituting for capital.
const rocDividendRatio = 0.8

// buildSymbolRow derives the per-symbol metrics from a reconciled ledger
// and its resolved market value. Percentages stay nil without a positive
// cost basis; there is nothing meaningful to divide by.
func buildSymbolRow(ledger *models.SecurityLedger, livePrice *float64, marketValue float64) models.SymbolMetrics {
	row := models.SymbolMetrics{
		Symbol:             ledger.Symbol,
		Description:        ledger.Description,
		Shares:             ledger.CurrentShares,
		CurrentPrice:       livePrice,
		MarketValue:        marketValue,
		EffectiveCostBasis: ledger.EffectiveCostBasis,
		NetInvestedCash:    ledger.NetInvestedCash,
		DividendsReceived:  ledger.DividendsReceived,
		Closed:             ledger.Closed,
		ExposureTags:       exposureTags(ledger.Symbol, ledger.Description),
	}

	basis := ledger.EffectiveCostBasis
	row.MarketGain = marketValue - basis
	row.TotalReturn = marketValue + ledger.DividendsReceived - basis

	if basis > 0 {
		mg := row.MarketGain / basis * 100
		dr := ledger.DividendsReceived / basis * 100
		tr := row.TotalReturn / basis * 100
		row.MarketGainPct = &mg
		row.DividendReturnPct = &dr
		row.TotalReturnPct = &tr
	}

	row.ROCFlag = ledger.DividendsReceived > 0 &&
		basis > 0 &&
		row.MarketGain < 0 &&
		ledger.DividendsReceived >= rocDividendRatio*basis

	return row
}

// buildOverall rolls the rows up. Point-in-time figures span open
// positions only; lifetime figures keep realized gains and dividends from
// fully-closed positions.
func buildOverall(rows []models.SymbolMetrics) models.OverallMetrics {
	var overall models.OverallMetrics

	for _, r := range rows {
		overall.LifetimeTotalReturn += r.TotalReturn
		overall.LifetimeDividends += r.DividendsReceived

		if r.Closed {
			overall.ClosedPositions++
			continue
		}
		overall.OpenPositions++
		overall.MarketValue += r.MarketValue
		overall.Invested += r.EffectiveCostBasis
		overall.DividendsReceived += r.DividendsReceived
	}

	overall.TotalReturn = overall.MarketValue + overall.DividendsReceived - overall.Invested
	if overall.Invested > 0 {
		pct := overall.TotalReturn / overall.Invested * 100
		overall.TotalReturnPct = &pct
	}
	return overall
}
