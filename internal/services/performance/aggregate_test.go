package performance

import (
	"testing"

	"github.com/bobmcallan/totalreturn/internal/models"
)

func TestROCFlag(t *testing.T) {
	base := func(divs float64) *models.SecurityLedger {
		return &models.SecurityLedger{
			Symbol:             "AGNC",
			EffectiveCostBasis: 1000,
			DividendsReceived:  divs,
		}
	}

	// Gain = 600 - 1000 = -400; dividends 850 >= 0.8 * 1000.
	row := buildSymbolRow(base(850), nil, 600)
	if !row.ROCFlag {
		t.Error("dividends 850 on basis 1000 with mv 600 must flag")
	}

	row = buildSymbolRow(base(700), nil, 600)
	if row.ROCFlag {
		t.Error("dividends 700 fall under the 0.8 threshold, must not flag")
	}

	// Winning positions never flag no matter the income.
	row = buildSymbolRow(base(850), nil, 1200)
	if row.ROCFlag {
		t.Error("positive market gain must not flag")
	}
}

func TestPercentagesUndeterminedWithoutBasis(t *testing.T) {
	ledger := &models.SecurityLedger{Symbol: "GIFT", DividendsReceived: 50}
	row := buildSymbolRow(ledger, nil, 500)

	if row.MarketGainPct != nil || row.DividendReturnPct != nil || row.TotalReturnPct != nil {
		t.Error("percentages must stay nil without a positive cost basis")
	}
	if row.TotalReturn != 550 {
		t.Errorf("TotalReturn = %v, want 550 (dollar figures still computed)", row.TotalReturn)
	}
}

func TestSymbolRowMetrics(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol:             "VTI",
		CurrentShares:      10,
		EffectiveCostBasis: 1000,
		NetInvestedCash:    1000,
		DividendsReceived:  20,
	}
	row := buildSymbolRow(ledger, f64(150), 1500)

	if row.MarketGain != 500 {
		t.Errorf("MarketGain = %v, want 500", row.MarketGain)
	}
	if row.MarketGainPct == nil || *row.MarketGainPct != 50 {
		t.Errorf("MarketGainPct = %v, want 50", row.MarketGainPct)
	}
	if row.DividendReturnPct == nil || *row.DividendReturnPct != 2 {
		t.Errorf("DividendReturnPct = %v, want 2", row.DividendReturnPct)
	}
	if row.TotalReturn != 520 {
		t.Errorf("TotalReturn = %v, want 520", row.TotalReturn)
	}
	if row.TotalReturnPct == nil || *row.TotalReturnPct != 52 {
		t.Errorf("TotalReturnPct = %v, want 52", row.TotalReturnPct)
	}
}

func TestOverallSplitsOpenAndLifetime(t *testing.T) {
	rows := []models.SymbolMetrics{
		{Symbol: "VTI", MarketValue: 1500, EffectiveCostBasis: 1000, DividendsReceived: 20, TotalReturn: 520},
		{Symbol: "OLD", MarketValue: 0, EffectiveCostBasis: 800, DividendsReceived: 100, TotalReturn: 300, Closed: true},
	}
	overall := buildOverall(rows)

	if overall.OpenPositions != 1 || overall.ClosedPositions != 1 {
		t.Errorf("open/closed = %d/%d, want 1/1", overall.OpenPositions, overall.ClosedPositions)
	}
	if overall.MarketValue != 1500 || overall.Invested != 1000 || overall.DividendsReceived != 20 {
		t.Errorf("point-in-time rollup must span open positions only: mv=%v invested=%v divs=%v",
			overall.MarketValue, overall.Invested, overall.DividendsReceived)
	}
	if overall.TotalReturn != 520 {
		t.Errorf("TotalReturn = %v, want 520", overall.TotalReturn)
	}
	if overall.TotalReturnPct == nil || *overall.TotalReturnPct != 52 {
		t.Errorf("TotalReturnPct = %v, want 52", overall.TotalReturnPct)
	}
	if overall.LifetimeTotalReturn != 820 {
		t.Errorf("LifetimeTotalReturn = %v, want 820 (realized gains preserved)", overall.LifetimeTotalReturn)
	}
	if overall.LifetimeDividends != 120 {
		t.Errorf("LifetimeDividends = %v, want 120", overall.LifetimeDividends)
	}
}

func TestExposureTagsAndOverlap(t *testing.T) {
	tags := exposureTags("VOO", "VANGUARD S&P 500 ETF")
	if len(tags) != 1 || tags[0] != "sp500" {
		t.Errorf("VOO tags = %v, want [sp500]", tags)
	}
	if tags := exposureTags("FNILX", "FIDELITY ZERO LARGE CAP (TRACKS S&P 500)"); len(tags) == 0 {
		t.Error("keyword match on description must tag unknown tickers")
	}
	if tags := exposureTags("AAPL", "APPLE INC"); len(tags) != 0 {
		t.Errorf("AAPL tags = %v, want none", tags)
	}

	rows := []models.SymbolMetrics{
		{Symbol: "SPY", ExposureTags: []string{"sp500"}},
		{Symbol: "VOO", ExposureTags: []string{"sp500"}},
		{Symbol: "SCHD", ExposureTags: []string{"dividend-income"}},
	}
	groups := overlapGroups(rows)
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want exactly one", groups)
	}
	if groups[0].Tag != "sp500" || len(groups[0].Symbols) != 2 {
		t.Errorf("group = %+v, want sp500 with SPY+VOO", groups[0])
	}
}
