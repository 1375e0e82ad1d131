package models

import "time"

// SymbolMetrics is the per-security row of a performance report.
// Pointer-valued metrics are nil when undetermined (no cost basis, no
// valuation bracket, no sign-changing flow set) rather than zero or NaN.
type SymbolMetrics struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`

	Shares             float64  `json:"shares"`
	CurrentPrice       *float64 `json:"current_price"`
	MarketValue        float64  `json:"market_value"`
	EffectiveCostBasis float64  `json:"effective_cost_basis"`
	NetInvestedCash    float64  `json:"net_invested_cash"`
	DividendsReceived  float64  `json:"dividends_received"`

	MarketGain        float64  `json:"market_gain"`
	MarketGainPct     *float64 `json:"market_gain_pct"`
	DividendReturnPct *float64 `json:"dividend_return_pct"`
	TotalReturn       float64  `json:"total_return"`
	TotalReturnPct    *float64 `json:"total_return_pct"`

	TWRPct  *float64 `json:"twr_pct"`
	XIRRPct *float64 `json:"xirr_pct"`

	Closed bool `json:"closed"`

	// ROCFlag marks positions where dividend income likely substitutes for
	// underlying price loss (return of capital heuristic).
	ROCFlag bool `json:"roc_flag"`

	ExposureTags []string `json:"exposure_tags,omitempty"`
}

// OverallMetrics is the whole-portfolio rollup. Point-in-time figures span
// open positions only; the lifetime figures keep realized gains and
// dividends from fully-closed positions.
type OverallMetrics struct {
	MarketValue       float64  `json:"market_value"`
	Invested          float64  `json:"invested"`
	DividendsReceived float64  `json:"dividends_received"`
	TotalReturn       float64  `json:"total_return"`
	TotalReturnPct    *float64 `json:"total_return_pct"`

	LifetimeTotalReturn float64 `json:"lifetime_total_return"`
	LifetimeDividends   float64 `json:"lifetime_dividends"`

	TWRPct  *float64 `json:"twr_pct"`
	XIRRPct *float64 `json:"xirr_pct"`

	OpenPositions   int `json:"open_positions"`
	ClosedPositions int `json:"closed_positions"`
}

// PortfolioPoint is one day of the portfolio-level valuation series.
type PortfolioPoint struct {
	Date        time.Time `json:"date"`
	MarketValue float64   `json:"market_value"`
	CashFlow    float64   `json:"cash_flow"`
	NAV         float64   `json:"nav"`
	Units       float64   `json:"units"`
}

// SymbolPoint is one day of a single symbol's valuation series.
type SymbolPoint struct {
	Date        time.Time `json:"date"`
	Shares      float64   `json:"shares"`
	Price       *float64  `json:"price"`
	MarketValue float64   `json:"market_value"`
}

// ReportedCashFlow is an external flow surfaced in the report, tagged with
// its symbol.
type ReportedCashFlow struct {
	Date   time.Time   `json:"date"`
	Symbol string      `json:"symbol"`
	Amount float64     `json:"amount"`
	Type   EventAction `json:"type"`
}

// ReportedDividend is a dividend event surfaced in the report.
type ReportedDividend struct {
	Date                  time.Time `json:"date"`
	Symbol                string    `json:"symbol"`
	Amount                float64   `json:"amount"`
	SharesHeldBeforeEvent float64   `json:"shares_held_before_event"`
	Reinvested            bool      `json:"reinvested"`
}

// OverlapGroup is a set of 2+ symbols sharing an exposure tag, flagged as
// potentially redundant holdings.
type OverlapGroup struct {
	Tag     string   `json:"tag"`
	Label   string   `json:"label"`
	Symbols []string `json:"symbols"`
}

// PortfolioHistory wraps the portfolio-level daily series.
type PortfolioHistory struct {
	Series []PortfolioPoint `json:"series"`
}

// PerformanceReport is the full output of a performance computation.
type PerformanceReport struct {
	Rows            []SymbolMetrics          `json:"rows"`
	Overall         OverallMetrics           `json:"overall"`
	History         PortfolioHistory         `json:"history"`
	SymbolHistories map[string][]SymbolPoint `json:"symbol_histories"`
	CashFlows       []ReportedCashFlow       `json:"cashflows"`
	Dividends       []ReportedDividend       `json:"dividends"`
	MissingPrices   []string                 `json:"missing_prices"`
	OverlapGroups   []OverlapGroup           `json:"overlap_groups"`
	GeneratedAt     time.Time                `json:"generated_at"`
}
