package models

import (
	"sort"
	"time"
)

// EventAction classifies a normalized activity row.
type EventAction string

const (
	ActionBuy      EventAction = "buy"
	ActionSell     EventAction = "sell"
	ActionDividend EventAction = "dividend"
	ActionReinvest EventAction = "reinvest"
	ActionOther    EventAction = "other"
)

// SortPriority orders same-day events: dividends are recorded against the
// position held before any of the day's share movement, so they sort first;
// reinvestments restore their shares before buys and sells settle.
func (a EventAction) SortPriority() int {
	switch a {
	case ActionDividend:
		return 0
	case ActionReinvest:
		return 1
	case ActionBuy:
		return 2
	case ActionSell:
		return 3
	default:
		return 4
	}
}

// NormalizedEvent is one canonical ledger event derived from a raw row.
// SharesDelta and CashFlow are signed by action class, not by whatever sign
// convention the source export used. CashFlow follows the external-flow
// convention: negative = money contributed, positive = money returned.
type NormalizedEvent struct {
	Date           time.Time   `json:"date"`
	Action         EventAction `json:"action"`
	Symbol         string      `json:"symbol"`
	SharesDelta    float64     `json:"shares_delta"`
	CashFlow       float64     `json:"cash_flow"`
	DividendAmount float64     `json:"dividend_amount"`
	Reinvested     bool        `json:"reinvested"`
	Sequence       int         `json:"sequence"` // original input order, sort tie-break
	Description    string      `json:"description,omitempty"`
}

// ShareSnapshot records the running share balance after an event date.
type ShareSnapshot struct {
	Date        time.Time `json:"date"`
	SharesAfter float64   `json:"shares_after"`
}

// CashFlow is one dated flow in a ledger. External flows cross the
// portfolio boundary (buys, sells, cash dividends); reinvestments are
// internal and excluded from return math on cash timing.
type CashFlow struct {
	Date     time.Time   `json:"date"`
	Amount   float64     `json:"amount"`
	Type     EventAction `json:"type"`
	External bool        `json:"external"`
}

// DividendEvent records a dividend against the position that earned it.
// SharesHeldBeforeEvent is the balance immediately before the day's own
// share delta, so reinvested shares never inflate the yield base.
type DividendEvent struct {
	Date                  time.Time `json:"date"`
	Amount                float64   `json:"amount"`
	SharesHeldBeforeEvent float64   `json:"shares_held_before_event"`
	Reinvested            bool      `json:"reinvested"`
}

// SecurityLedger is the per-symbol cash-flow ledger derived from activity
// rows and reconciled against authoritative holdings.
type SecurityLedger struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`

	Events         []NormalizedEvent `json:"events"`
	ShareHistory   []ShareSnapshot   `json:"share_history"`
	CashFlows      []CashFlow        `json:"cash_flows"`
	DividendEvents []DividendEvent   `json:"dividend_events"`

	TotalContributions float64 `json:"total_contributions"`
	TotalWithdrawals   float64 `json:"total_withdrawals"`
	NetInvestedCash    float64 `json:"net_invested_cash"` // contributions - withdrawals
	DividendsReceived  float64 `json:"dividends_received"`

	CurrentShares float64    `json:"current_shares"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Closed        bool       `json:"closed"`

	// PositionCostBasis comes from a holdings row when present; zero means
	// the export omitted it. EffectiveCostBasis falls back to net invested
	// cash so in-kind transfers still produce usable return percentages.
	PositionCostBasis  float64 `json:"position_cost_basis"`
	EffectiveCostBasis float64 `json:"effective_cost_basis"`

	// HasHolding marks symbols backed by an authoritative holdings row;
	// such a row overrides activity-derived share counts and open state.
	HasHolding bool `json:"has_holding"`
}

// HasEvents reports whether any activity survived normalization.
func (l *SecurityLedger) HasEvents() bool {
	return len(l.Events) > 0
}

// PortfolioModel is the reconciled set of ledgers for one request.
// StartDate/EndDate span only symbols with at least one event;
// holdings-only symbols never extend the range.
type PortfolioModel struct {
	Ledgers   map[string]*SecurityLedger `json:"ledgers"`
	StartDate *time.Time                 `json:"start_date,omitempty"`
	EndDate   *time.Time                 `json:"end_date,omitempty"`
}

// Symbols returns the ledger symbols in sorted order.
func (m *PortfolioModel) Symbols() []string {
	out := make([]string, 0, len(m.Ledgers))
	for s := range m.Ledgers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
