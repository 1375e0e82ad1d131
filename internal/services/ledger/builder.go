package ledger

import (
	"sort"
	"time"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// sharesEpsilon treats residual fractional dust as a closed position.
const sharesEpsilon = 1e-9

// buildEvent signs a candidate's magnitudes by action class:
//
//	buy       sharesDelta=+|qty|  cashFlow=-|amt|
//	sell      sharesDelta=-|qty|  cashFlow=+|amt|
//	dividend  sharesDelta=0       cashFlow=+|amt|  dividendAmount=|amt|
//	reinvest  sharesDelta=+|qty|  cashFlow=0       dividendAmount=|amt| (internal)
//
// Cash flow follows the external-flow convention: negative is money the
// investor put in, positive is money that came back out.
func buildEvent(c eventCandidate) models.NormalizedEvent {
	e := models.NormalizedEvent{
		Date:        c.Date,
		Action:      c.Action,
		Symbol:      c.Symbol,
		Sequence:    c.Sequence,
		Description: c.Description,
	}
	switch c.Action {
	case models.ActionBuy:
		e.SharesDelta = c.Quantity
		e.CashFlow = -c.Amount
	case models.ActionSell:
		e.SharesDelta = -c.Quantity
		e.CashFlow = c.Amount
	case models.ActionDividend:
		e.CashFlow = c.Amount
		e.DividendAmount = c.Amount
	case models.ActionReinvest:
		e.SharesDelta = c.Quantity
		e.DividendAmount = c.Amount
		e.Reinvested = true
	}
	return e
}

// sortEvents orders events by date, then action priority
// (dividend < reinvest < buy < sell < other), then original input order.
func sortEvents(events []models.NormalizedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		pi, pj := events[i].Action.SortPriority(), events[j].Action.SortPriority()
		if pi != pj {
			return pi < pj
		}
		return events[i].Sequence < events[j].Sequence
	})
}

// buildLedgers groups candidates per symbol and folds each symbol's sorted
// events into a ledger in a single forward pass: running share balance,
// flows, dividend events and totals.
func buildLedgers(candidates []eventCandidate) map[string]*models.SecurityLedger {
	bySymbol := make(map[string][]models.NormalizedEvent)
	for _, c := range candidates {
		bySymbol[c.Symbol] = append(bySymbol[c.Symbol], buildEvent(c))
	}

	ledgers := make(map[string]*models.SecurityLedger, len(bySymbol))
	for symbol, events := range bySymbol {
		sortEvents(events)
		ledgers[symbol] = foldEvents(symbol, events)
	}
	return ledgers
}

// foldEvents derives a ledger from date-sorted events.
func foldEvents(symbol string, events []models.NormalizedEvent) *models.SecurityLedger {
	l := &models.SecurityLedger{
		Symbol: symbol,
		Events: events,
	}

	shares := 0.0
	for _, e := range events {
		if l.Description == "" && e.Description != "" {
			l.Description = e.Description
		}

		// Dividends are measured against the position held before the
		// day's own share delta, so reinvested shares don't count toward
		// the balance that earned them.
		if e.DividendAmount > 0 {
			l.DividendEvents = append(l.DividendEvents, models.DividendEvent{
				Date:                  e.Date,
				Amount:                e.DividendAmount,
				SharesHeldBeforeEvent: shares,
				Reinvested:            e.Reinvested,
			})
		}

		shares += e.SharesDelta
		appendShareSnapshot(l, e.Date, shares)

		switch e.Action {
		case models.ActionBuy:
			l.TotalContributions += -e.CashFlow
			l.CashFlows = append(l.CashFlows, models.CashFlow{Date: e.Date, Amount: e.CashFlow, Type: e.Action, External: true})
		case models.ActionSell:
			l.TotalWithdrawals += e.CashFlow
			l.CashFlows = append(l.CashFlows, models.CashFlow{Date: e.Date, Amount: e.CashFlow, Type: e.Action, External: true})
		case models.ActionDividend:
			// Cash dividends leave the position: an external flow and
			// part of the dividend income total.
			l.DividendsReceived += e.DividendAmount
			l.CashFlows = append(l.CashFlows, models.CashFlow{Date: e.Date, Amount: e.CashFlow, Type: e.Action, External: true})
		case models.ActionReinvest:
			// Reinvested value stays inside the position; the flow is
			// internal and carries no cash.
			l.CashFlows = append(l.CashFlows, models.CashFlow{Date: e.Date, Amount: 0, Type: e.Action, External: false})
		}

		d := e.Date
		if l.StartDate == nil || d.Before(*l.StartDate) {
			start := d
			l.StartDate = &start
		}
		if l.EndDate == nil || d.After(*l.EndDate) {
			end := d
			l.EndDate = &end
		}
	}

	l.NetInvestedCash = l.TotalContributions - l.TotalWithdrawals
	l.CurrentShares = shares
	l.Closed = shares <= sharesEpsilon
	l.EffectiveCostBasis = l.NetInvestedCash
	return l
}

// appendShareSnapshot records the end-of-event balance, collapsing multiple
// same-day events onto the day's final balance.
func appendShareSnapshot(l *models.SecurityLedger, date time.Time, shares float64) {
	n := len(l.ShareHistory)
	if n > 0 && l.ShareHistory[n-1].Date.Equal(date) {
		l.ShareHistory[n-1].SharesAfter = shares
		return
	}
	l.ShareHistory = append(l.ShareHistory, models.ShareSnapshot{Date: date, SharesAfter: shares})
}
