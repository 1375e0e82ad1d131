package performance

import (
	"time"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// dayIndex builds the canonical calendar-day index from start to end
// inclusive, both truncated to UTC midnight.
func dayIndex(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// buildTimeline aligns one ledger onto the day index: shares as a step
// function of the share history, external cash flows summed per day, and a
// best-effort price for every day once any observation exists in range.
//
// bars is the historical close series for the symbol (gaps allowed, may be
// empty); livePrice seeds the final index day when the history lacks it.
func buildTimeline(ledger *models.SecurityLedger, days []time.Time, bars []models.PriceBar, livePrice *float64) *models.DailyTimeline {
	n := len(days)
	t := &models.DailyTimeline{
		Symbol:      ledger.Symbol,
		Days:        days,
		Shares:      make([]float64, n),
		CashFlow:    make([]float64, n),
		Price:       make([]*float64, n),
		MarketValue: make([]float64, n),
		NAV:         make([]float64, n),
		Units:       make([]float64, n),
	}
	if n == 0 {
		return t
	}

	fillShares(t, ledger)
	fillCashFlows(t, ledger)
	fillPrices(t, bars, livePrice)

	for i := 0; i < n; i++ {
		if t.Price[i] != nil {
			t.MarketValue[i] = *t.Price[i] * t.Shares[i]
		}
	}
	return t
}

// fillShares walks the share history as a step function over the index.
// History before the first index day collapses onto it; history past the
// end is ignored. A symbol with no history but a nonzero current share
// count (holdings with no activity) holds that count constant across the
// whole index, since the acquisition date is unknown.
func fillShares(t *models.DailyTimeline, ledger *models.SecurityLedger) {
	history := ledger.ShareHistory
	if len(history) == 0 {
		if ledger.CurrentShares != 0 {
			for i := range t.Shares {
				t.Shares[i] = ledger.CurrentShares
			}
		}
		return
	}

	cursor := 0
	shares := 0.0
	for i, day := range t.Days {
		for cursor < len(history) && !truncateDay(history[cursor].Date).After(day) {
			shares = history[cursor].SharesAfter
			cursor++
		}
		t.Shares[i] = shares
	}
}

// fillCashFlows sums external flows per index day. Internal flows
// (reinvestments) never touch the series.
func fillCashFlows(t *models.DailyTimeline, ledger *models.SecurityLedger) {
	byDay := make(map[time.Time]float64)
	for _, cf := range ledger.CashFlows {
		if !cf.External {
			continue
		}
		byDay[truncateDay(cf.Date)] += cf.Amount
	}
	for i, day := range t.Days {
		t.CashFlow[i] = byDay[day]
	}
}

// fillPrices seeds observed closes onto the index, adds the live quote on
// the final day when the history lacks it, forward-fills gaps, then
// back-fills any remaining leading gap.
func fillPrices(t *models.DailyTimeline, bars []models.PriceBar, livePrice *float64) {
	n := t.Len()
	byDay := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		byDay[truncateDay(b.Date)] = b.Close
	}
	for i, day := range t.Days {
		if close, ok := byDay[day]; ok {
			c := close
			t.Price[i] = &c
		}
	}
	if t.Price[n-1] == nil && livePrice != nil {
		p := *livePrice
		t.Price[n-1] = &p
	}

	// Forward-fill.
	var last *float64
	for i := 0; i < n; i++ {
		if t.Price[i] != nil {
			last = t.Price[i]
		} else if last != nil {
			p := *last
			t.Price[i] = &p
		}
	}

	// Back-fill the leading gap from the first observation.
	var first *float64
	for i := 0; i < n; i++ {
		if t.Price[i] != nil {
			first = t.Price[i]
			break
		}
	}
	if first == nil {
		return
	}
	for i := 0; i < n && t.Price[i] == nil; i++ {
		p := *first
		t.Price[i] = &p
	}
}
