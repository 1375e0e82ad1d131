package models

import "time"

// DailyTimeline is the calendar-day aligned valuation series for one symbol.
// It is rebuilt per request and discarded after response assembly.
// All slices share the length of Days.
type DailyTimeline struct {
	Symbol string
	Days   []time.Time

	Shares      []float64
	CashFlow    []float64  // external flows only, summed per day
	Price       []*float64 // nil until an observation exists in range
	MarketValue []float64

	// Unitization output: synthetic NAV-per-unit series and unit counts.
	NAV   []float64
	Units []float64
}

// Len returns the number of days in the index.
func (t *DailyTimeline) Len() int {
	return len(t.Days)
}

// LastKnownValue returns the most recent day with a priced market value.
func (t *DailyTimeline) LastKnownValue() (float64, bool) {
	for i := t.Len() - 1; i >= 0; i-- {
		if t.Price[i] != nil {
			return t.MarketValue[i], true
		}
	}
	return 0, false
}
