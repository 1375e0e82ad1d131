package performance

const epsilon = 1e-9

// unitize converts a market-value + cash-flow series into a NAV-per-unit
// series using daily unit accounting: contributions buy units at the
// current unit price, withdrawals redeem them, and the unit price revalues
// to market at the end of each day. This isolates market-driven return
// from cash-timing effects without formal sub-period breakpoints.
//
// valueKnown marks days where marketValue is a real observation rather
// than an unpriced zero; revaluation only happens on those days. All
// slices share one length.
func unitize(cashFlow, marketValue []float64, valueKnown []bool) (nav, units []float64) {
	n := len(cashFlow)
	nav = make([]float64, n)
	units = make([]float64, n)

	unitPrice := 1.0
	unitCount := 0.0

	for i := 0; i < n; i++ {
		cf := cashFlow[i]
		if cf < 0 {
			// Money contributed: buy units at the current price.
			p := unitPrice
			if p < epsilon {
				p = 1
			}
			unitCount += -cf / p
		} else if cf > 0 {
			// Money withdrawn: redeem units, never below zero.
			p := unitPrice
			if p < epsilon {
				p = 1
			}
			unitCount -= cf / p
			if unitCount < 0 {
				unitCount = 0
			}
		}

		if unitCount > epsilon && valueKnown[i] {
			unitPrice = marketValue[i] / unitCount
		}

		nav[i] = unitPrice
		units[i] = unitCount
	}
	return nav, units
}

// timeWeightedReturn locates the first and last day where units and NAV
// are both live and returns nav_last/nav_first - 1 as a percentage.
// Returns nil when no valuation bracket exists.
func timeWeightedReturn(nav, units []float64) *float64 {
	first, last := -1, -1
	for i := range nav {
		if units[i] > epsilon && nav[i] > epsilon {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return nil
	}
	twr := (nav[last]/nav[first] - 1) * 100
	return &twr
}
