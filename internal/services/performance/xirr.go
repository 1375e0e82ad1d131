package performance

import (
	"math"
	"sort"
	"time"
)

// datedFlow is one cash flow for XIRR. Negative = money invested,
// positive = money returned.
type datedFlow struct {
	date   time.Time
	amount float64
}

// xirrPct computes the annualised money-weighted return (XIRR) over the
// flows plus a terminal flow equal to the current market value on asOf.
// Flows landing on the same day are aggregated. Returns nil when no
// solvable rate exists: a flow set without both a negative and a positive
// flow is monotonic and has no root.
func xirrPct(flows []datedFlow, terminalValue float64, asOf time.Time) *float64 {
	merged := mergeFlowsByDay(flows)
	if terminalValue > 0 {
		merged = append(merged, datedFlow{date: truncateDay(asOf), amount: terminalValue})
		merged = mergeFlowsByDay(merged)
	}
	if len(merged) < 2 {
		return nil
	}

	hasNeg, hasPos := false, false
	for _, f := range merged {
		if f.amount < 0 {
			hasNeg = true
		}
		if f.amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return nil
	}

	rate, ok := bisectRate(merged)
	if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	pct := rate * 100
	return &pct
}

func mergeFlowsByDay(flows []datedFlow) []datedFlow {
	byDay := make(map[time.Time]float64, len(flows))
	for _, f := range flows {
		byDay[truncateDay(f.date)] += f.amount
	}
	merged := make([]datedFlow, 0, len(byDay))
	for d, amt := range byDay {
		if amt == 0 {
			continue
		}
		merged = append(merged, datedFlow{date: d, amount: amt})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].date.Before(merged[j].date) })
	return merged
}

// bisectRate solves sum(flow_i / (1+r)^(days_i/365.25)) = 0 by bisection.
// The initial bracket is [-0.999, 10]; while its endpoints agree in sign
// the upper bound doubles (at most 10 times, capped at 1e6). A bracket
// that never sign-changes has no findable root.
func bisectRate(flows []datedFlow) (float64, bool) {
	const (
		maxExpansions = 10
		maxIter       = 100
		tol           = 1e-6
		upperCap      = 1e6
	)

	base := flows[0].date
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.date.Sub(base).Hours() / 24 / 365.25
	}

	npvAt := func(rate float64) float64 {
		sum := 0.0
		for i, f := range flows {
			sum += f.amount / math.Pow(1+rate, years[i])
		}
		return sum
	}

	lo, hi := -0.999, 10.0
	npvLo := npvAt(lo)
	npvHi := npvAt(hi)

	for i := 0; i < maxExpansions && npvLo*npvHi > 0 && hi < upperCap; i++ {
		hi *= 2
		if hi > upperCap {
			hi = upperCap
		}
		npvHi = npvAt(hi)
	}
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return 0, false
	}

	for i := 0; i < maxIter; i++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return 0, false
		}
		if math.Abs(npvMid) < tol {
			return mid, true
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	return (lo + hi) / 2, true
}
