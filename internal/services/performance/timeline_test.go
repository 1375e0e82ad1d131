package performance

import (
	"testing"

	"github.com/bobmcallan/totalreturn/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestDayIndexInclusive(t *testing.T) {
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 5))
	if len(days) != 5 {
		t.Fatalf("len = %d, want 5", len(days))
	}
	if !days[0].Equal(day(2024, 1, 1)) || !days[4].Equal(day(2024, 1, 5)) {
		t.Errorf("bounds = %v..%v", days[0], days[4])
	}
}

func TestSharesStepFunction(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol: "VTI",
		ShareHistory: []models.ShareSnapshot{
			{Date: day(2023, 12, 1), SharesAfter: 5}, // before index start
			{Date: day(2024, 1, 3), SharesAfter: 12},
			{Date: day(2024, 2, 1), SharesAfter: 99}, // past index end
		},
	}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 5))
	tl := buildTimeline(ledger, days, nil, nil)

	want := []float64{5, 5, 12, 12, 12}
	for i, w := range want {
		if tl.Shares[i] != w {
			t.Errorf("shares[%d] = %v, want %v", i, tl.Shares[i], w)
		}
	}
}

func TestHoldingsOnlySharesHeldConstant(t *testing.T) {
	ledger := &models.SecurityLedger{Symbol: "QQQ", CurrentShares: 7}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 3))
	tl := buildTimeline(ledger, days, nil, nil)
	for i := range days {
		if tl.Shares[i] != 7 {
			t.Errorf("shares[%d] = %v, want 7", i, tl.Shares[i])
		}
	}
}

func TestPriceForwardAndBackFill(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol:       "VTI",
		ShareHistory: []models.ShareSnapshot{{Date: day(2024, 1, 1), SharesAfter: 10}},
	}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 5))
	bars := []models.PriceBar{
		{Date: day(2024, 1, 2), Close: 100},
		{Date: day(2024, 1, 4), Close: 110},
	}
	tl := buildTimeline(ledger, days, bars, nil)

	want := []float64{100, 100, 100, 110, 110} // back-fill, observed, forward-fill
	for i, w := range want {
		if tl.Price[i] == nil {
			t.Fatalf("price[%d] is nil", i)
		}
		if *tl.Price[i] != w {
			t.Errorf("price[%d] = %v, want %v", i, *tl.Price[i], w)
		}
	}
	if tl.MarketValue[4] != 1100 {
		t.Errorf("marketValue[4] = %v, want 1100", tl.MarketValue[4])
	}
}

func TestLiveQuoteSeedsFinalDay(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol:       "VTI",
		ShareHistory: []models.ShareSnapshot{{Date: day(2024, 1, 1), SharesAfter: 10}},
	}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 3))
	tl := buildTimeline(ledger, days, nil, f64(15))

	// No history: the live quote back-fills the whole index.
	for i := range days {
		if tl.Price[i] == nil || *tl.Price[i] != 15 {
			t.Errorf("price[%d] = %v, want 15", i, tl.Price[i])
		}
	}
}

func TestNoObservationsLeavesPricesNil(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol:       "XYZ",
		ShareHistory: []models.ShareSnapshot{{Date: day(2024, 1, 1), SharesAfter: 10}},
	}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 3))
	tl := buildTimeline(ledger, days, nil, nil)
	for i := range days {
		if tl.Price[i] != nil {
			t.Errorf("price[%d] = %v, want nil", i, *tl.Price[i])
		}
		if tl.MarketValue[i] != 0 {
			t.Errorf("marketValue[%d] = %v, want 0", i, tl.MarketValue[i])
		}
	}
	if _, ok := tl.LastKnownValue(); ok {
		t.Error("LastKnownValue must report no priced day")
	}
}

func TestExternalFlowsSummedPerDay(t *testing.T) {
	ledger := &models.SecurityLedger{
		Symbol:       "VTI",
		ShareHistory: []models.ShareSnapshot{{Date: day(2024, 1, 2), SharesAfter: 10}},
		CashFlows: []models.CashFlow{
			{Date: day(2024, 1, 2), Amount: -100, Type: models.ActionBuy, External: true},
			{Date: day(2024, 1, 2), Amount: -50, Type: models.ActionBuy, External: true},
			{Date: day(2024, 1, 3), Amount: 0, Type: models.ActionReinvest, External: false},
			{Date: day(2024, 1, 4), Amount: 30, Type: models.ActionSell, External: true},
		},
	}
	days := dayIndex(day(2024, 1, 1), day(2024, 1, 5))
	tl := buildTimeline(ledger, days, nil, nil)

	want := []float64{0, -150, 0, 30, 0}
	for i, w := range want {
		if tl.CashFlow[i] != w {
			t.Errorf("cashflow[%d] = %v, want %v", i, tl.CashFlow[i], w)
		}
	}
}
