package ledger

import (
	"math"
	"testing"

	"github.com/bobmcallan/totalreturn/internal/models"
)

func TestBuildEventSigns(t *testing.T) {
	cases := []struct {
		action     models.EventAction
		qty, amt   float64
		wantShares float64
		wantCash   float64
		wantDiv    float64
	}{
		{models.ActionBuy, 10, 100, 10, -100, 0},
		{models.ActionSell, 3, 45, -3, 45, 0},
		{models.ActionDividend, 0, 5, 0, 5, 5},
		{models.ActionReinvest, 1, 5, 1, 0, 5},
	}
	for _, c := range cases {
		e := buildEvent(eventCandidate{Action: c.action, Quantity: c.qty, Amount: c.amt})
		if e.SharesDelta != c.wantShares || e.CashFlow != c.wantCash || e.DividendAmount != c.wantDiv {
			t.Errorf("%s: got (shares %v, cash %v, div %v), want (%v, %v, %v)",
				c.action, e.SharesDelta, e.CashFlow, e.DividendAmount, c.wantShares, c.wantCash, c.wantDiv)
		}
	}
}

func TestCurrentSharesEqualsCumulativeDelta(t *testing.T) {
	svc := newTestService()
	rows := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "100", "Amount ($)": "(1000.00)"},
		{"Run Date": "02/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "50", "Amount ($)": "600.00"},
		{"Run Date": "03/02/2024", "Action": "YOU SOLD", "Symbol": "VTI", "Quantity": "30", "Amount ($)": "450.00"},
		{"Run Date": "04/02/2024", "Action": "REINVESTMENT", "Symbol": "VTI", "Quantity": "2", "Amount ($)": "44.00"},
	}
	model := svc.BuildPortfolioModel(rows, nil)
	l := model.Ledgers["VTI"]

	sum := 0.0
	for _, e := range l.Events {
		sum += e.SharesDelta
	}
	if math.Abs(l.CurrentShares-sum) > 1e-12 {
		t.Errorf("CurrentShares %v != cumulative delta %v", l.CurrentShares, sum)
	}
	if l.CurrentShares != 122 {
		t.Errorf("CurrentShares = %v, want 122", l.CurrentShares)
	}
}

func TestEndToEndBuySellTotals(t *testing.T) {
	// buy 100sh@$10 (t0), buy 50sh@$12 (t1), sell 30sh@$15 (t2)
	svc := newTestService()
	rows := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "ACME", "Quantity": "100", "Amount ($)": "(1,000.00)"},
		{"Run Date": "02/02/2024", "Action": "YOU BOUGHT", "Symbol": "ACME", "Quantity": "50", "Amount ($)": "(600.00)"},
		{"Run Date": "03/02/2024", "Action": "YOU SOLD", "Symbol": "ACME", "Quantity": "30", "Amount ($)": "450.00"},
	}
	model := svc.BuildPortfolioModel(rows, nil)
	l := model.Ledgers["ACME"]

	if l.CurrentShares != 120 {
		t.Errorf("CurrentShares = %v, want 120", l.CurrentShares)
	}
	if l.TotalContributions != 1600 {
		t.Errorf("TotalContributions = %v, want 1600", l.TotalContributions)
	}
	if l.TotalWithdrawals != 450 {
		t.Errorf("TotalWithdrawals = %v, want 450", l.TotalWithdrawals)
	}
	if l.NetInvestedCash != 1150 {
		t.Errorf("NetInvestedCash = %v, want 1150", l.NetInvestedCash)
	}
	if l.Closed {
		t.Error("position with 120 shares must not be closed")
	}
}

func TestSignConventionIgnoresSourceSigns(t *testing.T) {
	// Exports disagree on signs; the magnitudes must win regardless.
	svc := newTestService()
	positiveAmt := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "10", "Amount ($)": "250.00"},
	}
	negativeAmt := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "-10", "Amount ($)": "(250.00)"},
	}
	a := svc.BuildPortfolioModel(positiveAmt, nil).Ledgers["VTI"]
	b := svc.BuildPortfolioModel(negativeAmt, nil).Ledgers["VTI"]

	if a.CurrentShares != 10 || b.CurrentShares != 10 {
		t.Errorf("shares: got %v and %v, want 10 for both", a.CurrentShares, b.CurrentShares)
	}
	if a.NetInvestedCash != 250 || b.NetInvestedCash != 250 {
		t.Errorf("net invested: got %v and %v, want 250 for both", a.NetInvestedCash, b.NetInvestedCash)
	}
}

func TestDividendReinvestSameDayOrdering(t *testing.T) {
	// 10 shares held, $5 dividend same day fully reinvested into 1 new
	// share: the dividend is measured against the pre-reinvestment
	// position, and the day ends with 11 shares.
	svc := newTestService()
	rows := []models.RawRecord{
		{"Run Date": "03/01/2024", "Action": "REINVESTMENT", "Symbol": "SCHD", "Quantity": "1", "Amount ($)": "5.00"},
		{"Run Date": "03/01/2024", "Action": "DIVIDEND RECEIVED", "Symbol": "SCHD", "Amount ($)": "5.00"},
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "SCHD", "Quantity": "10", "Amount ($)": "(750.00)"},
	}
	model := svc.BuildPortfolioModel(rows, nil)
	l := model.Ledgers["SCHD"]

	if len(l.DividendEvents) != 2 {
		t.Fatalf("DividendEvents = %d, want 2 (cash dividend + reinvestment record)", len(l.DividendEvents))
	}
	for _, de := range l.DividendEvents {
		if de.SharesHeldBeforeEvent != 10 {
			t.Errorf("SharesHeldBeforeEvent = %v, want 10 (reinvested=%v)", de.SharesHeldBeforeEvent, de.Reinvested)
		}
	}
	if l.CurrentShares != 11 {
		t.Errorf("end-of-day shares = %v, want 11", l.CurrentShares)
	}
	if l.DividendsReceived != 5 {
		t.Errorf("DividendsReceived = %v, want 5 (cash dividend only)", l.DividendsReceived)
	}
}

func TestEventSortOrder(t *testing.T) {
	events := []models.NormalizedEvent{
		{Action: models.ActionSell, Sequence: 0},
		{Action: models.ActionBuy, Sequence: 1},
		{Action: models.ActionReinvest, Sequence: 2},
		{Action: models.ActionDividend, Sequence: 3},
	}
	sortEvents(events)
	want := []models.EventAction{models.ActionDividend, models.ActionReinvest, models.ActionBuy, models.ActionSell}
	for i, e := range events {
		if e.Action != want[i] {
			t.Errorf("position %d: got %s, want %s", i, e.Action, want[i])
		}
	}
}

func TestClosedWhenFullySold(t *testing.T) {
	svc := newTestService()
	rows := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "XYZ", "Quantity": "10", "Amount ($)": "(100.00)"},
		{"Run Date": "02/02/2024", "Action": "YOU SOLD", "Symbol": "XYZ", "Quantity": "10", "Amount ($)": "120.00"},
	}
	l := svc.BuildPortfolioModel(rows, nil).Ledgers["XYZ"]
	if !l.Closed {
		t.Error("fully-sold position must be closed")
	}
	if l.CurrentShares != 0 {
		t.Errorf("CurrentShares = %v, want 0", l.CurrentShares)
	}
}
