package ledger

import (
	"reflect"
	"testing"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

func newTestService() *Service {
	return NewService(common.NewSilentLogger())
}

func TestClassifyAction(t *testing.T) {
	cases := []struct {
		text string
		want models.EventAction
	}{
		{"YOU BOUGHT PROSHARES TR", models.ActionBuy},
		{"Buy", models.ActionBuy},
		{"Purchased 10 shares", models.ActionBuy},
		{"YOU SOLD VANGUARD INDEX", models.ActionSell},
		{"Sell", models.ActionSell},
		{"DIVIDEND RECEIVED SCHWAB US DIV EQUITY", models.ActionDividend},
		{"Qualified Dividend", models.ActionDividend},
		{"REINVESTMENT SCHWAB US DIV EQUITY", models.ActionReinvest},
		{"JOURNALED SHARES", models.ActionOther},
		{"", models.ActionOther},
		// Priority: dividend beats reinvest when both keywords appear.
		{"DIVIDEND REINVESTMENT", models.ActionDividend},
		// Priority: sell beats buy.
		{"SOLD TO BUY", models.ActionSell},
	}
	for _, c := range cases {
		if got := classifyAction(c.text); got != c.want {
			t.Errorf("classifyAction(%q) = %s, want %s", c.text, got, c.want)
		}
	}
}

func TestResolveSymbol(t *testing.T) {
	cases := []struct {
		name string
		rec  models.RawRecord
		want string
	}{
		{"explicit column", models.RawRecord{"Symbol": "agnc", "Description": "AGNC INVESTMENT CORP"}, "AGNC"},
		{"currency prefix stripped", models.RawRecord{"Symbol": "$AGNC"}, "AGNC"},
		{"ticker alias", models.RawRecord{"Ticker": "VTI"}, "VTI"},
		{"parenthesized in description", models.RawRecord{"Description": "VANGUARD TOTAL STOCK MARKET (VTI) CASH DIV"}, "VTI"},
		{"parenthesized in action", models.RawRecord{"Action": "DIVIDEND RECEIVED (SCHD)", "Description": "no ticker here"}, "SCHD"},
		{"leading token of description", models.RawRecord{"Description": "MSFT COMMON STOCK"}, "MSFT"},
		{"class suffix ticker", models.RawRecord{"Symbol": "BRK.B"}, "BRK.B"},
		{"no symbol anywhere", models.RawRecord{"Description": "journal entry for transfer"}, ""},
	}
	for _, c := range cases {
		action := c.rec["Action"]
		desc := fieldValue(c.rec, descAliases)
		if got := resolveSymbol(c.rec, action, desc); got != c.want {
			t.Errorf("%s: resolveSymbol = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestIsCashLike(t *testing.T) {
	cases := []struct {
		symbol, desc string
		want         bool
	}{
		{"", "", true}, // blank symbol + blank description: treated as cash, documented fuzziness
		{"SPAXX", "FIDELITY GOVERNMENT MONEY MARKET", true},
		{"SPAXX**", "", true}, // sweep marker suffix
		{"FCASH", "", true},
		{"AAPL", "APPLE INC", false},
		{"VTI", "MONEY MARKET SWEEP", true},
		{"", "PENDING ACTIVITY", true},
		{"", "AGNC INVESTMENT CORP", false},
	}
	for _, c := range cases {
		if got := isCashLike(c.symbol, c.desc); got != c.want {
			t.Errorf("isCashLike(%q, %q) = %v, want %v", c.symbol, c.desc, got, c.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1,234.56", 1234.56},
		{"$450.00", 450},
		{"(123.45)", -123.45},
		{"($1,000.00)", -1000},
		{"12.5%", 12.5},
		{"-42", -42},
		{"", 0},
		{"--", 0},
		{"n/a", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := parseNumber(c.in); got != c.want {
			t.Errorf("parseNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	rec := models.RawRecord{"Run Date": "03/15/2024", "Date": "ignored"}
	d, ok := parseDate(rec)
	if !ok {
		t.Fatal("expected Run Date to parse")
	}
	if d.Year() != 2024 || int(d.Month()) != 3 || d.Day() != 15 {
		t.Errorf("parsed %v, want 2024-03-15", d)
	}

	// First alias unparsable: fall through to the next candidate column.
	rec = models.RawRecord{"Run Date": "pending", "Date": "2024-06-01"}
	d, ok = parseDate(rec)
	if !ok || d.Day() != 1 || int(d.Month()) != 6 {
		t.Errorf("expected fallback to Date column, got %v ok=%v", d, ok)
	}

	if _, ok := parseDate(models.RawRecord{"Run Date": "not a date"}); ok {
		t.Error("expected no valid date")
	}
}

func TestDedupeRecords(t *testing.T) {
	a := models.RawRecord{"Symbol": "VTI", "Quantity": "10"}
	b := models.RawRecord{"Symbol": "VTI", "Quantity": "10"}
	c := models.RawRecord{"Symbol": "VTI", "Quantity": "20"}
	out := dedupeRecords([]models.RawRecord{a, b, c, a})
	if len(out) != 2 {
		t.Fatalf("deduped to %d rows, want 2", len(out))
	}
}

func TestNormalizationIdempotent(t *testing.T) {
	svc := newTestService()
	rows := []models.RawRecord{
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "10", "Amount ($)": "-2,200.00"},
		{"Run Date": "01/02/2024", "Action": "YOU BOUGHT", "Symbol": "VTI", "Quantity": "10", "Amount ($)": "-2,200.00"}, // duplicate
		{"Run Date": "02/15/2024", "Action": "DIVIDEND RECEIVED", "Symbol": "VTI", "Amount ($)": "15.40"},
	}

	first := svc.BuildPortfolioModel(rows, nil)

	// Re-running on already-deduplicated input yields an identical ledger.
	deduped := dedupeRecords(rows)
	second := svc.BuildPortfolioModel(deduped, nil)

	if !reflect.DeepEqual(first.Ledgers["VTI"], second.Ledgers["VTI"]) {
		t.Error("normalization is not idempotent over deduplicated input")
	}
	if got := first.Ledgers["VTI"].CurrentShares; got != 10 {
		t.Errorf("CurrentShares = %v, want 10 (duplicate row must collapse)", got)
	}
}
