package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chartPayload(price float64, timestamps []int64, closes []string) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += c
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%v},"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, price, ts, cl)
}

func TestCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/VTI" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartPayload(251.32, nil, nil))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	price, ok, err := client.CurrentPrice(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("CurrentPrice returned error: %v", err)
	}
	if !ok || price != 251.32 {
		t.Errorf("price = %v ok = %v, want 251.32 true", price, ok)
	}
}

func TestCurrentPriceFallsBackToLastClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartPayload(0, []int64{1704153600, 1704240000}, []string{"100.5", "null"}))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	price, ok, err := client.CurrentPrice(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("CurrentPrice returned error: %v", err)
	}
	if !ok || price != 100.5 {
		t.Errorf("price = %v ok = %v, want last valid close 100.5", price, ok)
	}
}

func TestCurrentPriceUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, ok, err := client.CurrentPrice(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("404 must map to a miss, not an error: %v", err)
	}
	if ok {
		t.Error("unknown symbol must report ok=false")
	}
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// BRK.B must reach Yahoo as BRK-B.
		if r.URL.Path != "/v8/finance/chart/BRK-B" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartPayload(0, []int64{1704240000, 1704326400}, []string{"410.2", "412.9"}))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	out, err := client.History(context.Background(), []string{"BRK.B"}, from, to)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	bars := out["BRK.B"]
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 410.2 || bars[1].Close != 412.9 {
		t.Errorf("bars = %+v", bars)
	}
}

func TestHistoryPartialFailureSkipsSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/GOOD" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, chartPayload(0, []int64{1704240000}, []string{"50"}))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out, err := client.History(context.Background(), []string{"GOOD", "BAD"}, from, from)
	if err != nil {
		t.Fatalf("one failing symbol must not fail the batch: %v", err)
	}
	if _, ok := out["GOOD"]; !ok {
		t.Error("GOOD must be present")
	}
	if _, ok := out["BAD"]; ok {
		t.Error("BAD must be absent, not zero-valued")
	}
}

func TestCleanSymbol(t *testing.T) {
	cases := map[string]string{
		"vti":    "VTI",
		"$AGNC":  "AGNC",
		"BRK.B":  "BRK-B",
		" SCHD ": "SCHD",
	}
	for in, want := range cases {
		if got := cleanSymbol(in); got != want {
			t.Errorf("cleanSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
