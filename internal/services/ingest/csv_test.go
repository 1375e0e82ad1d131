package ingest

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := "Run Date,Action,Symbol,Quantity,Amount ($)\n" +
		"01/02/2024,YOU BOUGHT,VTI,10,(1000.00)\n" +
		"01/15/2024,DIVIDEND RECEIVED,SCHD,,5.25\n"

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["Symbol"] != "VTI" || records[0]["Amount ($)"] != "(1000.00)" {
		t.Errorf("record 0 = %v", records[0])
	}
	if records[1]["Quantity"] != "" {
		t.Errorf("missing field must map to empty string, got %q", records[1]["Quantity"])
	}
}

func TestParseCSVStripsBOM(t *testing.T) {
	input := "\ufeffSymbol,Quantity\nVTI,10\n"
	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if records[0]["Symbol"] != "VTI" {
		t.Errorf("BOM must not corrupt the first header, got %v", records[0])
	}
}

func TestParseCSVToleratesRaggedRows(t *testing.T) {
	input := "Symbol,Quantity,Cost Basis Total\n" +
		"VTI,10\n" + // short row
		"SCHD,5,400,extra\n" + // long row
		"\n" + // blank line
		"Brokerage services provided by example text\n" // disclaimer

	records, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0]["Cost Basis Total"] != "" {
		t.Errorf("short row padding failed: %v", records[0])
	}
	if records[1]["Cost Basis Total"] != "400" {
		t.Errorf("long row truncation failed: %v", records[1])
	}
	if records[2]["Symbol"] == "" {
		t.Errorf("disclaimer row keeps its text in the first column: %v", records[2])
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}
