package models

import "time"

// PriceBar is one daily closing price observation.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// CachedQuote is a live quote with its fetch time, persisted by the price cache.
type CachedQuote struct {
	Symbol    string    `json:"symbol" badgerhold:"key"`
	Price     float64   `json:"price"`
	AsOf      time.Time `json:"as_of"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedHistory is a per-symbol daily close series, persisted by the price cache.
type CachedHistory struct {
	Symbol    string     `json:"symbol" badgerhold:"key"`
	Bars      []PriceBar `json:"bars"`
	From      time.Time  `json:"from"`
	To        time.Time  `json:"to"`
	FetchedAt time.Time  `json:"fetched_at"`
}
