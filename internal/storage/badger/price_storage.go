package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// priceStorage caches provider quotes and close-price histories keyed by
// symbol. Staleness is the caller's call, made against the configured
// TTLs; this layer only stores fetch times.
type priceStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPriceStorage creates a PriceStorage backed by BadgerHold.
func NewPriceStorage(store *Store, logger *common.Logger) *priceStorage {
	return &priceStorage{store: store, logger: logger}
}

func (s *priceStorage) GetQuote(_ context.Context, symbol string) (*models.CachedQuote, error) {
	var quote models.CachedQuote
	err := s.store.db.Get(symbol, &quote)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for '%s': %w", symbol, err)
	}
	return &quote, nil
}

func (s *priceStorage) PutQuote(_ context.Context, quote *models.CachedQuote) error {
	if err := s.store.db.Upsert(quote.Symbol, quote); err != nil {
		return fmt.Errorf("failed to cache quote for '%s': %w", quote.Symbol, err)
	}
	return nil
}

func (s *priceStorage) GetHistory(_ context.Context, symbol string) (*models.CachedHistory, error) {
	var history models.CachedHistory
	err := s.store.db.Get(symbol, &history)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history for '%s': %w", symbol, err)
	}
	return &history, nil
}

func (s *priceStorage) PutHistory(_ context.Context, history *models.CachedHistory) error {
	if err := s.store.db.Upsert(history.Symbol, history); err != nil {
		return fmt.Errorf("failed to cache history for '%s': %w", history.Symbol, err)
	}
	return nil
}
