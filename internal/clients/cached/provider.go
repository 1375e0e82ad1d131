// Package cached wraps a price provider with a persistent TTL cache.
package cached

import (
	"context"
	"time"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/interfaces"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// Provider decorates an upstream PriceProvider with the price cache.
// Quotes and histories are served from storage while fresh; a failed
// upstream call falls back to stale cache entries rather than reporting
// nothing.
type Provider struct {
	upstream   interfaces.PriceProvider
	store      interfaces.PriceStorage
	quoteTTL   time.Duration
	historyTTL time.Duration
	logger     *common.Logger
}

// NewProvider creates a caching decorator over upstream.
func NewProvider(upstream interfaces.PriceProvider, store interfaces.PriceStorage, quoteTTL, historyTTL time.Duration, logger *common.Logger) *Provider {
	return &Provider{
		upstream:   upstream,
		store:      store,
		quoteTTL:   quoteTTL,
		historyTTL: historyTTL,
		logger:     logger,
	}
}

func (p *Provider) CurrentPrice(ctx context.Context, symbol string) (float64, bool, error) {
	cached, err := p.store.GetQuote(ctx, symbol)
	if err != nil {
		p.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote cache read failed")
	} else if cached != nil && common.IsFresh(cached.FetchedAt, p.quoteTTL) {
		return cached.Price, true, nil
	}

	price, ok, err := p.upstream.CurrentPrice(ctx, symbol)
	if err != nil {
		if cached != nil {
			p.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed, serving stale cache")
			return cached.Price, true, nil
		}
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	quote := &models.CachedQuote{
		Symbol:    symbol,
		Price:     price,
		AsOf:      time.Now().UTC(),
		FetchedAt: time.Now().UTC(),
	}
	if err := p.store.PutQuote(ctx, quote); err != nil {
		p.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote cache write failed")
	}
	return price, true, nil
}

func (p *Provider) History(ctx context.Context, symbols []string, from, to time.Time) (map[string][]models.PriceBar, error) {
	out := make(map[string][]models.PriceBar, len(symbols))
	var misses []string
	stale := make(map[string]*models.CachedHistory)

	for _, symbol := range symbols {
		cached, err := p.store.GetHistory(ctx, symbol)
		if err != nil {
			p.logger.Warn().Err(err).Str("symbol", symbol).Msg("History cache read failed")
		}
		if cached != nil && common.IsFresh(cached.FetchedAt, p.historyTTL) && covers(cached, from, to) {
			out[symbol] = cached.Bars
			continue
		}
		if cached != nil {
			stale[symbol] = cached
		}
		misses = append(misses, symbol)
	}
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := p.upstream.History(ctx, misses, from, to)
	if err != nil {
		// Stale series beat no series.
		p.logger.Warn().Err(err).Int("symbols", len(misses)).Msg("History fetch failed, serving stale cache")
		for symbol, cached := range stale {
			out[symbol] = cached.Bars
		}
		return out, nil
	}

	for _, symbol := range misses {
		bars, ok := fetched[symbol]
		if !ok || len(bars) == 0 {
			if cached, hasStale := stale[symbol]; hasStale {
				out[symbol] = cached.Bars
			}
			continue
		}
		out[symbol] = bars
		history := &models.CachedHistory{
			Symbol:    symbol,
			Bars:      bars,
			From:      from,
			To:        to,
			FetchedAt: time.Now().UTC(),
		}
		if err := p.store.PutHistory(ctx, history); err != nil {
			p.logger.Warn().Err(err).Str("symbol", symbol).Msg("History cache write failed")
		}
	}
	return out, nil
}

// covers reports whether a cached series spans the requested range.
func covers(cached *models.CachedHistory, from, to time.Time) bool {
	return !cached.From.After(from) && !cached.To.Before(to)
}
