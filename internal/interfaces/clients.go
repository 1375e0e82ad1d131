// Package interfaces defines service contracts for the total return service
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// PriceProvider supplies market prices. Implementations may return partial
// results: a symbol with no available data is simply absent (History) or
// reported with ok=false (CurrentPrice). Callers must treat missing prices
// as a per-symbol degradation, never a batch failure. Caching and TTL
// policy belong to the provider side of this boundary, not the engine.
type PriceProvider interface {
	// CurrentPrice returns the latest price for a symbol. ok=false means
	// the provider has no quote; err is reserved for transport failures.
	CurrentPrice(ctx context.Context, symbol string) (price float64, ok bool, err error)

	// History returns per-symbol daily close series covering [from, to].
	// Gaps within a series and missing symbols are both allowed.
	History(ctx context.Context, symbols []string, from, to time.Time) (map[string][]models.PriceBar, error)
}
