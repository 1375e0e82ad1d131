package interfaces

import (
	"context"

	"github.com/bobmcallan/totalreturn/internal/models"
)

// RecordStorage persists uploaded export batches.
type RecordStorage interface {
	SaveBatch(ctx context.Context, batch *models.RecordBatch) error
	ListBatches(ctx context.Context, kind models.BatchKind) ([]*models.RecordBatch, error)
	// Records returns the merged rows of every stored batch of a kind,
	// in upload order.
	Records(ctx context.Context, kind models.BatchKind) ([]models.RawRecord, error)
	DeleteBatches(ctx context.Context, kind models.BatchKind) (int, error)
}

// PriceStorage caches provider results between requests. Staleness is
// decided by the caller against the configured TTLs.
type PriceStorage interface {
	GetQuote(ctx context.Context, symbol string) (*models.CachedQuote, error)
	PutQuote(ctx context.Context, quote *models.CachedQuote) error
	GetHistory(ctx context.Context, symbol string) (*models.CachedHistory, error)
	PutHistory(ctx context.Context, history *models.CachedHistory) error
}

// StorageManager provides access to all storage areas.
type StorageManager interface {
	RecordStorage() RecordStorage
	PriceStorage() PriceStorage
	Close() error
}
