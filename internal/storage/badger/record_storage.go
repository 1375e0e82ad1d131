package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// recordStorage persists uploaded export batches, keyed by batch ID and
// indexed by kind so activity and holdings files stay separable.
type recordStorage struct {
	store  *Store
	logger *common.Logger
}

// NewRecordStorage creates a RecordStorage backed by BadgerHold.
func NewRecordStorage(store *Store, logger *common.Logger) *recordStorage {
	return &recordStorage{store: store, logger: logger}
}

func (s *recordStorage) SaveBatch(_ context.Context, batch *models.RecordBatch) error {
	if batch.ID == "" {
		return fmt.Errorf("record batch requires an id")
	}
	if err := s.store.db.Upsert(batch.ID, batch); err != nil {
		return fmt.Errorf("failed to save batch '%s': %w", batch.ID, err)
	}
	s.logger.Debug().
		Str("id", batch.ID).
		Str("kind", string(batch.Kind)).
		Int("records", len(batch.Records)).
		Msg("Record batch saved")
	return nil
}

func (s *recordStorage) ListBatches(_ context.Context, kind models.BatchKind) ([]*models.RecordBatch, error) {
	var batches []*models.RecordBatch
	if err := s.store.db.Find(&batches, badgerhold.Where("Kind").Eq(kind).Index("Kind")); err != nil {
		return nil, fmt.Errorf("failed to list %s batches: %w", kind, err)
	}
	sort.Slice(batches, func(i, j int) bool {
		return batches[i].UploadedAt.Before(batches[j].UploadedAt)
	})
	return batches, nil
}

// Records merges the rows of every stored batch of a kind in upload
// order. Overlapping files are expected; duplicate rows collapse during
// normalization, not here.
func (s *recordStorage) Records(ctx context.Context, kind models.BatchKind) ([]models.RawRecord, error) {
	batches, err := s.ListBatches(ctx, kind)
	if err != nil {
		return nil, err
	}
	var records []models.RawRecord
	for _, b := range batches {
		records = append(records, b.Records...)
	}
	return records, nil
}

func (s *recordStorage) DeleteBatches(ctx context.Context, kind models.BatchKind) (int, error) {
	batches, err := s.ListBatches(ctx, kind)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, b := range batches {
		if err := s.store.db.Delete(b.ID, models.RecordBatch{}); err != nil && err != badgerhold.ErrNotFound {
			return deleted, fmt.Errorf("failed to delete batch '%s': %w", b.ID, err)
		}
		deleted++
	}
	s.logger.Debug().Str("kind", string(kind)).Int("deleted", deleted).Msg("Record batches deleted")
	return deleted, nil
}
