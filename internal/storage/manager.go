// Package storage wires concrete storage implementations behind the
// StorageManager interface.
package storage

import (
	"fmt"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/interfaces"
	"github.com/bobmcallan/totalreturn/internal/storage/badger"
)

// Manager owns the BadgerHold store and hands out the typed storages.
type Manager struct {
	store   *badger.Store
	records interfaces.RecordStorage
	prices  interfaces.PriceStorage
	logger  *common.Logger
}

// NewManager opens the store at the configured path and builds the typed
// storages over it.
func NewManager(config *common.Config, logger *common.Logger) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &Manager{
		store:   store,
		records: badger.NewRecordStorage(store, logger),
		prices:  badger.NewPriceStorage(store, logger),
		logger:  logger,
	}, nil
}

func (m *Manager) RecordStorage() interfaces.RecordStorage {
	return m.records
}

func (m *Manager) PriceStorage() interfaces.PriceStorage {
	return m.prices
}

func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage")
	return m.store.Close()
}
