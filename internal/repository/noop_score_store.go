package repository

import (
	"context"

	"CoinScope/internal/domain/models"
)

// NoopScoreStore is used when ClickHouse is not configured. Reads report the
// store as empty so every request takes the fresh computation path; writes
// are silently dropped.
type NoopScoreStore struct{}

func NewNoopScoreStore() *NoopScoreStore { return &NoopScoreStore{} }

func (n *NoopScoreStore) Enabled() bool { return false }

func (n *NoopScoreStore) Upsert(context.Context, *models.AssetScore) error {
	return models.ErrStoreDisabled
}

func (n *NoopScoreStore) ReadAll(context.Context) ([]models.AssetScore, error) {
	return nil, models.ErrStoreDisabled
}
