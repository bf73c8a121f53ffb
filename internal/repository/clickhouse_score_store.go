package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"CoinScope/internal/domain/models"
	pkgch "CoinScope/pkg/clickhouse"
	applogger "CoinScope/pkg/logger"
)

// Schema holds the idempotent DDL for the score table. ReplacingMergeTree
// keyed by symbol gives the upsert-by-symbol semantics the reconciler needs:
// the newest computed_at row wins at merge time and reads use FINAL.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS coinscope`,
	`CREATE TABLE IF NOT EXISTS coinscope.crypto_scores (
		symbol String,
		current_price Float64,
		final_score Float64,
		signal String,
		weighted_avg Float64,
		value_deviation Float64,
		margin Float64,
		components String,
		computed_at DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(computed_at)
	ORDER BY symbol`,
}

// CHScoreStore implements ScoreStore backed by ClickHouse.
type CHScoreStore struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewCHScoreStore wraps an initialized ClickHouse client.
func NewCHScoreStore(ch *pkgch.Client, l *applogger.Logger) *CHScoreStore {
	return &CHScoreStore{db: ch.DB(), l: l}
}

func (s *CHScoreStore) Enabled() bool { return true }

// Upsert writes the latest score row for a symbol.
func (s *CHScoreStore) Upsert(ctx context.Context, score *models.AssetScore) error {
	components, err := json.Marshal(score.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}

	const q = `
        INSERT INTO coinscope.crypto_scores
            (symbol, current_price, final_score, signal, weighted_avg,
             value_deviation, margin, components, computed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		score.Symbol, score.CurrentPrice, score.FinalScore, score.Signal,
		score.WeightedAvg, score.ZScore, score.Margin, string(components),
		score.ComputedAt.UTC(),
	); err != nil {
		s.l.Error("clickhouse upsert score error",
			applogger.String("symbol", score.Symbol), applogger.Error(err))
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// ReadAll returns the latest row per symbol, highest score first.
func (s *CHScoreStore) ReadAll(ctx context.Context) ([]models.AssetScore, error) {
	start := time.Now()
	const q = `
        SELECT symbol, current_price, final_score, signal, weighted_avg,
               value_deviation, margin, components, computed_at
        FROM coinscope.crypto_scores FINAL
        ORDER BY final_score DESC
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.l.Error("clickhouse read scores query error", applogger.Error(err))
		return nil, fmt.Errorf("read scores: %w", err)
	}
	defer rows.Close()

	out := make([]models.AssetScore, 0, 32)
	for rows.Next() {
		var sc models.AssetScore
		var components string
		if err := rows.Scan(&sc.Symbol, &sc.CurrentPrice, &sc.FinalScore, &sc.Signal,
			&sc.WeightedAvg, &sc.ZScore, &sc.Margin, &components, &sc.ComputedAt); err != nil {
			s.l.Error("clickhouse read scores scan error", applogger.Error(err))
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if err := json.Unmarshal([]byte(components), &sc.Components); err != nil {
			return nil, fmt.Errorf("unmarshal components: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse read scores ok",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)))
	return out, nil
}
