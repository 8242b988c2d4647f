package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tavernforge/tavern-server-go/internal/config"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	cost INTEGER NOT NULL,
	attack INTEGER,
	health INTEGER,
	keywords TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS decks (
	name TEXT PRIMARY KEY,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deck_cards (
	deck_name TEXT NOT NULL REFERENCES decks(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	card_id TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY (deck_name, position)
);

CREATE TABLE IF NOT EXISTS simulation_reports (
	id UUID PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	games INTEGER NOT NULL,
	player_wins INTEGER NOT NULL,
	opponent_wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	avg_turns DOUBLE PRECISION NOT NULL,
	body JSONB NOT NULL
);
`

// PostgresStore keeps reports, decks and the card catalog in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to cfg.DSN and creates the schema.
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if logger != nil {
		stats := pool.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("max_conns", stats.MaxConns()),
		)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SaveReport stores report and returns its new id.
func (s *PostgresStore) SaveReport(ctx context.Context, report *simulation.Report) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO simulation_reports (id, generated_at, games, player_wins, opponent_wins, draws, avg_turns, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, report.GeneratedAt, report.Games, report.PlayerWins,
		report.OpponentWins, report.Draws, report.AvgTurns, body,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return id, nil
}

// GetReport loads a full report.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*simulation.Report, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM simulation_reports WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var report simulation.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the newest reports first.
func (s *PostgresStore) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, generated_at, games, player_wins, opponent_wins, draws, avg_turns
		FROM simulation_reports
		ORDER BY generated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var sum ReportSummary
		if err := rows.Scan(&sum.ID, &sum.GeneratedAt, &sum.Games, &sum.PlayerWins, &sum.OpponentWins, &sum.Draws, &sum.AvgTurns); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// SaveDeck replaces the deck's rows in one transaction.
func (s *PostgresStore) SaveDeck(ctx context.Context, deck *cards.DeckList) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("deck %q: %w", deck.Name, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO decks (name, updated_at) VALUES ($1, now())
		ON CONFLICT (name) DO UPDATE SET updated_at = now()`, deck.Name); err != nil {
		return fmt.Errorf("failed to upsert deck: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE deck_name = $1`, deck.Name); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}

	batch := &pgx.Batch{}
	for i, e := range deck.Cards {
		batch.Queue(`INSERT INTO deck_cards (deck_name, position, card_id, count) VALUES ($1, $2, $3, $4)`,
			deck.Name, i, e.ID, e.Count)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert deck cards: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("deck saved", zap.String("deck", deck.Name), zap.Int("cards", deck.Size()))
	}
	return nil
}

// LoadDeck returns the deck saved under name.
func (s *PostgresStore) LoadDeck(ctx context.Context, name string) (*cards.DeckList, error) {
	var updated time.Time
	err := s.pool.QueryRow(ctx, `SELECT updated_at FROM decks WHERE name = $1`, name).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query deck: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT card_id, count FROM deck_cards WHERE deck_name = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck cards: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cards.DeckEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan deck cards: %w", err)
	}
	return &cards.DeckList{Name: name, Cards: entries}, nil
}

// ImportCatalog upserts every catalog card in one transaction and returns
// the number written.
func (s *PostgresStore) ImportCatalog(ctx context.Context, catalog []cards.Card) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	imported := 0
	for _, c := range catalog {
		row := catalogRow(c)
		_, err := tx.Exec(ctx, `
			INSERT INTO cards (id, name, kind, cost, attack, health, keywords)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, kind = excluded.kind, cost = excluded.cost,
				attack = excluded.attack, health = excluded.health, keywords = excluded.keywords`,
			row.id, row.name, row.kind, row.cost, row.attack, row.health, row.keywords,
		)
		if err != nil {
			return imported, fmt.Errorf("failed to insert card %s: %w", c.ID, err)
		}
		imported++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit catalog: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("card catalog imported", zap.Int("cards", imported))
	}
	return imported, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
