package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS simulation_reports (
	id TEXT PRIMARY KEY,
	generated_at INTEGER NOT NULL,
	games INTEGER NOT NULL,
	player_wins INTEGER NOT NULL,
	opponent_wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	avg_turns REAL NOT NULL,
	body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON simulation_reports(generated_at);

CREATE TABLE IF NOT EXISTS decks (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore keeps reports and decks in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens dsn and creates the schema. Use ":memory:" in tests.
func NewSQLiteStore(ctx context.Context, dsn string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite store opened", zap.String("dsn", dsn))
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveReport stores report and returns its new id.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *simulation.Report) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulation_reports (id, generated_at, games, player_wins, opponent_wins, draws, avg_turns, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.GeneratedAt.UnixNano(), report.Games, report.PlayerWins,
		report.OpponentWins, report.Draws, report.AvgTurns, string(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("report saved", zap.String("report_id", id), zap.Int("games", report.Games))
	}
	return id, nil
}

// GetReport loads a full report.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*simulation.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM simulation_reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var report simulation.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the newest reports first.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, generated_at, games, player_wins, opponent_wins, draws, avg_turns
		FROM simulation_reports
		ORDER BY generated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var sum ReportSummary
		var generated int64
		if err := rows.Scan(&sum.ID, &generated, &sum.Games, &sum.PlayerWins, &sum.OpponentWins, &sum.Draws, &sum.AvgTurns); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		sum.GeneratedAt = time.Unix(0, generated).UTC()
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// SaveDeck inserts or replaces a deck by name.
func (s *SQLiteStore) SaveDeck(ctx context.Context, deck *cards.DeckList) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("deck %q: %w", deck.Name, err)
	}
	body, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decks (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		deck.Name, string(body), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save deck %q: %w", deck.Name, err)
	}
	return nil
}

// LoadDeck returns the deck saved under name.
func (s *SQLiteStore) LoadDeck(ctx context.Context, name string) (*cards.DeckList, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM decks WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query deck: %w", err)
	}

	var deck cards.DeckList
	if err := json.Unmarshal([]byte(body), &deck); err != nil {
		return nil, fmt.Errorf("failed to decode deck %q: %w", name, err)
	}
	return &deck, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
