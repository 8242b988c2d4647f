// Package repository persists simulation reports and deck lists.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tavernforge/tavern-server-go/internal/config"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap"
)

// ErrDeckNotFound is returned when a named deck does not exist.
var ErrDeckNotFound = errors.New("deck not found")

// ErrReportNotFound is returned when a report id does not exist.
var ErrReportNotFound = errors.New("report not found")

// ReportSummary is the listing row of a stored report.
type ReportSummary struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Games        int       `json:"games"`
	PlayerWins   int       `json:"player_wins"`
	OpponentWins int       `json:"opponent_wins"`
	Draws        int       `json:"draws"`
	AvgTurns     float64   `json:"avg_turns"`
}

func summarize(id string, r *simulation.Report) ReportSummary {
	return ReportSummary{
		ID:           id,
		GeneratedAt:  r.GeneratedAt,
		Games:        r.Games,
		PlayerWins:   r.PlayerWins,
		OpponentWins: r.OpponentWins,
		Draws:        r.Draws,
		AvgTurns:     r.AvgTurns,
	}
}

// ReportStore stores simulation reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *simulation.Report) (string, error)
	GetReport(ctx context.Context, id string) (*simulation.Report, error)
	ListReports(ctx context.Context, limit int) ([]ReportSummary, error)
}

// DeckStore stores named deck lists.
type DeckStore interface {
	SaveDeck(ctx context.Context, deck *cards.DeckList) error
	LoadDeck(ctx context.Context, name string) (*cards.DeckList, error)
}

// Store is implemented by every backend.
type Store interface {
	ReportStore
	DeckStore
	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgresStore(ctx, cfg, logger)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.DSN, logger)
	case "file", "":
		return NewFileStore(cfg.ReportDir, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
