package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap"
)

const (
	reportPrefix = "sim-"
	reportExt    = ".json"
	deckExt      = ".yaml"
)

// FileStore writes reports as JSON and decks as YAML under a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(filepath.Join(dir, "decks"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) reportPath(id string) string {
	return filepath.Join(s.dir, reportPrefix+id+reportExt)
}

func (s *FileStore) deckPath(name string) string {
	return filepath.Join(s.dir, "decks", name+deckExt)
}

// SaveReport writes report to sim-<timestamp>.json. The id is the timestamp.
func (s *FileStore) SaveReport(ctx context.Context, report *simulation.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	id := report.GeneratedAt.UTC().Format("20060102T150405.000000000Z")
	path := s.reportPath(id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("report saved", zap.String("report_id", id), zap.String("path", path))
	}
	return id, nil
}

// GetReport reads a report by id.
func (s *FileStore) GetReport(ctx context.Context, id string) (*simulation.Report, error) {
	data, err := os.ReadFile(s.reportPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report simulation.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the newest reports first.
func (s *FileStore) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportExt))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	summaries := make([]ReportSummary, 0, len(ids))
	for _, id := range ids {
		report, err := s.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summarize(id, report))
	}
	return summaries, nil
}

// SaveDeck writes deck to decks/<name>.yaml.
func (s *FileStore) SaveDeck(ctx context.Context, deck *cards.DeckList) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("deck %q: %w", deck.Name, err)
	}
	f, err := os.Create(s.deckPath(deck.Name))
	if err != nil {
		return fmt.Errorf("failed to create deck file: %w", err)
	}
	defer f.Close()
	return deck.Encode(f)
}

// LoadDeck reads decks/<name>.yaml.
func (s *FileStore) LoadDeck(ctx context.Context, name string) (*cards.DeckList, error) {
	path := s.deckPath(name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
	}
	return cards.LoadDeckList(path)
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
