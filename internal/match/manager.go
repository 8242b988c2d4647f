package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap"
)

// ErrMatchNotFound is returned for unknown match ids.
var ErrMatchNotFound = errors.New("match not found")

// Options configures a new match. Nil decks default to the base deck and a
// zero seed is replaced with a time-based one.
type Options struct {
	Seed         int64
	PlayerDeck   []string
	OpponentDeck []string
	OutboxSize   int
}

// ExpiryPolicy controls how long matches stay in memory. A non-positive TTL
// disables that rule.
type ExpiryPolicy struct {
	Interval    time.Duration
	FinishedTTL time.Duration // kept after the game is decided
	IdleTTL     time.Duration // kept without any action
}

// Manager owns the running matches.
type Manager struct {
	matches  map[string]*Match
	mu       sync.RWMutex
	recorder *game.ReplayRecorder
	handler  NotificationHandler
	logger   *zap.Logger
}

// NewManager creates a match manager. recorder may be nil to disable replays.
func NewManager(logger *zap.Logger, recorder *game.ReplayRecorder) *Manager {
	return &Manager{
		matches:  make(map[string]*Match),
		recorder: recorder,
		logger:   logger,
	}
}

// SetNotificationHandler sets the handler passed to matches created
// afterwards.
func (m *Manager) SetNotificationHandler(handler NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

func validateDeck(deck []string) error {
	for i, id := range deck {
		if _, ok := cards.Lookup(id); !ok {
			return fmt.Errorf("deck position %d: %w: %s", i, cards.ErrUnknownCard, id)
		}
	}
	return nil
}

// CreateMatch starts a match with the human in the mulligan phase.
func (m *Manager) CreateMatch(opts Options) (*Match, error) {
	if opts.PlayerDeck == nil {
		opts.PlayerDeck = cards.BaseDeck()
	}
	if opts.OpponentDeck == nil {
		opts.OpponentDeck = cards.BaseDeck()
	}
	if err := validateDeck(opts.PlayerDeck); err != nil {
		return nil, fmt.Errorf("invalid player deck: %w", err)
	}
	if err := validateDeck(opts.OpponentDeck); err != nil {
		return nil, fmt.Errorf("invalid opponent deck: %w", err)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	match := newMatch(uuid.NewString(), opts, m.recorder, m.handler, m.logger)
	m.matches[match.ID] = match

	if m.logger != nil {
		m.logger.Info("match created",
			zap.String("match_id", match.ID),
			zap.Int64("seed", opts.Seed),
			zap.Int("player_deck", len(opts.PlayerDeck)),
			zap.Int("opponent_deck", len(opts.OpponentDeck)),
		)
	}
	return match, nil
}

// GetMatch retrieves a match by id.
func (m *Manager) GetMatch(matchID string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return match, nil
}

// RemoveMatch drops a match and any unsaved replay.
func (m *Manager) RemoveMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.matches, matchID)
	if m.recorder != nil {
		m.recorder.ClearReplay(matchID)
	}

	if m.logger != nil {
		m.logger.Info("match removed", zap.String("match_id", matchID))
	}
}

// GetAllMatches returns snapshots of every match, oldest first.
func (m *Manager) GetAllMatches() []Snapshot {
	m.mu.RLock()
	matches := make([]*Match, 0, len(m.matches))
	for _, match := range m.matches {
		matches = append(matches, match)
	}
	m.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(matches))
	for _, match := range matches {
		snapshots = append(snapshots, match.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreateTime.Equal(snapshots[j].CreateTime) {
			return snapshots[i].ID < snapshots[j].ID
		}
		return snapshots[i].CreateTime.Before(snapshots[j].CreateTime)
	})
	return snapshots
}

// GetActiveMatchCount returns the number of undecided matches.
func (m *Manager) GetActiveMatchCount() int {
	count := 0
	for _, s := range m.GetAllMatches() {
		if s.EndTime == nil {
			count++
		}
	}
	return count
}

// ExpireMatches removes the matches that policy says are stale at now and
// returns their ids.
func (m *Manager) ExpireMatches(now time.Time, policy ExpiryPolicy) []string {
	var expired []string
	for _, s := range m.GetAllMatches() {
		finished := s.EndTime != nil && policy.FinishedTTL > 0 && now.Sub(*s.EndTime) >= policy.FinishedTTL
		idle := policy.IdleTTL > 0 && now.Sub(s.LastActive) >= policy.IdleTTL
		if finished || idle {
			m.RemoveMatch(s.ID)
			expired = append(expired, s.ID)
		}
	}
	if len(expired) > 0 && m.logger != nil {
		m.logger.Info("expired matches",
			zap.Int("count", len(expired)),
			zap.Int("remaining", len(m.GetAllMatches())),
		)
	}
	return expired
}

// CleanupExpiredMatches runs ExpireMatches every policy.Interval until ctx is
// cancelled.
func (m *Manager) CleanupExpiredMatches(ctx context.Context, policy ExpiryPolicy) {
	interval := policy.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.ExpireMatches(now, policy)
		}
	}
}
