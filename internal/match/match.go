package match

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/ai"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"github.com/tavernforge/tavern-server-go/internal/game/watchers"
	"go.uber.org/zap"
)

// DefaultOutboxSize bounds the number of undrained events kept per match.
const DefaultOutboxSize = 256

// Notification is pushed to the notification handler for events a client
// should see without polling.
type Notification struct {
	Type      string // "CARD_DRAWN", "GAME_OVER"
	MatchID   string
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives match notifications. It is called on its own
// goroutine and may call back into the match.
type NotificationHandler func(notification Notification)

// Snapshot captures match metadata for listings.
type Snapshot struct {
	ID         string
	Phase      string
	Winner     string
	TurnNumber int
	CreateTime time.Time
	LastActive time.Time
	EndTime    *time.Time
}

// Match is one running game against the planner. The human always plays
// game.SidePlayer.
type Match struct {
	ID         string
	CreateTime time.Time

	mu         sync.Mutex
	state      *game.GameState
	rng        *rand.Rand
	resolver   *game.Resolver
	planner    ai.Policy
	bus        *rules.EventBus
	watchers   *rules.WatcherRegistry
	recorder   *game.ReplayRecorder
	outbox     []rules.Event
	outboxSize int
	lastActive time.Time
	endTime    *time.Time
	handler    NotificationHandler
	logger     *zap.Logger
}

func newMatch(id string, opts Options, recorder *game.ReplayRecorder, handler NotificationHandler, logger *zap.Logger) *Match {
	now := time.Now()
	m := &Match{
		ID:         id,
		CreateTime: now,
		lastActive: now,
		rng:        game.NewRNG(opts.Seed),
		bus:        rules.NewEventBus(),
		watchers:   rules.NewWatcherRegistry(),
		recorder:   recorder,
		outboxSize: opts.OutboxSize,
		handler:    handler,
		logger:     logger,
	}
	if m.outboxSize <= 0 {
		m.outboxSize = DefaultOutboxSize
	}
	for _, w := range watchers.Standard() {
		m.watchers.AddWatcher(w)
	}
	m.bus.Subscribe(m.watchers.Publish)
	m.bus.Subscribe(m.enqueue)
	m.bus.SubscribeTyped(rules.EventCardDrawn, m.notifyDraw)

	m.resolver = game.NewResolver(logger, m.bus)
	m.planner = ai.NewPlanner(m.resolver, logger)

	if m.recorder != nil {
		m.recorder.StartRecording(id)
	}
	m.state = m.resolver.NewGame(id, opts.PlayerDeck, opts.OpponentDeck, m.rng)
	m.record()
	return m
}

// enqueue runs inside resolver calls, which always hold m.mu.
func (m *Match) enqueue(event rules.Event) {
	if len(m.outbox) >= m.outboxSize {
		m.outbox = m.outbox[1:]
	}
	m.outbox = append(m.outbox, event)
}

func (m *Match) notifyDraw(event rules.Event) {
	if event.Side != game.SidePlayer.String() {
		return
	}
	m.emit(Notification{
		Type:      string(rules.EventCardDrawn),
		MatchID:   m.ID,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"card_id": event.CardID,
			"turn":    event.Turn,
		},
	})
}

func (m *Match) emit(notification Notification) {
	if m.handler != nil {
		go m.handler(notification)
	}
}

func (m *Match) record() {
	if m.recorder != nil {
		m.recorder.RecordState(m.state)
	}
}

// Drain returns and clears the buffered events.
func (m *Match) Drain() []rules.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.outbox
	m.outbox = nil
	return events
}

// View renders the match for the human side.
func (m *Match) View() game.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ViewFor(game.SidePlayer)
}

// State returns a copy of the current game state.
func (m *Match) State() *game.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Stats summarizes the match's watchers.
func (m *Match) Stats() watchers.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return watchers.Summarize(m.watchers)
}

// Lethal reports whether the human has lethal on board right now.
func (m *Match) Lethal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return game.ComputePotentialLethal(m.state, game.SidePlayer)
}

// Snapshot returns listing metadata.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var end *time.Time
	if m.endTime != nil {
		t := *m.endTime
		end = &t
	}
	return Snapshot{
		ID:         m.ID,
		Phase:      m.state.Phase().String(),
		Winner:     m.state.Winner.String(),
		TurnNumber: m.state.TurnNumber,
		CreateTime: m.CreateTime,
		LastActive: m.lastActive,
		EndTime:    end,
	}
}

// PerformMulligan replaces the hand cards at indices.
func (m *Match) PerformMulligan(indices []int) (game.View, bool) {
	return m.apply("mulligan", func(gs *game.GameState) *game.GameState {
		return m.resolver.PerformMulligan(gs, game.SidePlayer, indices, m.rng)
	})
}

// PlayCard plays a hand card without an explicit target.
func (m *Match) PlayCard(handIndex int) (game.View, bool) {
	return m.apply("play_card", func(gs *game.GameState) *game.GameState {
		return m.resolver.PlayCard(gs, game.SidePlayer, handIndex)
	})
}

// PlaySpellAt casts a spell at target.
func (m *Match) PlaySpellAt(handIndex int, target game.Target) (game.View, bool) {
	return m.apply("cast_spell", func(gs *game.GameState) *game.GameState {
		return m.resolver.PlaySpellAt(gs, game.SidePlayer, handIndex, target)
	})
}

// DeclareAttack attacks target with one of the human's minions.
func (m *Match) DeclareAttack(attackerID string, target game.Target) (game.View, bool) {
	return m.apply("attack", func(gs *game.GameState) *game.GameState {
		return m.resolver.DeclareAttack(gs, game.SidePlayer, attackerID, target)
	})
}

// UseHeroPower fires the human's hero power.
func (m *Match) UseHeroPower() (game.View, bool) {
	return m.apply("hero_power", func(gs *game.GameState) *game.GameState {
		return m.resolver.UseHeroPower(gs, game.SidePlayer)
	})
}

// EndTurn ends the human's turn and lets the planner play the opponent's.
func (m *Match) EndTurn() (game.View, bool) {
	return m.apply("end_turn", func(gs *game.GameState) *game.GameState {
		if gs.Turn != game.SidePlayer {
			return gs
		}
		return m.planner.PlayTurn(gs)
	})
}

// apply runs one resolver step under the match lock. The bool reports
// whether the state changed.
func (m *Match) apply(action string, step func(gs *game.GameState) *game.GameState) (game.View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastActive = time.Now()
	prev := m.state
	next := step(prev)
	applied := next != prev
	if applied {
		m.state = next
		m.record()
		if next.IsOver() && !prev.IsOver() {
			m.finish()
		}
	}

	if m.logger != nil {
		m.logger.Debug("match action",
			zap.String("match_id", m.ID),
			zap.String("action", action),
			zap.Bool("applied", applied),
			zap.String("phase", m.state.Phase().String()),
		)
	}
	return m.state.ViewFor(game.SidePlayer), applied
}

func (m *Match) finish() {
	now := time.Now()
	m.endTime = &now

	if m.recorder != nil {
		if err := m.recorder.SaveReplay(m.ID); err != nil && m.logger != nil {
			m.logger.Warn("failed to save replay",
				zap.String("match_id", m.ID),
				zap.Error(err),
			)
		}
	}
	if m.logger != nil {
		m.logger.Info("match finished",
			zap.String("match_id", m.ID),
			zap.String("winner", m.state.Winner.String()),
			zap.Int("turn", m.state.TurnNumber),
		)
	}
	m.emit(Notification{
		Type:      string(rules.EventGameOver),
		MatchID:   m.ID,
		Timestamp: now,
		Data: map[string]interface{}{
			"winner": m.state.Winner.String(),
		},
	})
}
