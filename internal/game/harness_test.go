package game

import (
	"strings"
	"testing"

	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

// gameHarness builds hand-crafted states and records published events.
type gameHarness struct {
	t        *testing.T
	resolver *Resolver
	events   []rules.Event
}

func newGameHarness(t *testing.T) *gameHarness {
	t.Helper()
	h := &gameHarness{t: t}
	bus := rules.NewEventBus()
	bus.Subscribe(func(e rules.Event) {
		h.events = append(h.events, e)
	})
	h.resolver = NewResolver(zaptest.NewLogger(t), bus)
	return h
}

// emptyGame returns a post-mulligan state on the player's turn with empty
// decks, hands and boards and full mana for both sides.
func (h *gameHarness) emptyGame() *GameState {
	return &GameState{
		MatchID:      "test-match",
		Player:       &PlayerState{HeroHealth: StartingHeroHealth, Mana: 10, MaxMana: 10},
		Opponent:     &PlayerState{HeroHealth: StartingHeroHealth, Mana: 10, MaxMana: 10},
		Turn:         SidePlayer,
		TurnNumber:   1,
		MulliganDone: true,
	}
}

// addMinion puts a ready copy of cardID on side's board and returns its id.
func (h *gameHarness) addMinion(gs *GameState, side Side, cardID string, mods ...func(*MinionInstance)) string {
	h.t.Helper()
	card, ok := cards.Lookup(cardID)
	if !ok || !card.IsMinion() {
		h.t.Fatalf("not a minion card: %s", cardID)
	}
	m := MinionInstance{
		ID:           gs.nextMinionID(),
		Owner:        side,
		CardID:       cardID,
		Attack:       card.Minion.Attack,
		Health:       card.Minion.Health,
		CanAttack:    true,
		DivineShield: card.Minion.Keywords.DivineShield,
	}
	for _, mod := range mods {
		mod(&m)
	}
	p := gs.For(side)
	p.Board = append(p.Board, m)
	return m.ID
}

func (h *gameHarness) minion(gs *GameState, id string) MinionInstance {
	h.t.Helper()
	owner, i, ok := gs.FindMinion(id)
	if !ok {
		h.t.Fatalf("minion %s not on any board", id)
	}
	return gs.For(owner).Board[i]
}

func (h *gameHarness) countEvents(eventType rules.EventType) int {
	n := 0
	for _, e := range h.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func withStats(attack, health int) func(*MinionInstance) {
	return func(m *MinionInstance) {
		m.Attack = attack
		m.Health = health
	}
}

func justSummoned(m *MinionInstance) {
	m.JustSummoned = true
	m.CanAttack = m.HasRush()
}

func exhausted(m *MinionInstance) {
	m.CanAttack = false
}

func logContains(gs *GameState, substr string) bool {
	for _, line := range gs.Log {
		if strings.Contains(strings.ToLower(line), strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
