package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
)

// Rule constants.
const (
	StartingHandSize   = 3
	StartingHeroHealth = 20
	HandLimit          = 10
	BoardLimit         = 7
	ManaCap            = 10
	HeroPowerCost      = 2
	HeroPowerDamage    = 1
)

// Side identifies one of the two seats.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide converts a side name back into a Side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "player":
		return SidePlayer, nil
	case "opponent":
		return SideOpponent, nil
	default:
		return 0, fmt.Errorf("unknown side %q", name)
	}
}

// Winner is the outcome of a match.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerPlayer
	WinnerOpponent
	WinnerDraw
)

func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "none"
	case WinnerPlayer:
		return "player"
	case WinnerOpponent:
		return "opponent"
	case WinnerDraw:
		return "draw"
	default:
		return fmt.Sprintf("winner(%d)", int(w))
	}
}

func winnerFor(side Side) Winner {
	if side == SidePlayer {
		return WinnerPlayer
	}
	return WinnerOpponent
}

// MinionInstance is a minion on a board.
type MinionInstance struct {
	ID           string
	Owner        Side
	CardID       string
	Attack       int
	Health       int
	CanAttack    bool
	JustSummoned bool
	DivineShield bool
}

// Card returns the catalog entry the minion was summoned from.
func (m *MinionInstance) Card() cards.Card {
	return cards.MustLookup(m.CardID)
}

func (m *MinionInstance) keywords() cards.Keywords {
	c := m.Card()
	if c.Minion == nil {
		return cards.Keywords{}
	}
	return c.Minion.Keywords
}

// HasTaunt reports whether the minion has Taunt.
func (m *MinionInstance) HasTaunt() bool { return m.keywords().Taunt }

// HasRush reports whether the minion has Rush.
func (m *MinionInstance) HasRush() bool { return m.keywords().Rush }

// IsPoisonous reports whether damage dealt by the minion is poisonous.
func (m *MinionInstance) IsPoisonous() bool { return m.keywords().Poisonous }

// Alive reports whether the minion still has health left.
func (m *MinionInstance) Alive() bool { return m.Health > 0 }

// PlayerState is one side of the table.
type PlayerState struct {
	HeroHealth    int
	Mana          int
	MaxMana       int
	Deck          []string
	Hand          []string
	Board         []MinionInstance
	HeroPowerUsed bool
	Fatigue       int
}

func newPlayerState(deck []string) *PlayerState {
	return &PlayerState{
		HeroHealth: StartingHeroHealth,
		Mana:       1,
		MaxMana:    1,
		Deck:       deck,
	}
}

// FindMinion returns the index of the minion with the given id, or -1.
func (p *PlayerState) FindMinion(id string) int {
	for i := range p.Board {
		if p.Board[i].ID == id {
			return i
		}
	}
	return -1
}

// LivingCount returns the number of minions with health left.
func (p *PlayerState) LivingCount() int {
	n := 0
	for i := range p.Board {
		if p.Board[i].Alive() {
			n++
		}
	}
	return n
}

// LivingTaunts returns the living Taunt minions on the board.
func (p *PlayerState) LivingTaunts() []MinionInstance {
	var taunts []MinionInstance
	for _, m := range p.Board {
		if m.Alive() && m.HasTaunt() {
			taunts = append(taunts, m)
		}
	}
	return taunts
}

// HasLivingTaunt reports whether any living Taunt minion is on the board.
func (p *PlayerState) HasLivingTaunt() bool {
	for i := range p.Board {
		if p.Board[i].Alive() && p.Board[i].HasTaunt() {
			return true
		}
	}
	return false
}

// GameState is one match. Resolvers treat it as an immutable snapshot and
// return modified clones.
type GameState struct {
	MatchID      string
	Player       *PlayerState
	Opponent     *PlayerState
	Turn         Side
	TurnNumber   int
	Winner       Winner
	Log          []string
	MulliganDone bool
	// Seq numbers minion instances for deterministic ids.
	Seq int
}

// For returns the state of the given side.
func (gs *GameState) For(side Side) *PlayerState {
	if side == SidePlayer {
		return gs.Player
	}
	return gs.Opponent
}

// Phase derives the turn state machine phase.
func (gs *GameState) Phase() rules.Phase {
	switch {
	case gs.Winner != WinnerNone:
		return rules.PhaseGameOver
	case !gs.MulliganDone:
		return rules.PhaseMulligan
	case gs.Turn == SidePlayer:
		return rules.PhasePlayerTurn
	default:
		return rules.PhaseOpponentTurn
	}
}

// IsOver reports whether a winner has been decided.
func (gs *GameState) IsOver() bool {
	return gs.Winner != WinnerNone
}

// FindMinion locates a minion on either board.
func (gs *GameState) FindMinion(id string) (Side, int, bool) {
	if i := gs.Player.FindMinion(id); i >= 0 {
		return SidePlayer, i, true
	}
	if i := gs.Opponent.FindMinion(id); i >= 0 {
		return SideOpponent, i, true
	}
	return 0, -1, false
}

func (gs *GameState) addLog(format string, args ...interface{}) {
	gs.Log = append(gs.Log, fmt.Sprintf(format, args...))
}

func (gs *GameState) nextMinionID() string {
	gs.Seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", gs.MatchID, gs.Seq))).String()
}

// Clone returns a deep copy of the state. Nil slices stay nil so a clone of
// an untouched state compares equal to it.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	clone := *gs
	clone.Player = gs.Player.clone()
	clone.Opponent = gs.Opponent.clone()
	clone.Log = cloneStrings(gs.Log)
	return &clone
}

func (p *PlayerState) clone() *PlayerState {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Deck = cloneStrings(p.Deck)
	clone.Hand = cloneStrings(p.Hand)
	if p.Board != nil {
		clone.Board = make([]MinionInstance, len(p.Board))
		copy(clone.Board, p.Board)
	}
	return &clone
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
