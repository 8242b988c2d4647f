package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap/zaptest"
)

// opponentTurn returns a post-mulligan state where the opponent holds the
// turn with the given mana and non-empty decks on both sides.
func opponentTurn(mana int) *game.GameState {
	deck := func() []string {
		return []string{cards.YoungWarrior, cards.YoungWarrior, cards.YoungWarrior}
	}
	return &game.GameState{
		MatchID:      "ai-test",
		Player:       &game.PlayerState{HeroHealth: game.StartingHeroHealth, Mana: 1, MaxMana: 1, Deck: deck()},
		Opponent:     &game.PlayerState{HeroHealth: game.StartingHeroHealth, Mana: mana, MaxMana: mana, Deck: deck()},
		Turn:         game.SideOpponent,
		TurnNumber:   2,
		MulliganDone: true,
	}
}

var minionSeq int

func place(gs *game.GameState, side game.Side, cardID string, mods ...func(*game.MinionInstance)) string {
	c := cards.MustLookup(cardID)
	minionSeq++
	m := game.MinionInstance{
		ID:           fmt.Sprintf("m-%d", minionSeq),
		Owner:        side,
		CardID:       cardID,
		Attack:       c.Minion.Attack,
		Health:       c.Minion.Health,
		CanAttack:    true,
		DivineShield: c.Minion.Keywords.DivineShield,
	}
	for _, mod := range mods {
		mod(&m)
	}
	p := gs.For(side)
	p.Board = append(p.Board, m)
	return m.ID
}

func TestAffordableCards(t *testing.T) {
	p := &game.PlayerState{
		Mana: 2,
		Hand: []string{cards.Colossus, cards.ArcaneBolt, cards.Berserker, "c_unknown"},
	}

	got := affordableCards(p)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 2, got[1].Index)
}

func TestScoreSpellPrefersRemoval(t *testing.T) {
	board := []game.MinionInstance{
		{ID: "small", CardID: cards.YoungWarrior, Attack: 1, Health: 2},
		{ID: "big", CardID: cards.Berserker, Attack: 3, Health: 2},
		{ID: "tough", CardID: cards.Colossus, Attack: 4, Health: 4},
	}
	bolt := candidate{Index: 0, Card: cards.MustLookup(cards.ArcaneBolt)}

	plan := scoreSpell(bolt, game.SidePlayer, board)

	assert.Equal(t, game.MinionTarget("big"), plan.Target)
	assert.Equal(t, 100+2*3+2, plan.Score)
}

func TestScoreSpellGoesFaceWithoutKills(t *testing.T) {
	board := []game.MinionInstance{
		{ID: "shielded", CardID: cards.ShieldBearer, Attack: 0, Health: 1, DivineShield: true},
		{ID: "tough", CardID: cards.Colossus, Attack: 4, Health: 4},
	}
	fireball := candidate{Index: 3, Card: cards.MustLookup(cards.Fireball)}

	plan := scoreSpell(fireball, game.SidePlayer, board)

	assert.Equal(t, game.HeroTarget(game.SidePlayer), plan.Target)
	assert.Equal(t, 9, plan.Score)
	assert.Equal(t, 3, plan.Index)
}

func TestChoosePlayMinionOverWeakSpell(t *testing.T) {
	gs := opponentTurn(5)
	gs.Opponent.Hand = []string{cards.Fireball, cards.Guardian, cards.Colossus}

	choice := choosePlay(gs, game.SideOpponent)

	assert.Equal(t, playMinion, choice.Kind)
	assert.Equal(t, 2, choice.Index, "highest-cost affordable minion")
}

func TestChoosePlaySpellForRemoval(t *testing.T) {
	gs := opponentTurn(5)
	gs.Opponent.Hand = []string{cards.Colossus, cards.Fireball}
	target := place(gs, game.SidePlayer, cards.Berserker)

	choice := choosePlay(gs, game.SideOpponent)

	assert.Equal(t, playSpell, choice.Kind)
	assert.Equal(t, 1, choice.Index)
	assert.Equal(t, game.MinionTarget(target), choice.Target)
}

func TestChoosePlaySkipsMinionsOnFullBoard(t *testing.T) {
	gs := opponentTurn(5)
	gs.Opponent.Hand = []string{cards.Colossus}
	for i := 0; i < game.BoardLimit; i++ {
		place(gs, game.SideOpponent, cards.YoungWarrior)
	}

	assert.Equal(t, playNone, choosePlay(gs, game.SideOpponent).Kind)
}

func TestChooseAttack(t *testing.T) {
	t.Run("favorable trade first", func(t *testing.T) {
		gs := opponentTurn(1)
		place(gs, game.SidePlayer, cards.Colossus)
		favorable := place(gs, game.SidePlayer, cards.YoungWarrior)
		attacker := place(gs, game.SideOpponent, cards.Colossus)

		target, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		require.True(t, ok)
		assert.Equal(t, game.MinionTarget(favorable), target)
	})

	t.Run("sacrificial kill", func(t *testing.T) {
		gs := opponentTurn(1)
		victim := place(gs, game.SidePlayer, cards.Berserker)
		attacker := place(gs, game.SideOpponent, cards.Berserker)

		target, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		require.True(t, ok)
		assert.Equal(t, game.MinionTarget(victim), target)
	})

	t.Run("face when nothing dies", func(t *testing.T) {
		gs := opponentTurn(1)
		place(gs, game.SidePlayer, cards.Colossus)
		attacker := place(gs, game.SideOpponent, cards.YoungWarrior)

		target, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		require.True(t, ok)
		assert.Equal(t, game.HeroTarget(game.SidePlayer), target)
	})

	t.Run("taunt restricts the pool", func(t *testing.T) {
		gs := opponentTurn(1)
		place(gs, game.SidePlayer, cards.YoungWarrior)
		place(gs, game.SidePlayer, cards.Guardian)
		attacker := place(gs, game.SideOpponent, cards.Berserker)

		_, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		assert.False(t, ok, "cannot kill the taunt and cannot go face")
	})

	t.Run("poison kills taunt", func(t *testing.T) {
		gs := opponentTurn(1)
		taunt := place(gs, game.SidePlayer, cards.Guardian)
		attacker := place(gs, game.SideOpponent, cards.VenomSpitter)

		target, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		require.True(t, ok)
		assert.Equal(t, game.MinionTarget(taunt), target)
	})

	t.Run("rush stays off the hero", func(t *testing.T) {
		gs := opponentTurn(1)
		attacker := place(gs, game.SideOpponent, cards.RushingWolf, func(m *game.MinionInstance) {
			m.JustSummoned = true
		})

		_, ok := chooseAttack(gs, game.SideOpponent, findMinion(gs, attacker))
		assert.False(t, ok)
	})
}

func findMinion(gs *game.GameState, id string) game.MinionInstance {
	side, i, ok := gs.FindMinion(id)
	if !ok {
		panic("missing minion " + id)
	}
	return gs.For(side).Board[i]
}

func TestShouldUseHeroPower(t *testing.T) {
	gs := opponentTurn(2)
	assert.True(t, shouldUseHeroPower(gs, game.SideOpponent), "empty enemy board")

	place(gs, game.SidePlayer, cards.Colossus)
	gs.Opponent.Hand = []string{cards.ArcaneBolt}
	assert.False(t, shouldUseHeroPower(gs, game.SideOpponent))

	gs.Player.HeroHealth = game.HeroPowerCost + 1
	assert.True(t, shouldUseHeroPower(gs, game.SideOpponent), "finishing range")

	gs.Player.HeroHealth = 10
	gs.Opponent.Hand = []string{cards.Colossus}
	assert.True(t, shouldUseHeroPower(gs, game.SideOpponent), "nothing affordable")

	gs.Opponent.Mana = 1
	assert.False(t, shouldUseHeroPower(gs, game.SideOpponent))
}

func TestPlannerPlaysFullTurn(t *testing.T) {
	r := game.NewResolver(zaptest.NewLogger(t), nil)
	planner := NewPlanner(r, zaptest.NewLogger(t))

	gs := opponentTurn(0)
	gs.Turn = game.SidePlayer
	gs.Opponent.MaxMana = 3
	gs.Opponent.Deck = []string{cards.Berserker}
	gs.Opponent.Hand = []string{cards.YoungWarrior, cards.Fireball}
	ready := place(gs, game.SideOpponent, cards.Colossus, func(m *game.MinionInstance) { m.CanAttack = false })

	next := planner.PlayTurn(gs)

	require.Equal(t, game.SidePlayer, next.Turn, "the turn goes back to the player")
	assert.Equal(t, 4, next.Opponent.MaxMana)
	assert.Equal(t, 2, next.Player.MaxMana, "player upkeep ran")
	assert.Empty(t, next.Player.Board)

	// Upkeep drew the Berserker. With 4 mana the planner plays the Berserker
	// (30) over Fireball face damage (9) and then the Young Warrior.
	names := map[string]bool{}
	for _, m := range next.Opponent.Board {
		names[m.CardID] = true
	}
	assert.True(t, names[cards.Berserker])
	assert.True(t, names[cards.YoungWarrior])
	assert.Equal(t, []string{cards.Fireball}, next.Opponent.Hand)

	assert.Equal(t, game.StartingHeroHealth-4, next.Player.HeroHealth, "colossus goes face; no mana left for the hero power")
	assert.NotEqual(t, -1, next.Opponent.FindMinion(ready))
}

func TestPlannerIgnoresFinishedGames(t *testing.T) {
	r := game.NewResolver(nil, nil)
	planner := NewPlanner(r, nil)
	gs := opponentTurn(3)
	gs.Player.HeroHealth = 0
	gs.Winner = game.WinnerOpponent

	assert.Same(t, gs, planner.PlayTurn(gs))
	assert.Nil(t, planner.PlayTurn(nil))
}

func TestPlannerCanWin(t *testing.T) {
	r := game.NewResolver(nil, nil)
	planner := NewPlanner(r, nil)
	gs := opponentTurn(3)
	gs.Player.HeroHealth = 3
	gs.Opponent.Hand = []string{cards.Fireball}

	next := planner.PlayTurn(gs)

	assert.Equal(t, game.WinnerOpponent, next.Winner)
	assert.Equal(t, game.SideOpponent, next.Turn)
}
