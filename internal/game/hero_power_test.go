package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
)

func TestUseHeroPower(t *testing.T) {
	h := newGameHarness(t)
	gs := h.emptyGame()
	gs.Player.Mana = 3

	next := h.resolver.UseHeroPower(gs, SidePlayer)

	assert.Equal(t, StartingHeroHealth-HeroPowerDamage, next.Opponent.HeroHealth)
	assert.True(t, next.Player.HeroPowerUsed)
	assert.Equal(t, 1, next.Player.Mana)
	assert.True(t, logContains(next, "hero power"))
	assert.Equal(t, 1, h.countEvents(rules.EventHeroPower))
	assert.Equal(t, 1, h.countEvents(rules.EventHeroDamaged))

	assert.False(t, gs.Player.HeroPowerUsed, "input state must not be mutated")
}

func TestHeroPowerOncePerTurn(t *testing.T) {
	h := newGameHarness(t)
	gs := h.emptyGame()

	once := h.resolver.UseHeroPower(gs, SidePlayer)
	twice := h.resolver.UseHeroPower(once, SidePlayer)

	assert.Same(t, once, twice)
	assert.Equal(t, "hero power already used", HeroPowerRejection(once, SidePlayer))
}

func TestHeroPowerRejections(t *testing.T) {
	h := newGameHarness(t)

	poor := h.emptyGame()
	poor.Player.Mana = HeroPowerCost - 1
	assert.Equal(t, "insufficient mana", HeroPowerRejection(poor, SidePlayer))
	assert.Same(t, poor, h.resolver.UseHeroPower(poor, SidePlayer))

	gs := h.emptyGame()
	assert.Equal(t, "not your turn", HeroPowerRejection(gs, SideOpponent))
	assert.Empty(t, HeroPowerRejection(gs, SidePlayer))
}

func TestHeroPowerResetsOnUpkeep(t *testing.T) {
	h := newGameHarness(t)
	gs := h.emptyGame()
	gs.Player.Deck = []string{"c_minion_young_warrior"}
	gs.Opponent.Deck = []string{"c_minion_young_warrior"}

	gs = h.resolver.UseHeroPower(gs, SidePlayer)
	gs = h.resolver.EndTurn(gs)
	gs = h.resolver.EndTurn(gs)

	assert.Equal(t, SidePlayer, gs.Turn)
	assert.False(t, gs.Player.HeroPowerUsed)
}

func TestHeroPowerCanWin(t *testing.T) {
	h := newGameHarness(t)
	gs := h.emptyGame()
	gs.Opponent.HeroHealth = 1

	next := h.resolver.UseHeroPower(gs, SidePlayer)

	assert.Equal(t, WinnerPlayer, next.Winner)
	assert.Equal(t, 1, h.countEvents(rules.EventGameOver))
}
