package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
)

// randomAction applies one random action for the side whose turn it is.
// Illegal choices are rejected by the resolver and simply cost a step.
func randomAction(r *Resolver, gs *GameState, rng *rand.Rand) *GameState {
	side := gs.Turn
	me, enemy := gs.For(side), gs.For(side.Other())

	switch rng.IntN(5) {
	case 0:
		if len(me.Hand) > 0 {
			return r.PlayCard(gs, side, rng.IntN(len(me.Hand)))
		}
	case 1:
		if len(me.Hand) > 0 {
			target := HeroTarget(side.Other())
			if len(enemy.Board) > 0 && rng.IntN(2) == 0 {
				target = MinionTarget(enemy.Board[rng.IntN(len(enemy.Board))].ID)
			}
			return r.PlaySpellAt(gs, side, rng.IntN(len(me.Hand)), target)
		}
	case 2:
		if len(me.Board) > 0 {
			attacker := me.Board[rng.IntN(len(me.Board))].ID
			target := HeroTarget(side.Other())
			if len(enemy.Board) > 0 && rng.IntN(2) == 0 {
				target = MinionTarget(enemy.Board[rng.IntN(len(enemy.Board))].ID)
			}
			return r.DeclareAttack(gs, side, attacker, target)
		}
	case 3:
		return r.UseHeroPower(gs, side)
	}
	return r.EndTurn(gs)
}

func checkInvariants(t *testing.T, gs *GameState, seed int64, step int) {
	t.Helper()
	for _, side := range []Side{SidePlayer, SideOpponent} {
		p := gs.For(side)
		require.LessOrEqualf(t, len(p.Hand), HandLimit, "seed %d step %d: %s hand", seed, step, side)
		require.LessOrEqualf(t, len(p.Board), BoardLimit, "seed %d step %d: %s board", seed, step, side)
		require.GreaterOrEqualf(t, p.Mana, 0, "seed %d step %d: %s mana", seed, step, side)
		require.LessOrEqualf(t, p.Mana, p.MaxMana, "seed %d step %d: %s mana", seed, step, side)
		require.LessOrEqualf(t, p.MaxMana, ManaCap, "seed %d step %d: %s max mana", seed, step, side)
		for _, m := range p.Board {
			require.Equal(t, side, m.Owner)
		}
	}
	heroDown := gs.Player.HeroHealth <= 0 || gs.Opponent.HeroHealth <= 0
	require.Equalf(t, heroDown, gs.IsOver(), "seed %d step %d: winner %s", seed, step, gs.Winner)
}

func TestRandomPlayoutsKeepInvariants(t *testing.T) {
	r := NewResolver(nil, nil)
	for seed := int64(1); seed <= 40; seed++ {
		rng := NewRNG(seed)
		gs := r.NewGame("playout", cards.BaseDeck(), cards.BaseDeck(), rng)
		gs = r.PerformMulligan(gs, SidePlayer, []int{rng.IntN(StartingHandSize)}, rng)
		checkInvariants(t, gs, seed, 0)

		for step := 1; step <= 600 && !gs.IsOver(); step++ {
			next := randomAction(r, gs, rng)
			checkInvariants(t, next, seed, step)
			if gs.IsOver() {
				require.Same(t, gs, next)
			}
			gs = next
		}
	}
}
