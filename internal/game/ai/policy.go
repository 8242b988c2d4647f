package ai

import (
	"math/rand/v2"
	"sort"

	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap"
)

var (
	_ Policy = (*Planner)(nil)
	_ Policy = (*GreedyPolicy)(nil)
)

// GreedyPolicy stands in for the human side in simulations. It plays the
// cheapest cards it can afford, attacks random legal targets and uses the
// hero power with leftover mana.
type GreedyPolicy struct {
	resolver *game.Resolver
	side     game.Side
	rng      *rand.Rand
	logger   *zap.Logger
}

// NewGreedyPolicy creates a policy for side. rng picks attack targets.
func NewGreedyPolicy(resolver *game.Resolver, side game.Side, rng *rand.Rand, logger *zap.Logger) *GreedyPolicy {
	if rng == nil {
		rng = game.NewRNG(1)
	}
	return &GreedyPolicy{
		resolver: resolver,
		side:     side,
		rng:      rng,
		logger:   logger,
	}
}

// MulliganPicks returns the hand indices a greedy player throws back: every
// card costing more than three.
func MulliganPicks(hand []string) []int {
	var picks []int
	for i, id := range hand {
		if cards.Cost(id) > 3 {
			picks = append(picks, i)
		}
	}
	return picks
}

// PlayTurn plays out the policy's turn and ends it.
func (g *GreedyPolicy) PlayTurn(gs *game.GameState) *game.GameState {
	if gs == nil || gs.IsOver() || gs.Turn != g.side {
		return gs
	}
	next := gs

	for !next.IsOver() {
		choices := affordableCards(next.For(g.side))
		if len(choices) == 0 {
			break
		}
		sort.SliceStable(choices, func(i, j int) bool {
			return choices[i].Card.Cost < choices[j].Card.Cost
		})
		after := next
		for _, c := range choices {
			if c.Card.IsMinion() && len(next.For(g.side).Board) >= game.BoardLimit {
				continue
			}
			after = g.resolver.PlayCard(next, g.side, c.Index)
			break
		}
		if after == next {
			break
		}
		next = after
	}

	for _, id := range minionIDs(next.For(g.side).Board) {
		if next.IsOver() {
			return next
		}
		targets := g.legalTargets(next, id)
		if len(targets) == 0 {
			continue
		}
		next = g.resolver.DeclareAttack(next, g.side, id, targets[g.rng.IntN(len(targets))])
	}
	if next.IsOver() {
		return next
	}
	if hasDeadMinions(next) {
		next = g.resolver.ProcessDeaths(next)
	}
	if game.HeroPowerRejection(next, g.side) == "" {
		next = g.resolver.UseHeroPower(next, g.side)
	}
	if next.IsOver() {
		return next
	}

	if g.logger != nil {
		g.logger.Debug("greedy turn complete",
			zap.String("match_id", next.MatchID),
			zap.String("side", g.side.String()),
			zap.Int("board", len(next.For(g.side).Board)),
		)
	}
	return g.resolver.EndTurn(next)
}

func (g *GreedyPolicy) legalTargets(gs *game.GameState, attackerID string) []game.Target {
	enemySide := g.side.Other()
	candidates := []game.Target{game.HeroTarget(enemySide)}
	for _, m := range gs.For(enemySide).Board {
		candidates = append(candidates, game.MinionTarget(m.ID))
	}
	var legal []game.Target
	for _, t := range candidates {
		if game.AttackRejection(gs, g.side, attackerID, t) == "" {
			legal = append(legal, t)
		}
	}
	return legal
}
