package ai

import (
	"sort"

	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap"
)

// MaxPlaysPerTurn bounds the card-play loop of a planned turn.
const MaxPlaysPerTurn = 3

// Scoring weights.
const (
	removalBase       = 100
	removalAttackMult = 2
	faceDamageMult    = 3
	minionCostMult    = 15
)

// Policy drives one side through a full turn and hands the turn over.
type Policy interface {
	PlayTurn(gs *game.GameState) *game.GameState
}

// candidate is an affordable hand card.
type candidate struct {
	Index int
	Card  cards.Card
}

// spellPlan is a scored spell with the target it would be cast at.
type spellPlan struct {
	candidate
	Target game.Target
	Score  int
}

// playKind is what the planner decided to do with a card.
type playKind int

const (
	playNone playKind = iota
	playMinion
	playSpell
)

type play struct {
	Kind   playKind
	Index  int
	Target game.Target
}

// Planner is the one-ply greedy opponent.
type Planner struct {
	resolver *game.Resolver
	logger   *zap.Logger
}

// NewPlanner creates a planner that acts through resolver.
func NewPlanner(resolver *game.Resolver, logger *zap.Logger) *Planner {
	return &Planner{
		resolver: resolver,
		logger:   logger,
	}
}

// PlayTurn plays the opponent's turn. When the player still holds the turn it
// is ended first, which runs the opponent's upkeep. The returned state is on
// the player's turn unless the match ended.
func (p *Planner) PlayTurn(gs *game.GameState) *game.GameState {
	if gs == nil || gs.IsOver() {
		return gs
	}
	side := game.SideOpponent
	next := gs
	if next.Turn != side {
		next = p.resolver.EndTurn(next)
		if next == gs || next.IsOver() {
			return next
		}
	}

	plays := 0
	for plays < MaxPlaysPerTurn && !next.IsOver() {
		choice := choosePlay(next, side)
		if choice.Kind == playNone {
			break
		}
		var after *game.GameState
		switch choice.Kind {
		case playMinion:
			after = p.resolver.PlayCard(next, side, choice.Index)
		case playSpell:
			after = p.resolver.PlaySpellAt(next, side, choice.Index, choice.Target)
		}
		if after == next {
			break
		}
		next = after
		plays++
	}
	if next.IsOver() {
		return next
	}

	for _, id := range minionIDs(next.For(side).Board) {
		if next.IsOver() {
			return next
		}
		i := next.For(side).FindMinion(id)
		if i < 0 {
			continue
		}
		target, ok := chooseAttack(next, side, next.For(side).Board[i])
		if !ok {
			continue
		}
		next = p.resolver.DeclareAttack(next, side, id, target)
	}
	if next.IsOver() {
		return next
	}
	if hasDeadMinions(next) {
		next = p.resolver.ProcessDeaths(next)
	}

	if shouldUseHeroPower(next, side) {
		next = p.resolver.UseHeroPower(next, side)
	}
	if next.IsOver() {
		return next
	}

	if p.logger != nil {
		p.logger.Debug("planner turn complete",
			zap.String("match_id", next.MatchID),
			zap.Int("plays", plays),
			zap.Int("board", len(next.For(side).Board)),
			zap.Int("player_health", next.Player.HeroHealth),
		)
	}
	return p.resolver.EndTurn(next)
}

func minionIDs(board []game.MinionInstance) []string {
	ids := make([]string, len(board))
	for i, m := range board {
		ids[i] = m.ID
	}
	return ids
}

func hasDeadMinions(gs *game.GameState) bool {
	for _, side := range []game.Side{game.SidePlayer, game.SideOpponent} {
		for _, m := range gs.For(side).Board {
			if !m.Alive() {
				return true
			}
		}
	}
	return false
}

// affordableCards lists the hand cards side can pay for, in hand order.
func affordableCards(p *game.PlayerState) []candidate {
	var out []candidate
	for i, id := range p.Hand {
		c, ok := cards.Lookup(id)
		if !ok || c.Cost > p.Mana {
			continue
		}
		out = append(out, candidate{Index: i, Card: c})
	}
	return out
}

// canKill reports whether a single hit of damage removes m.
func canKill(damage int, poisonous bool, m game.MinionInstance) bool {
	if damage <= 0 || m.DivineShield || !m.Alive() {
		return false
	}
	return poisonous || m.Health <= damage
}

// scoreSpell picks the best use of a spell: removing a minion it can kill,
// scored 100 + 2*attack + health, or going face for 3*damage.
func scoreSpell(c candidate, enemySide game.Side, enemyBoard []game.MinionInstance) spellPlan {
	effect, ok := c.Card.PrimaryEffect()
	if !ok {
		return spellPlan{candidate: c, Score: -1}
	}
	best := spellPlan{candidate: c, Score: -1}
	if effect.Target == cards.TargetAnyTarget {
		for _, m := range enemyBoard {
			if !canKill(effect.Amount, false, m) {
				continue
			}
			score := removalBase + removalAttackMult*m.Attack + m.Health
			if score > best.Score {
				best.Target = game.MinionTarget(m.ID)
				best.Score = score
			}
		}
	}
	if face := faceDamageMult * effect.Amount; face > best.Score {
		best.Target = game.HeroTarget(enemySide)
		best.Score = face
	}
	return best
}

// scoreMinion is the mana-efficiency proxy used against spells.
func scoreMinion(c candidate) int {
	return minionCostMult * c.Card.Cost
}

// bestMinion returns the highest-cost affordable minion, first in hand order
// on ties.
func bestMinion(choices []candidate) (candidate, bool) {
	var minions []candidate
	for _, c := range choices {
		if c.Card.IsMinion() {
			minions = append(minions, c)
		}
	}
	if len(minions) == 0 {
		return candidate{}, false
	}
	sort.SliceStable(minions, func(i, j int) bool {
		return minions[i].Card.Cost > minions[j].Card.Cost
	})
	return minions[0], true
}

// bestSpell returns the highest-scoring affordable spell.
func bestSpell(choices []candidate, enemySide game.Side, enemyBoard []game.MinionInstance) (spellPlan, bool) {
	var best spellPlan
	found := false
	for _, c := range choices {
		if !c.Card.IsSpell() {
			continue
		}
		plan := scoreSpell(c, enemySide, enemyBoard)
		if plan.Score < 0 {
			continue
		}
		if !found || plan.Score > best.Score {
			best, found = plan, true
		}
	}
	return best, found
}

// choosePlay decides the next card to play. A spell wins only when it
// outscores the best minion.
func choosePlay(gs *game.GameState, side game.Side) play {
	me := gs.For(side)
	choices := affordableCards(me)
	if len(choices) == 0 {
		return play{Kind: playNone}
	}
	enemySide := side.Other()
	spell, hasSpell := bestSpell(choices, enemySide, gs.For(enemySide).Board)
	minion, hasMinion := bestMinion(choices)

	if hasMinion && len(me.Board) >= game.BoardLimit {
		hasMinion = false
	}
	switch {
	case hasSpell && hasMinion:
		if spell.Score > scoreMinion(minion) {
			return play{Kind: playSpell, Index: spell.Index, Target: spell.Target}
		}
		return play{Kind: playMinion, Index: minion.Index}
	case hasSpell:
		return play{Kind: playSpell, Index: spell.Index, Target: spell.Target}
	case hasMinion:
		return play{Kind: playMinion, Index: minion.Index}
	}
	return play{Kind: playNone}
}

// chooseAttack picks a target for a ready attacker: a trade it survives, then
// any kill, then the enemy hero. While a Taunt stands only Taunts are
// considered.
func chooseAttack(gs *game.GameState, side game.Side, attacker game.MinionInstance) (game.Target, bool) {
	if !game.CanAttack(attacker) || attacker.Attack <= 0 {
		return game.Target{}, false
	}
	enemy := gs.For(side.Other())
	pool := enemy.LivingTaunts()
	taunted := len(pool) > 0
	if !taunted {
		for _, m := range enemy.Board {
			if m.Alive() {
				pool = append(pool, m)
			}
		}
	}

	poisonous := attacker.IsPoisonous()
	survives := func(defender game.MinionInstance) bool {
		return attacker.DivineShield || defender.Attack < attacker.Health
	}
	for _, m := range pool {
		if canKill(attacker.Attack, poisonous, m) && survives(m) {
			return game.MinionTarget(m.ID), true
		}
	}
	for _, m := range pool {
		if canKill(attacker.Attack, poisonous, m) {
			return game.MinionTarget(m.ID), true
		}
	}
	if taunted || !game.CanHitHero(attacker) {
		return game.Target{}, false
	}
	return game.HeroTarget(side.Other()), true
}

// shouldUseHeroPower fires the hero power when the enemy board is empty, the
// enemy hero is in range of a finish, or there is nothing else to spend mana
// on.
func shouldUseHeroPower(gs *game.GameState, side game.Side) bool {
	if game.HeroPowerRejection(gs, side) != "" {
		return false
	}
	enemy := gs.For(side.Other())
	switch {
	case len(enemy.Board) == 0:
		return true
	case enemy.HeroHealth <= game.HeroPowerCost+1:
		return true
	case len(affordableCards(gs.For(side))) == 0:
		return true
	}
	return false
}
