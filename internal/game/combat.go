package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap"
)

type damageSource struct {
	id        string
	name      string
	poisonous bool
}

func minionSource(m *MinionInstance) damageSource {
	return damageSource{id: m.ID, name: m.Card().Name, poisonous: m.IsPoisonous()}
}

// CanAttack reports whether a minion is ready to attack anything. Rush lets a
// just-summoned minion attack minions; the hero check is in AttackRejection.
func CanAttack(m MinionInstance) bool {
	return m.Alive() && m.CanAttack && (!m.JustSummoned || m.HasRush())
}

// CanHitHero reports whether a ready minion may attack the enemy hero.
func CanHitHero(m MinionInstance) bool {
	return CanAttack(m) && !m.JustSummoned
}

// CanAttackTarget applies Taunt: while the opposing board has a living Taunt
// minion, only Taunt minions are legal targets.
func CanAttackTarget(gs *GameState, side Side, target Target) bool {
	enemy := gs.For(side.Other())
	switch target.Kind {
	case TargetHero:
		return target.Side == side.Other() && !enemy.HasLivingTaunt()
	case TargetMinion:
		i := enemy.FindMinion(target.MinionID)
		if i < 0 || !enemy.Board[i].Alive() {
			return false
		}
		return enemy.Board[i].HasTaunt() || !enemy.HasLivingTaunt()
	default:
		return false
	}
}

// AttackRejection returns why side may not attack target with attackerID, or
// an empty string when the attack is legal.
func AttackRejection(gs *GameState, side Side, attackerID string, target Target) string {
	if reason, ok := canAct(gs, side); !ok {
		return reason
	}
	i := gs.For(side).FindMinion(attackerID)
	if i < 0 {
		return "no such attacker"
	}
	attacker := gs.For(side).Board[i]
	if !CanAttack(attacker) {
		return "attacker not ready"
	}
	if target.Kind == TargetHero && !CanHitHero(attacker) {
		return "rush minions cannot attack the hero this turn"
	}
	if !CanAttackTarget(gs, side, target) {
		return "illegal target"
	}
	return ""
}

// DeclareAttack resolves an attack. Minion combat is simultaneous and uses
// pre-exchange attack values; heroes never strike back.
func (r *Resolver) DeclareAttack(gs *GameState, side Side, attackerID string, target Target) *GameState {
	if reason := AttackRejection(gs, side, attackerID, target); reason != "" {
		return r.reject(gs, "attack", side, reason)
	}

	next := gs.Clone()
	me := next.For(side)
	attacker := &me.Board[me.FindMinion(attackerID)]
	atkSrc := minionSource(attacker)

	switch target.Kind {
	case TargetHero:
		next.addLog("The %s's %s attacks the %s hero for %d", side, atkSrc.name, side.Other(), attacker.Attack)
		r.damageHero(next, side.Other(), attacker.Attack, atkSrc)
		attacker.CanAttack = false
	case TargetMinion:
		enemy := next.For(side.Other())
		defender := &enemy.Board[enemy.FindMinion(target.MinionID)]
		defSrc := minionSource(defender)
		dealt, taken := attacker.Attack, defender.Attack

		next.addLog("The %s's %s attacks %s", side, atkSrc.name, defSrc.name)
		r.damageMinion(next, defender, dealt, atkSrc)
		r.damageMinion(next, attacker, taken, defSrc)
		if attacker.Alive() {
			attacker.CanAttack = false
		}
	}
	r.publish(next, rules.Event{
		Type:     rules.EventAttack,
		Side:     side.String(),
		SourceID: attackerID,
		TargetID: target.MinionID,
	})

	r.processDeaths(next)
	r.checkWinner(next)
	return next
}

func (r *Resolver) applyDamage(gs *GameState, effect cards.Effect, target Target, src damageSource) {
	switch effect.Kind {
	case cards.EffectDamage:
		switch target.Kind {
		case TargetHero:
			r.damageHero(gs, target.Side, effect.Amount, src)
		case TargetMinion:
			if owner, i, ok := gs.FindMinion(target.MinionID); ok {
				r.damageMinion(gs, &gs.For(owner).Board[i], effect.Amount, src)
			}
		}
	}
}

func (r *Resolver) damageHero(gs *GameState, side Side, amount int, src damageSource) {
	gs.For(side).HeroHealth -= amount
	r.publish(gs, rules.Event{
		Type:     rules.EventHeroDamaged,
		Side:     side.String(),
		SourceID: src.id,
		Amount:   amount,
	})
}

// damageMinion applies one damage instance. A Divine Shield absorbs the whole
// instance, including any poison. Otherwise poisonous damage above zero is
// always lethal.
func (r *Resolver) damageMinion(gs *GameState, m *MinionInstance, amount int, src damageSource) {
	if m.DivineShield {
		m.DivineShield = false
		gs.addLog("%s's Divine Shield absorbs the damage", m.Card().Name)
		r.publish(gs, rules.Event{
			Type:     rules.EventShieldConsumed,
			Side:     m.Owner.String(),
			SourceID: src.id,
			TargetID: m.ID,
			Amount:   amount,
		})
		return
	}

	m.Health -= amount
	r.publish(gs, rules.Event{
		Type:     rules.EventMinionDamaged,
		Side:     m.Owner.String(),
		SourceID: src.id,
		TargetID: m.ID,
		Amount:   amount,
	})

	if src.poisonous && amount > 0 {
		m.Health = min(m.Health, 0)
		gs.addLog("%s is poisoned by %s", m.Card().Name, src.name)
		r.publish(gs, rules.Event{
			Type:     rules.EventPoisonKill,
			Side:     m.Owner.String(),
			SourceID: src.id,
			TargetID: m.ID,
		})
	}
}

// ProcessDeaths runs one death pass.
func (r *Resolver) ProcessDeaths(gs *GameState) *GameState {
	if gs.IsOver() {
		return r.reject(gs, "process_deaths", gs.Turn, "game is over")
	}
	next := gs.Clone()
	r.processDeaths(next)
	return next
}

// processDeaths removes every minion at or below zero health from both boards
// at once, then fires their deathrattles in discovery order against the
// boards as they stand after the removal. Minions killed by those
// deathrattles stay on the board until the next pass.
func (r *Resolver) processDeaths(gs *GameState) {
	var dead []MinionInstance
	for _, side := range []Side{SidePlayer, SideOpponent} {
		p := gs.For(side)
		survivors := make([]MinionInstance, 0, len(p.Board))
		for _, m := range p.Board {
			if m.Alive() {
				survivors = append(survivors, m)
			} else {
				dead = append(dead, m)
			}
		}
		if len(survivors) != len(p.Board) {
			p.Board = survivors
		}
	}

	for i := range dead {
		m := &dead[i]
		card := m.Card()
		gs.addLog("The %s's %s dies", m.Owner, card.Name)
		r.publish(gs, rules.Event{
			Type:     rules.EventMinionDied,
			Side:     m.Owner.String(),
			SourceID: m.ID,
			CardID:   m.CardID,
		})
		if card.Minion == nil {
			continue
		}
		for _, effect := range card.Minion.Deathrattle {
			r.fireDeathrattle(gs, m, card, effect)
		}
	}

	if len(dead) > 0 && r.logger != nil {
		r.logger.Debug("deaths processed",
			zap.String("match_id", gs.MatchID),
			zap.Int("dead", len(dead)),
		)
	}
	r.checkWinner(gs)
}

func (r *Resolver) fireDeathrattle(gs *GameState, m *MinionInstance, card cards.Card, effect cards.Effect) {
	src := damageSource{id: m.ID, name: card.Name}
	enemySide := m.Owner.Other()

	switch effect.Target {
	case cards.TargetEnemyHero, cards.TargetAnyTarget:
		gs.addLog("Deathrattle: %s deals %d to the %s hero", card.Name, effect.Amount, enemySide)
		r.applyDamage(gs, effect, HeroTarget(enemySide), src)
	case cards.TargetAllEnemyMinions:
		gs.addLog("Deathrattle: %s deals %d to all %s minions", card.Name, effect.Amount, enemySide)
		enemy := gs.For(enemySide)
		for i := range enemy.Board {
			r.applyDamage(gs, effect, MinionTarget(enemy.Board[i].ID), src)
		}
	}
	r.publish(gs, rules.Event{
		Type:     rules.EventDeathrattle,
		Side:     m.Owner.String(),
		SourceID: m.ID,
		CardID:   m.CardID,
		Amount:   effect.Amount,
	})
}
