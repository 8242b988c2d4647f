package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// PlayCard plays the card at handIndex. Minions enter the board, spells
// resolve their first effect without an explicit target.
func (r *Resolver) PlayCard(gs *GameState, side Side, handIndex int) *GameState {
	card, reason := playable(gs, side, handIndex)
	if reason != "" {
		return r.reject(gs, "play_card", side, reason)
	}

	next := gs.Clone()
	switch card.Kind {
	case cards.KindMinion:
		r.summon(next, side, handIndex, card)
	case cards.KindSpell:
		effect, _ := card.PrimaryEffect()
		payAndDiscard(next, side, handIndex, card)
		next.addLog("The %s casts %s", side, card.Name)
		r.publish(next, rules.Event{Type: rules.EventSpellCast, Side: side.String(), CardID: card.ID})
		r.resolveUntargeted(next, side, card, effect)
	}
	r.checkWinner(next)
	return next
}

// PlaySpellAt casts the spell at handIndex at an explicit target.
func (r *Resolver) PlaySpellAt(gs *GameState, side Side, handIndex int, target Target) *GameState {
	card, reason := playable(gs, side, handIndex)
	if reason != "" {
		return r.reject(gs, "play_spell", side, reason)
	}
	if !card.IsSpell() {
		return r.reject(gs, "play_spell", side, "not a spell")
	}
	effect, _ := card.PrimaryEffect()
	if reason := spellTargetRejection(gs, side, effect, target); reason != "" {
		return r.reject(gs, "play_spell", side, reason)
	}

	next := gs.Clone()
	payAndDiscard(next, side, handIndex, card)
	next.addLog("The %s casts %s at the %s", side, card.Name, describeTarget(next, target))
	r.publish(next, rules.Event{
		Type:     rules.EventSpellCast,
		Side:     side.String(),
		CardID:   card.ID,
		TargetID: target.MinionID,
	})

	switch effect.Target {
	case cards.TargetAnyTarget, cards.TargetEnemyHero:
		r.applyDamage(next, effect, target, damageSource{id: card.ID, name: card.Name})
		r.processDeaths(next)
	case cards.TargetAllEnemyMinions:
		r.resolveUntargeted(next, side, card, effect)
	}
	r.checkWinner(next)
	return next
}

// playable validates turn, index and mana for a hand card.
func playable(gs *GameState, side Side, handIndex int) (cards.Card, string) {
	if reason, ok := canAct(gs, side); !ok {
		return cards.Card{}, reason
	}
	p := gs.For(side)
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return cards.Card{}, "hand index out of range"
	}
	card, ok := cards.Lookup(p.Hand[handIndex])
	if !ok {
		return cards.Card{}, "unknown card"
	}
	if card.Cost > p.Mana {
		return cards.Card{}, "insufficient mana"
	}
	return card, ""
}

func spellTargetRejection(gs *GameState, side Side, effect cards.Effect, target Target) string {
	switch effect.Target {
	case cards.TargetAllEnemyMinions:
		return ""
	case cards.TargetEnemyHero:
		if target.Kind != TargetHero || target.Side != side.Other() {
			return "spell can only hit the enemy hero"
		}
		return ""
	case cards.TargetAnyTarget:
		switch target.Kind {
		case TargetHero:
			return ""
		case TargetMinion:
			owner, i, ok := gs.FindMinion(target.MinionID)
			if !ok || !gs.For(owner).Board[i].Alive() {
				return "no such minion"
			}
			return ""
		}
	}
	return "invalid target"
}

func payAndDiscard(gs *GameState, side Side, handIndex int, card cards.Card) {
	p := gs.For(side)
	p.Mana -= card.Cost
	p.Hand = append(p.Hand[:handIndex], p.Hand[handIndex+1:]...)
}

// summon puts a minion card onto the board. A full board refunds the mana
// and leaves the card in hand.
func (r *Resolver) summon(gs *GameState, side Side, handIndex int, card cards.Card) {
	p := gs.For(side)
	if len(p.Board) >= BoardLimit {
		gs.addLog("The %s has no room for %s", side, card.Name)
		r.publish(gs, rules.Event{Type: rules.EventBoardFull, Side: side.String(), CardID: card.ID})
		return
	}

	payAndDiscard(gs, side, handIndex, card)
	m := MinionInstance{
		ID:           gs.nextMinionID(),
		Owner:        side,
		CardID:       card.ID,
		Attack:       card.Minion.Attack,
		Health:       card.Minion.Health,
		CanAttack:    card.Minion.Keywords.Rush,
		JustSummoned: true,
		DivineShield: card.Minion.Keywords.DivineShield,
	}
	p.Board = append(p.Board, m)
	gs.addLog("The %s played %s (%d/%d)", side, card.Name, m.Attack, m.Health)
	r.publish(gs, rules.Event{
		Type:     rules.EventMinionPlayed,
		Side:     side.String(),
		SourceID: m.ID,
		CardID:   card.ID,
	})

	if r.logger != nil {
		r.logger.Debug("minion summoned",
			zap.String("match_id", gs.MatchID),
			zap.String("side", side.String()),
			zap.String("card_id", card.ID),
			zap.String("minion_id", m.ID),
		)
	}
}

// resolveUntargeted applies a spell effect that has no explicit target.
func (r *Resolver) resolveUntargeted(gs *GameState, side Side, card cards.Card, effect cards.Effect) {
	src := damageSource{id: card.ID, name: card.Name}
	switch effect.Target {
	case cards.TargetAnyTarget, cards.TargetEnemyHero:
		r.applyDamage(gs, effect, HeroTarget(side.Other()), src)
	case cards.TargetAllEnemyMinions:
		enemy := gs.For(side.Other())
		for i := range enemy.Board {
			r.applyDamage(gs, effect, MinionTarget(enemy.Board[i].ID), src)
		}
		r.processDeaths(gs)
	}
}

func describeTarget(gs *GameState, target Target) string {
	if target.Kind == TargetMinion {
		if owner, i, ok := gs.FindMinion(target.MinionID); ok {
			return owner.String() + " " + gs.For(owner).Board[i].Card().Name
		}
	}
	return target.String()
}
