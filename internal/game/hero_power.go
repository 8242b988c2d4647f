package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
)

// UseHeroPower deals HeroPowerDamage to the opposing hero for HeroPowerCost
// mana, once per turn.
func (r *Resolver) UseHeroPower(gs *GameState, side Side) *GameState {
	if reason := HeroPowerRejection(gs, side); reason != "" {
		return r.reject(gs, "hero_power", side, reason)
	}

	next := gs.Clone()
	p := next.For(side)
	p.Mana -= HeroPowerCost
	p.HeroPowerUsed = true
	next.addLog("The %s uses the hero power: %d damage to the %s hero", side, HeroPowerDamage, side.Other())
	r.publish(next, rules.Event{Type: rules.EventHeroPower, Side: side.String(), Amount: HeroPowerDamage})
	r.damageHero(next, side.Other(), HeroPowerDamage, damageSource{id: "hero_power", name: "Hero Power"})
	r.checkWinner(next)
	return next
}

// HeroPowerRejection returns why side may not use the hero power, or an
// empty string.
func HeroPowerRejection(gs *GameState, side Side) string {
	if reason, ok := canAct(gs, side); !ok {
		return reason
	}
	p := gs.For(side)
	switch {
	case p.HeroPowerUsed:
		return "hero power already used"
	case p.Mana < HeroPowerCost:
		return "insufficient mana"
	}
	return ""
}
