package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// StartTurn hands the turn to side and runs its upkeep.
func (r *Resolver) StartTurn(gs *GameState, side Side) *GameState {
	if gs.IsOver() {
		return r.reject(gs, "start_turn", side, "game is over")
	}
	if !gs.MulliganDone {
		return r.reject(gs, "start_turn", side, "mulligan pending")
	}
	next := gs.Clone()
	r.upkeep(next, side)
	return next
}

// EndTurn ends the current owner's turn and starts the other side's.
func (r *Resolver) EndTurn(gs *GameState) *GameState {
	if reason, ok := canAct(gs, gs.Turn); !ok {
		return r.reject(gs, "end_turn", gs.Turn, reason)
	}
	next := gs.Clone()
	ending := next.Turn
	next.addLog("The %s ends the turn", ending)
	r.publish(next, rules.Event{Type: rules.EventTurnEnded, Side: ending.String()})
	r.upkeep(next, ending.Other())
	return next
}

// upkeep refreshes mana and minions for side, then draws. The player also
// draws an extra card when the opponent has two or more living minions more.
func (r *Resolver) upkeep(gs *GameState, side Side) {
	if gs.Turn != side {
		gs.TurnNumber++
	}
	gs.Turn = side

	p := gs.For(side)
	p.MaxMana = min(ManaCap, p.MaxMana+1)
	p.Mana = p.MaxMana
	p.HeroPowerUsed = false
	for i := range p.Board {
		p.Board[i].CanAttack = true
		p.Board[i].JustSummoned = false
	}

	gs.addLog("Turn %d: the %s has %d mana", gs.TurnNumber, side, p.Mana)
	r.publish(gs, rules.Event{Type: rules.EventTurnStarted, Side: side.String(), Amount: p.Mana})

	draws := 1
	if side == SidePlayer && gs.Opponent.LivingCount()-gs.Player.LivingCount() >= 2 {
		draws++
		gs.addLog("Catch-up: the player draws an extra card")
	}
	r.drawCards(gs, side, draws)
	r.checkWinner(gs)

	if r.logger != nil {
		r.logger.Debug("turn started",
			zap.String("match_id", gs.MatchID),
			zap.String("side", side.String()),
			zap.Int("turn", gs.TurnNumber),
			zap.Int("mana", p.Mana),
			zap.Int("hand", len(p.Hand)),
		)
	}
}
