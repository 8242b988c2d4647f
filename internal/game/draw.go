package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
)

// Draw draws n cards for side outside of the normal upkeep.
func (r *Resolver) Draw(gs *GameState, side Side, n int) *GameState {
	if gs.IsOver() {
		return r.reject(gs, "draw", side, "game is over")
	}
	if n <= 0 {
		return r.reject(gs, "draw", side, "nothing to draw")
	}
	next := gs.Clone()
	r.drawCards(next, side, n)
	return next
}

// drawCards moves cards from the front of the deck into the hand. An empty
// deck costs escalating fatigue damage, a full hand burns the card.
func (r *Resolver) drawCards(gs *GameState, side Side, n int) {
	p := gs.For(side)
	for i := 0; i < n && !gs.IsOver(); i++ {
		if len(p.Deck) == 0 {
			p.Fatigue++
			p.HeroHealth -= p.Fatigue
			gs.addLog("The %s hero takes %d fatigue damage", side, p.Fatigue)
			r.publish(gs, rules.Event{Type: rules.EventFatigue, Side: side.String(), Amount: p.Fatigue})
			r.checkWinner(gs)
			continue
		}

		top := p.Deck[0]
		p.Deck = p.Deck[1:]
		if len(p.Hand) >= HandLimit {
			gs.addLog("The %s burns %s: hand limit reached", side, cardName(top))
			r.publish(gs, rules.Event{Type: rules.EventCardBurned, Side: side.String(), CardID: top})
			continue
		}
		p.Hand = append(p.Hand, top)
		r.publish(gs, rules.Event{Type: rules.EventCardDrawn, Side: side.String(), CardID: top})
	}
}

func cardName(id string) string {
	if c, ok := cards.Lookup(id); ok {
		return c.Name
	}
	return id
}
