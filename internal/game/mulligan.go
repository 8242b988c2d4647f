package game

import (
	"math/rand/v2"
	"sort"

	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// PerformMulligan exchanges the selected starting-hand cards for the player
// and ends the mulligan phase. Out-of-range and repeated indices are ignored.
func (r *Resolver) PerformMulligan(gs *GameState, side Side, indices []int, rng *rand.Rand) *GameState {
	switch {
	case gs.IsOver():
		return r.reject(gs, "mulligan", side, "game is over")
	case gs.MulliganDone:
		return r.reject(gs, "mulligan", side, "mulligan already done")
	case side != SidePlayer:
		return r.reject(gs, "mulligan", side, "only the player mulligans")
	}
	if rng == nil {
		rng = NewRNG(1)
	}

	next := gs.Clone()
	p := next.For(side)

	picks := mulliganPicks(indices, len(p.Hand))
	for _, i := range picks {
		p.Deck = append(p.Deck, p.Hand[i])
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	}
	if len(picks) > 0 {
		shuffle(rng, p.Deck)
		r.drawCards(next, side, len(picks))
	}
	ensureCheapCard(next, side)

	next.MulliganDone = true
	next.addLog("The %s replaces %d cards", side, len(picks))
	r.publish(next, rules.Event{Type: rules.EventMulliganDone, Side: side.String(), Amount: len(picks)})

	if r.logger != nil {
		r.logger.Debug("mulligan performed",
			zap.String("match_id", next.MatchID),
			zap.Int("replaced", len(picks)),
			zap.Strings("hand", p.Hand),
		)
	}
	return next
}

// mulliganPicks returns unique in-range indices, highest first, so removing
// them in order never shifts a pending index.
func mulliganPicks(indices []int, handSize int) []int {
	seen := make(map[int]bool, len(indices))
	picks := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= handSize || seen[i] {
			continue
		}
		seen[i] = true
		picks = append(picks, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(picks)))
	return picks
}

// ensureCheapCard guarantees a card costing at most 1 in hand when the deck
// can supply one. The last hand card goes to the front of the deck.
func ensureCheapCard(gs *GameState, side Side) {
	p := gs.For(side)
	for _, id := range p.Hand {
		if c := cards.Cost(id); c >= 0 && c <= 1 {
			return
		}
	}

	found := -1
	for i, id := range p.Deck {
		if c := cards.Cost(id); c >= 0 && c <= 1 {
			found = i
			break
		}
	}
	if found < 0 {
		return
	}

	cheap := p.Deck[found]
	deck := make([]string, 0, len(p.Deck))
	if n := len(p.Hand); n > 0 {
		deck = append(deck, p.Hand[n-1])
		p.Hand = p.Hand[:n-1]
	}
	deck = append(deck, p.Deck[:found]...)
	deck = append(deck, p.Deck[found+1:]...)
	p.Deck = deck
	p.Hand = append(p.Hand, cheap)
	gs.addLog("The %s is guaranteed a cheap card: %s", side, cardName(cheap))
}
