package game

import (
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
)

// CardView is a hand card as shown to its owner.
type CardView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Cost     int    `json:"cost"`
	Playable bool   `json:"playable"`
}

// MinionView is a board minion.
type MinionView struct {
	ID           string   `json:"id"`
	CardID       string   `json:"card_id"`
	Name         string   `json:"name"`
	Attack       int      `json:"attack"`
	Health       int      `json:"health"`
	CanAttack    bool     `json:"can_attack"`
	JustSummoned bool     `json:"just_summoned"`
	DivineShield bool     `json:"divine_shield"`
	Keywords     []string `json:"keywords,omitempty"`
}

// PlayerView is one side of the table. Hand is omitted for the hidden side.
type PlayerView struct {
	HeroHealth    int          `json:"hero_health"`
	Mana          int          `json:"mana"`
	MaxMana       int          `json:"max_mana"`
	DeckSize      int          `json:"deck_size"`
	HandSize      int          `json:"hand_size"`
	Hand          []CardView   `json:"hand,omitempty"`
	Board         []MinionView `json:"board"`
	HeroPowerUsed bool         `json:"hero_power_used"`
	Fatigue       int          `json:"fatigue"`
}

// View is a read-only snapshot for rendering.
type View struct {
	MatchID      string     `json:"match_id"`
	Phase        string     `json:"phase"`
	Turn         string     `json:"turn"`
	TurnNumber   int        `json:"turn_number"`
	Winner       string     `json:"winner"`
	MulliganDone bool       `json:"mulligan_done"`
	Player       PlayerView `json:"player"`
	Opponent     PlayerView `json:"opponent"`
	Log          []string   `json:"log"`
	Lethal       bool       `json:"lethal"`
}

// ViewFor renders the state from the perspective of viewer. The other side's
// hand is reduced to a count.
func (gs *GameState) ViewFor(viewer Side) View {
	return View{
		MatchID:      gs.MatchID,
		Phase:        gs.Phase().String(),
		Turn:         gs.Turn.String(),
		TurnNumber:   gs.TurnNumber,
		Winner:       gs.Winner.String(),
		MulliganDone: gs.MulliganDone,
		Player:       playerView(gs, SidePlayer, viewer == SidePlayer),
		Opponent:     playerView(gs, SideOpponent, viewer == SideOpponent),
		Log:          cloneStrings(gs.Log),
		Lethal:       ComputePotentialLethal(gs, viewer),
	}
}

func playerView(gs *GameState, side Side, showHand bool) PlayerView {
	p := gs.For(side)
	pv := PlayerView{
		HeroHealth:    p.HeroHealth,
		Mana:          p.Mana,
		MaxMana:       p.MaxMana,
		DeckSize:      len(p.Deck),
		HandSize:      len(p.Hand),
		Board:         make([]MinionView, 0, len(p.Board)),
		HeroPowerUsed: p.HeroPowerUsed,
		Fatigue:       p.Fatigue,
	}
	if showHand {
		pv.Hand = make([]CardView, 0, len(p.Hand))
		for i, id := range p.Hand {
			c := cards.MustLookup(id)
			_, reason := playable(gs, side, i)
			pv.Hand = append(pv.Hand, CardView{
				ID:       c.ID,
				Name:     c.Name,
				Kind:     c.Kind.String(),
				Cost:     c.Cost,
				Playable: reason == "",
			})
		}
	}
	for _, m := range p.Board {
		pv.Board = append(pv.Board, MinionView{
			ID:           m.ID,
			CardID:       m.CardID,
			Name:         m.Card().Name,
			Attack:       m.Attack,
			Health:       m.Health,
			CanAttack:    CanAttack(m),
			JustSummoned: m.JustSummoned,
			DivineShield: m.DivineShield,
			Keywords:     keywordNames(m),
		})
	}
	return pv
}

func keywordNames(m MinionInstance) []string {
	c := m.Card()
	if c.Minion == nil {
		return nil
	}
	names := c.Minion.Keywords.Names()
	if len(c.Minion.Deathrattle) > 0 {
		names = append(names, "deathrattle")
	}
	return names
}
