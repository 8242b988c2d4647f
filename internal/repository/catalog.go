package repository

import (
	"strings"

	"github.com/tavernforge/tavern-server-go/internal/game/cards"
)

type cardRow struct {
	id       string
	name     string
	kind     string
	cost     int
	attack   *int
	health   *int
	keywords string
}

// catalogRow flattens a card for the cards table. Spells leave attack and
// health NULL.
func catalogRow(c cards.Card) cardRow {
	row := cardRow{
		id:   c.ID,
		name: c.Name,
		kind: c.Kind.String(),
		cost: c.Cost,
	}
	if c.IsMinion() {
		attack, health := c.Minion.Attack, c.Minion.Health
		row.attack = &attack
		row.health = &health
		row.keywords = strings.Join(c.Minion.Keywords.Names(), ",")
	}
	return row
}
