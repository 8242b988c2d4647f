// Package cards holds the static card catalog and deck lists.
package cards

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownCard is returned when a card id is not in the catalog.
var ErrUnknownCard = errors.New("unknown card")

// Kind discriminates minion and spell definitions.
type Kind int

const (
	KindMinion Kind = iota
	KindSpell
)

var kindNames = map[Kind]string{
	KindMinion: "Minion",
	KindSpell:  "Spell",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EffectKind is the kind of an effect. Only damage exists today.
type EffectKind int

const (
	EffectDamage EffectKind = iota
)

func (k EffectKind) String() string {
	switch k {
	case EffectDamage:
		return "Damage"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// TargetSelector chooses what an effect hits.
type TargetSelector int

const (
	TargetAnyTarget TargetSelector = iota
	TargetEnemyHero
	TargetAllEnemyMinions
)

var targetNames = map[TargetSelector]string{
	TargetAnyTarget:       "AnyTarget",
	TargetEnemyHero:       "EnemyHero",
	TargetAllEnemyMinions: "AllEnemyMinions",
}

func (t TargetSelector) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TargetSelector(%d)", int(t))
}

// Effect is a single resolved effect of a spell or deathrattle.
type Effect struct {
	Kind   EffectKind
	Amount int
	Target TargetSelector
}

// Keywords are the static minion keywords.
type Keywords struct {
	Taunt        bool
	DivineShield bool
	Poisonous    bool
	Rush         bool
}

// Names returns the set keywords in display order.
func (k Keywords) Names() []string {
	var names []string
	if k.Taunt {
		names = append(names, "taunt")
	}
	if k.DivineShield {
		names = append(names, "divine_shield")
	}
	if k.Poisonous {
		names = append(names, "poisonous")
	}
	if k.Rush {
		names = append(names, "rush")
	}
	return names
}

// MinionStats is the minion half of a card definition.
type MinionStats struct {
	Attack      int
	Health      int
	Keywords    Keywords
	Deathrattle []Effect
}

// SpellStats is the spell half of a card definition.
type SpellStats struct {
	Effects []Effect
}

// Card is an immutable catalog entry. Exactly one of Minion and Spell is set,
// matching Kind.
type Card struct {
	ID     string
	Name   string
	Kind   Kind
	Cost   int
	Minion *MinionStats
	Spell  *SpellStats
}

// clone returns a copy that shares no memory with c.
func (c Card) clone() Card {
	if c.Minion != nil {
		m := *c.Minion
		m.Deathrattle = append([]Effect(nil), c.Minion.Deathrattle...)
		c.Minion = &m
	}
	if c.Spell != nil {
		s := *c.Spell
		s.Effects = append([]Effect(nil), c.Spell.Effects...)
		c.Spell = &s
	}
	return c
}

// IsMinion reports whether the card is a minion.
func (c Card) IsMinion() bool { return c.Kind == KindMinion && c.Minion != nil }

// IsSpell reports whether the card is a spell.
func (c Card) IsSpell() bool { return c.Kind == KindSpell && c.Spell != nil }

// PrimaryEffect returns the first effect of a spell.
func (c Card) PrimaryEffect() (Effect, bool) {
	if !c.IsSpell() || len(c.Spell.Effects) == 0 {
		return Effect{}, false
	}
	return c.Spell.Effects[0], true
}

// Lookup returns the card with the given id.
func Lookup(id string) (Card, bool) {
	c, ok := catalog[id]
	if !ok {
		return Card{}, false
	}
	return c.clone(), true
}

// MustLookup returns the card with the given id and panics if it is unknown.
// Game state only ever holds ids that came out of the catalog.
func MustLookup(id string) Card {
	c, ok := catalog[id]
	if !ok {
		panic(fmt.Sprintf("cards: %s: %q", ErrUnknownCard, id))
	}
	return c.clone()
}

// Cost returns the mana cost of a card id, or -1 if unknown.
func Cost(id string) int {
	if c, ok := catalog[id]; ok {
		return c.Cost
	}
	return -1
}

// All returns every catalog entry ordered by cost, then id.
func All() []Card {
	result := make([]Card, 0, len(catalog))
	for _, c := range catalog {
		result = append(result, c.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Cost != result[j].Cost {
			return result[i].Cost < result[j].Cost
		}
		return result[i].ID < result[j].ID
	})
	return result
}
