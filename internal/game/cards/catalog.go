package cards

// Card ids.
const (
	YoungWarrior    = "c_minion_young_warrior"
	StoneDefender   = "c_minion_stone_defender"
	Berserker       = "c_minion_berserker"
	Guardian        = "c_minion_guardian"
	Colossus        = "c_minion_colossus"
	ShieldBearer    = "c_minion_shield_bearer"
	RushingWolf     = "c_minion_rushing_wolf"
	HauntedWailer   = "c_minion_haunted_wailer"
	VenomSpitter    = "c_minion_venom_spitter"
	ExplodingGoblin = "c_minion_exploding_goblin"
	Fireball        = "c_spell_fireball"
	ArcaneBolt      = "c_spell_arcane_bolt"
)

var catalog = buildCatalog(
	minion(YoungWarrior, "Young Warrior", 1, 1, 2, Keywords{}),
	minion(StoneDefender, "Stone Defender", 2, 1, 4, Keywords{Taunt: true}),
	minion(Berserker, "Berserker", 2, 3, 2, Keywords{}),
	minion(Guardian, "Guardian", 3, 2, 5, Keywords{Taunt: true}),
	minion(Colossus, "Colossus", 4, 4, 4, Keywords{}),
	minion(ShieldBearer, "Shield Bearer", 1, 0, 4, Keywords{Taunt: true, DivineShield: true}),
	minion(RushingWolf, "Rushing Wolf", 1, 2, 1, Keywords{Rush: true}),
	minion(HauntedWailer, "Haunted Wailer", 2, 2, 1, Keywords{},
		Effect{Kind: EffectDamage, Amount: 1, Target: TargetEnemyHero}),
	minion(VenomSpitter, "Venom Spitter", 2, 1, 2, Keywords{Poisonous: true}),
	minion(ExplodingGoblin, "Exploding Goblin", 3, 3, 2, Keywords{},
		Effect{Kind: EffectDamage, Amount: 2, Target: TargetAllEnemyMinions}),
	spell(Fireball, "Fireball", 2, Effect{Kind: EffectDamage, Amount: 3, Target: TargetAnyTarget}),
	spell(ArcaneBolt, "Arcane Bolt", 1, Effect{Kind: EffectDamage, Amount: 2, Target: TargetAnyTarget}),
)

func minion(id, name string, cost, attack, health int, kw Keywords, deathrattle ...Effect) Card {
	return Card{
		ID:   id,
		Name: name,
		Kind: KindMinion,
		Cost: cost,
		Minion: &MinionStats{
			Attack:      attack,
			Health:      health,
			Keywords:    kw,
			Deathrattle: deathrattle,
		},
	}
}

func spell(id, name string, cost int, effects ...Effect) Card {
	return Card{
		ID:    id,
		Name:  name,
		Kind:  KindSpell,
		Cost:  cost,
		Spell: &SpellStats{Effects: effects},
	}
}

func buildCatalog(entries ...Card) map[string]Card {
	m := make(map[string]Card, len(entries))
	for _, c := range entries {
		m[c.ID] = c
	}
	return m
}

// BaseDeck returns a fresh copy of the default 20-card deck.
func BaseDeck() []string {
	deck := make([]string, 0, 20)
	for _, id := range []string{
		YoungWarrior, StoneDefender, Berserker, Guardian,
		Colossus, ShieldBearer, Fireball, ArcaneBolt,
	} {
		deck = append(deck, id, id)
	}
	return append(deck, RushingWolf, HauntedWailer, VenomSpitter, ExplodingGoblin)
}
