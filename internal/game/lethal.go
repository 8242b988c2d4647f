package game

// ComputePotentialLethal reports whether side can bring the opposing hero to
// zero this turn with its ready attackers and, if still available, the hero
// power. Attack spent clearing Taunt minions does not reach the hero.
func ComputePotentialLethal(gs *GameState, side Side) bool {
	if gs == nil || gs.IsOver() || !gs.MulliganDone || gs.Turn != side {
		return false
	}
	me, enemy := gs.For(side), gs.For(side.Other())

	faceDamage := 0
	var attacks []int
	for _, m := range me.Board {
		if !CanAttack(m) || m.Attack <= 0 {
			continue
		}
		attacks = append(attacks, m.Attack)
		if CanHitHero(m) {
			faceDamage += m.Attack
		}
	}

	heroPower := 0
	if !me.HeroPowerUsed && me.Mana >= HeroPowerCost {
		heroPower = HeroPowerDamage
	}

	taunts := enemy.LivingTaunts()
	if len(taunts) == 0 {
		return faceDamage+heroPower >= enemy.HeroHealth
	}

	health := make([]int, len(taunts))
	for i, m := range taunts {
		health[i] = m.Health
	}
	clearing, ok := minimumClearingAttack(attacks, health)
	if !ok {
		return false
	}
	return max(faceDamage-clearing, 0)+heroPower >= enemy.HeroHealth
}

// minimumClearingAttack searches attacker-to-Taunt assignments for the least
// total attack that brings every Taunt to zero. Each attacker hits at most
// one Taunt and may sit out. ok is false when no assignment clears them all.
func minimumClearingAttack(attacks []int, tauntHealth []int) (best int, ok bool) {
	remaining := append([]int(nil), tauntHealth...)
	best = -1

	var search func(i, used, alive int)
	search = func(i, used, alive int) {
		if alive == 0 {
			if best < 0 || used < best {
				best = used
			}
			return
		}
		if (best >= 0 && used >= best) || i == len(attacks) {
			return
		}
		for t := range remaining {
			if remaining[t] <= 0 {
				continue
			}
			remaining[t] -= attacks[i]
			left := alive
			if remaining[t] <= 0 {
				left--
			}
			search(i+1, used+attacks[i], left)
			remaining[t] += attacks[i]
		}
		search(i+1, used, alive)
	}
	search(0, 0, len(remaining))

	return best, best >= 0
}
