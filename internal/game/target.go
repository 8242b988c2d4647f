package game

import "fmt"

// TargetKind discriminates hero and minion targets.
type TargetKind int

const (
	TargetHero TargetKind = iota
	TargetMinion
)

// Target is what an attack or targeted spell is aimed at.
type Target struct {
	Kind     TargetKind
	Side     Side   // hero targets
	MinionID string // minion targets
}

// HeroTarget aims at the hero of side.
func HeroTarget(side Side) Target {
	return Target{Kind: TargetHero, Side: side}
}

// MinionTarget aims at a minion instance.
func MinionTarget(id string) Target {
	return Target{Kind: TargetMinion, MinionID: id}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetHero:
		return fmt.Sprintf("%s hero", t.Side)
	case TargetMinion:
		return "minion " + t.MinionID
	default:
		return fmt.Sprintf("target(%d)", int(t.Kind))
	}
}
