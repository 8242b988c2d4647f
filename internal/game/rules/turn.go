package rules

import (
	"fmt"
)

// Phase is the coarse state of a match.
type Phase int

const (
	PhaseMulligan Phase = iota
	PhasePlayerTurn
	PhaseOpponentTurn
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseMulligan:     "MULLIGAN",
	PhasePlayerTurn:   "PLAYER_TURN",
	PhaseOpponentTurn: "OPPONENT_TURN",
	PhaseGameOver:     "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsTurn reports whether the phase is one of the alternating turn phases.
func (p Phase) IsTurn() bool {
	return p == PhasePlayerTurn || p == PhaseOpponentTurn
}

// transitions lists the legal successor phases. Staying in the same phase is
// always legal and not listed.
var transitions = map[Phase][]Phase{
	PhaseMulligan:     {PhasePlayerTurn, PhaseOpponentTurn, PhaseGameOver},
	PhasePlayerTurn:   {PhaseOpponentTurn, PhaseGameOver},
	PhaseOpponentTurn: {PhasePlayerTurn, PhaseGameOver},
	PhaseGameOver:     nil,
}

// CanTransition reports whether a match may move from one phase to another.
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an error describing an illegal phase change.
func ValidateTransition(from, to Phase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}
	return nil
}
