package rules

import "testing"

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseMulligan, PhasePlayerTurn, true},
		{PhaseMulligan, PhaseGameOver, true},
		{PhasePlayerTurn, PhaseOpponentTurn, true},
		{PhaseOpponentTurn, PhasePlayerTurn, true},
		{PhasePlayerTurn, PhaseGameOver, true},
		{PhasePlayerTurn, PhasePlayerTurn, true},
		{PhasePlayerTurn, PhaseMulligan, false},
		{PhaseGameOver, PhasePlayerTurn, false},
		{PhaseGameOver, PhaseMulligan, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
		err := ValidateTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Errorf("ValidateTransition(%s, %s) unexpected error: %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ValidateTransition(%s, %s) expected error", tc.from, tc.to)
		}
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseOpponentTurn.String() != "OPPONENT_TURN" {
		t.Fatalf("unexpected name %q", PhaseOpponentTurn.String())
	}
	if Phase(42).String() != "PHASE_42" {
		t.Fatalf("unexpected fallback name %q", Phase(42).String())
	}
	if !PhasePlayerTurn.IsTurn() || PhaseMulligan.IsTurn() {
		t.Fatal("IsTurn misclassified a phase")
	}
}
