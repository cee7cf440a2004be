package engagement

import "testing"

func TestPhaseForTurn(t *testing.T) {
	cases := []struct {
		turn int
		want Phase
	}{
		{1, PhaseTrustBuilding},
		{2, PhaseTrustBuilding},
		{3, PhaseTrustBuilding},
		{4, PhaseExtraction},
		{5, PhaseExtraction},
		{7, PhaseExtraction},
		{8, PhaseDeepExtraction},
		{20, PhaseDeepExtraction},
	}
	for _, tc := range cases {
		if got := PhaseForTurn(tc.turn); got != tc.want {
			t.Errorf("PhaseForTurn(%d) = %q, want %q", tc.turn, got, tc.want)
		}
	}
}

func TestPhaseNeverMovesBackward(t *testing.T) {
	rank := map[Phase]int{
		PhaseTrustBuilding:  0,
		PhaseExtraction:     1,
		PhaseDeepExtraction: 2,
	}
	prev := PhaseForTurn(1)
	for turn := 2; turn <= 30; turn++ {
		cur := PhaseForTurn(turn)
		if rank[cur] < rank[prev] {
			t.Fatalf("phase regressed from %q to %q at turn %d", prev, cur, turn)
		}
		prev = cur
	}
}

func TestTacticForTurn(t *testing.T) {
	for turn := 1; turn <= 10; turn++ {
		tactic := TacticForTurn(turn)
		if tactic.Phase != PhaseForTurn(turn) {
			t.Errorf("turn %d: tactic phase %q does not match %q", turn, tactic.Phase, PhaseForTurn(turn))
		}
		if tactic.Directive == "" {
			t.Errorf("turn %d: empty directive", turn)
		}
	}
}
