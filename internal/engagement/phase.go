package engagement

// Phase is the strategic stage of an engagement. It only moves forward as
// the turn count grows.
type Phase string

const (
	PhaseTrustBuilding  Phase = "trust_building"
	PhaseExtraction     Phase = "extraction"
	PhaseDeepExtraction Phase = "deep_extraction"
)

// Turn thresholds for the phase staircase.
const (
	trustBuildingMaxTurn = 3
	extractionMaxTurn    = 7
)

// Tactic is the directive the dialogue generator receives for a phase. The
// engine never acts on it; it only shapes the generated reply.
type Tactic struct {
	Phase     Phase  `json:"phase"`
	Directive string `json:"directive"`
}

var tactics = map[Phase]Tactic{
	PhaseTrustBuilding: {
		Phase: PhaseTrustBuilding,
		Directive: "Build trust. Show the appropriate emotional response (worry, excitement, confusion). " +
			"Ask clarifying questions that seem natural. Do NOT offer to pay or share details yet.",
	},
	PhaseExtraction: {
		Phase: PhaseExtraction,
		Directive: "Express willingness to comply, then create a hurdle (UPI not working, battery low, app error). " +
			"Ask the sender for THEIR bank account details or an alternate payment method before you can proceed.",
	},
	PhaseDeepExtraction: {
		Phase: PhaseDeepExtraction,
		Directive: "Claim the previous payment method or link failed. Ask for a different phone number, " +
			"account, or URL. Request verification details \"for your safety\" and keep them talking.",
	},
}

// PhaseForTurn returns the phase for a given turn count: turns 1-3 build
// trust, 4-7 extract, 8+ extract aggressively.
func PhaseForTurn(turn int) Phase {
	switch {
	case turn <= trustBuildingMaxTurn:
		return PhaseTrustBuilding
	case turn <= extractionMaxTurn:
		return PhaseExtraction
	default:
		return PhaseDeepExtraction
	}
}

// TacticForTurn returns the phase and its directive for a turn count.
func TacticForTurn(turn int) Tactic {
	return tactics[PhaseForTurn(turn)]
}
