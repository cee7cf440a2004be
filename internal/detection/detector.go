package detection

import (
	"math"
	"strings"
)

const (
	keywordWeight = 0.1
	keywordCap    = 0.5
	patternWeight = 0.2
	patternCap    = 0.6

	// ScamThreshold is the minimum confidence at which a message is
	// reported as a scam.
	ScamThreshold = 0.30
)

// Result is the outcome of classifying a single message.
type Result struct {
	IsScam     bool     `json:"is_scam"`
	Category   Category `json:"category,omitempty"`
	Confidence float64  `json:"confidence"`
	Signals    []string `json:"signals,omitempty"`
}

// Classify scores one message against every category's pattern table and
// returns the best match. History is accepted for interface symmetry with
// the transport payload; scoring looks at the current message only.
//
// Scoring per category: each distinct keyword hit adds 0.1 (capped at 0.5),
// each distinct phrase pattern hit adds 0.2 (capped at 0.6). The winning
// category then receives a fixed boost per matched signal group. Confidence
// is clamped to [0, 1] and rounded to 2 decimals, so three keyword hits
// report exactly 0.3. Never fails; an empty message scores zero.
func Classify(message string, history []string) Result {
	_ = history
	lower := strings.ToLower(message)

	// Ties (including the all-zero case) resolve to the earliest declared
	// category so repeated runs classify identically.
	best := categoryOrder[0]
	bestScore := categoryScore(lower, scamPatterns[best])
	for _, cat := range categoryOrder[1:] {
		score := categoryScore(lower, scamPatterns[cat])
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	var signals []string
	for _, group := range signalGroups {
		if groupMatches(lower, group) {
			signals = append(signals, group.name)
			bestScore += group.boost
		}
	}

	confidence := round2(clamp01(bestScore))
	isScam := confidence >= ScamThreshold

	result := Result{
		IsScam:     isScam,
		Confidence: confidence,
		Signals:    signals,
	}
	if isScam {
		result.Category = best
	}
	return result
}

func categoryScore(lower string, p categoryPatterns) float64 {
	keywordHits := 0
	for _, kw := range p.keywords {
		if strings.Contains(lower, kw) {
			keywordHits++
		}
	}
	patternHits := 0
	for _, re := range p.patterns {
		if re.MatchString(lower) {
			patternHits++
		}
	}

	score := min(float64(keywordHits)*keywordWeight, keywordCap)
	score += min(float64(patternHits)*patternWeight, patternCap)
	return score
}

func groupMatches(lower string, group signalGroup) bool {
	for _, re := range group.patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round2 keeps reported confidences at 2 decimals so summed weights land
// on their nominal values (0.1+0.1+0.1 reports 0.3, not 0.30000000000000004).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
