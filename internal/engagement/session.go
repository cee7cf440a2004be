package engagement

import (
	"time"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
)

// recentWindow bounds how many sender messages a session remembers.
const recentWindow = 8

// Session is the cross-turn state for one conversation. All fields are
// owned by the store; callers receive copies and never share mutable state.
type Session struct {
	ID         string             `json:"id"`
	Category   detection.Category `json:"category"`
	Persona    string             `json:"persona"`
	Phase      Phase              `json:"phase"`
	TurnCount  int                `json:"turn_count"`
	Recent     []string           `json:"recent_messages"`
	Intel      intel.Record       `json:"intelligence"`
	StartedAt  time.Time          `json:"started_at"`
	LastSeenAt time.Time          `json:"last_seen_at"`
}

// newSession is the single construction path for sessions, so no partially
// initialized record is ever reachable.
func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Category:   detection.CategoryNone,
		Phase:      PhaseTrustBuilding,
		TurnCount:  0,
		Recent:     make([]string, 0, recentWindow),
		Intel:      intel.NewRecord(),
		StartedAt:  now,
		LastSeenAt: now,
	}
}

// repair re-derives any field a stored session is missing, so a partial
// prior write degrades to defaults instead of failing the request.
func (s *Session) repair(id string, now time.Time) {
	if s.ID == "" {
		s.ID = id
	}
	if s.Intel == nil {
		s.Intel = intel.NewRecord()
	}
	if s.Recent == nil {
		s.Recent = make([]string, 0, recentWindow)
	}
	if s.TurnCount < 0 {
		s.TurnCount = 0
	}
	if s.Phase == "" {
		s.Phase = PhaseForTurn(s.TurnCount)
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
}

// advance applies one inbound sender message: bump the turn, claim the
// category if still unset, append to the bounded window, recompute phase.
func (s *Session) advance(message string, det detection.Result, now time.Time) {
	s.TurnCount++
	if s.Category == detection.CategoryNone && det.IsScam {
		s.Category = det.Category
	}
	s.Recent = append(s.Recent, message)
	if len(s.Recent) > recentWindow {
		s.Recent = s.Recent[len(s.Recent)-recentWindow:]
	}
	s.Phase = PhaseForTurn(s.TurnCount)
	s.LastSeenAt = now
}

// clone returns a deep copy safe to hand outside the store's lock.
func (s *Session) clone() *Session {
	out := *s
	out.Recent = make([]string, len(s.Recent))
	copy(out.Recent, s.Recent)
	out.Intel = s.Intel.Clone()
	return &out
}
