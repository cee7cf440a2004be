package engagement

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MSAbhishek22/chameleon-agent/internal/http/middleware"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
	"github.com/MSAbhishek22/chameleon-agent/pkg/logging"
)

const modelVersion = "chameleon-v1.0"

// Handler wires HTTP requests to the engagement engine.
type Handler struct {
	engine *Engine
	store  Store
	logger *logging.Logger
}

// NewHandler creates an engagement handler.
func NewHandler(engine *Engine, store Store, logger *logging.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// honeypotRequest is the transport payload for one sender message.
type honeypotRequest struct {
	ConversationID string              `json:"conversation_id"`
	Message        string              `json:"message"`
	History        []TranscriptMessage `json:"history,omitempty"`
}

type engagementMetrics struct {
	TurnCount       int    `json:"turn_count"`
	Phase           string `json:"phase"`
	PersonaUsed     string `json:"persona_used"`
	ExtractionCount int    `json:"extraction_count"`
}

type responseMetadata struct {
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
	ModelVersion   string `json:"model_version"`
}

type honeypotResponse struct {
	ScamDetected          bool              `json:"scam_detected"`
	ScamType              string            `json:"scam_type,omitempty"`
	Confidence            float64           `json:"confidence"`
	Signals               []string          `json:"signals,omitempty"`
	AgentResponse         string            `json:"agent_response"`
	ResponseDegraded      bool              `json:"response_degraded"`
	ExtractedIntelligence intel.Record      `json:"extracted_intelligence"`
	EngagementMetrics     engagementMetrics `json:"engagement_metrics"`
	Metadata              responseMetadata  `json:"metadata"`
}

// Honeypot handles POST /honeypot.
func (h *Handler) Honeypot(w http.ResponseWriter, r *http.Request) {
	var req honeypotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode honeypot request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ConversationID) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "conversation_id and message are required", http.StatusBadRequest)
		return
	}

	result, err := h.engine.Process(r.Context(), Request{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		History:        req.History,
	})
	if err != nil {
		h.logger.Error("failed to process message", "error", err, "conversation_id", req.ConversationID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	sess := result.Session
	resp := honeypotResponse{
		ScamDetected:          result.ScamDetected,
		ScamType:              string(result.Category),
		Confidence:            result.Confidence,
		Signals:               result.Signals,
		AgentResponse:         result.Reply.Text,
		ResponseDegraded:      result.Reply.Fallback,
		ExtractedIntelligence: sess.Intel,
		EngagementMetrics: engagementMetrics{
			TurnCount:       sess.TurnCount,
			Phase:           string(sess.Phase),
			PersonaUsed:     result.PersonaName,
			ExtractionCount: sess.Intel.Count(),
		},
		Metadata: responseMetadata{
			ConversationID: sess.ID,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			ModelVersion:   modelVersion,
		},
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /admin/conversations/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load session", "error", err, "conversation_id", id)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	h.logger.Info("conversation reviewed",
		"conversation_id", id,
		"admin", middleware.AdminSubject(r.Context()),
		"entities", sess.Intel.Count(),
	)
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
