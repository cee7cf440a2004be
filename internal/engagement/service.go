package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
	"github.com/MSAbhishek22/chameleon-agent/internal/observability/metrics"
	"github.com/MSAbhishek22/chameleon-agent/internal/persona"
	"github.com/MSAbhishek22/chameleon-agent/pkg/logging"
)

// TranscriptMessage is one turn of the transport-supplied history.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one inbound sender message plus optional transcript.
type Request struct {
	ConversationID string
	Message        string
	History        []TranscriptMessage
}

// Reply is the dialogue-generation outcome. Fallback marks a degraded
// canned utterance so callers cannot mistake it for a genuine reply.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the full outcome of processing one message.
type Result struct {
	ScamDetected bool
	Category     detection.Category
	Confidence   float64
	Signals      []string
	Engaged      bool
	Reply        Reply
	Session      *Session
	PersonaName  string
}

// EngineConfig tunes the engagement engine.
type EngineConfig struct {
	Model              string
	MaxTokens          int32
	Temperature        float32
	Timeout            time.Duration
	Workers            int
	EngageUnclassified bool
}

// Engine runs the per-message pipeline: classify, advance session state,
// generate the in-character reply, extract intelligence, persist.
type Engine struct {
	store   Store
	llm     LLMClient
	cfg     EngineConfig
	logger  *logging.Logger
	metrics *metrics.HoneypotMetrics

	// limiter bounds concurrent dialogue-generation calls.
	limiter chan struct{}
}

// NewEngine wires the engagement engine. llm may be nil, in which case
// every reply is the phase fallback utterance (useful in tests and dry
// runs).
func NewEngine(store Store, llm LLMClient, cfg EngineConfig, logger *logging.Logger, m *metrics.HoneypotMetrics) *Engine {
	if store == nil {
		panic("engagement: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 150
	}
	return &Engine{
		store:   store,
		llm:     llm,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		limiter: make(chan struct{}, cfg.Workers),
	}
}

// Process handles one inbound sender message end to end. No condition
// inside the pipeline is fatal: a failed generation degrades to a canned
// utterance, absent matches yield an unchanged record. Only a store error
// (Redis down) propagates.
func (e *Engine) Process(ctx context.Context, req Request) (*Result, error) {
	historyText := make([]string, 0, len(req.History))
	for _, m := range req.History {
		historyText = append(historyText, m.Content)
	}

	det := detection.Classify(req.Message, historyText)
	e.metrics.ObserveDetection(string(det.Category), det.IsScam)

	sess, err := e.store.Advance(ctx, req.ConversationID, req.Message, det)
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveMessage(string(sess.Phase))

	result := &Result{
		ScamDetected: det.IsScam,
		Category:     sess.Category,
		Confidence:   det.Confidence,
		Signals:      det.Signals,
		Session:      sess,
	}

	// Policy: unclassified senders are still engaged with the generic
	// probing persona unless that was explicitly disabled.
	if sess.Category == detection.CategoryNone && !e.cfg.EngageUnclassified {
		e.logger.Info("declining unclassified conversation",
			"conversation_id", req.ConversationID,
			"confidence", det.Confidence,
		)
		result.PersonaName = sess.Persona
		return result, nil
	}
	result.Engaged = true

	p := persona.ForCategory(sess.Category)
	result.PersonaName = p.Name
	tactic := TacticForTurn(sess.TurnCount)

	reply := e.generate(ctx, p, tactic, sess, req)
	result.Reply = reply

	// Harvest from everything seen this turn, including our own reply
	// (the sender may later be quoted back the details we asked about).
	texts := append(historyText, req.Message)
	if reply.Text != "" {
		texts = append(texts, reply.Text)
	}
	before := sess.Intel.Count()
	merged := intel.ExtractMessages(texts, sess.Intel)
	if merged.Count() != before {
		for kind, entries := range merged {
			e.metrics.ObserveEntities(string(kind), len(entries)-len(sess.Intel[kind]))
		}
	}

	sess, err = e.store.SaveIntel(ctx, req.ConversationID, merged)
	if err != nil {
		return nil, err
	}
	result.Session = sess

	e.logger.Info("message processed",
		"conversation_id", req.ConversationID,
		"category", string(sess.Category),
		"phase", string(sess.Phase),
		"turn", sess.TurnCount,
		"scam_detected", det.IsScam,
		"entities", sess.Intel.Count(),
		"fallback_reply", reply.Fallback,
	)
	return result, nil
}

// generate calls the dialogue generator behind the limiter and a bounded
// timeout. Any failure degrades to the phase's canned utterance.
func (e *Engine) generate(ctx context.Context, p persona.Persona, tactic Tactic, sess *Session, req Request) Reply {
	if e.llm == nil {
		return fallbackReply(sess.Phase, "no dialogue generator configured")
	}

	select {
	case e.limiter <- struct{}{}:
		defer func() { <-e.limiter }()
	case <-ctx.Done():
		e.metrics.ObserveFallbackReply()
		return fallbackReply(sess.Phase, "request cancelled while waiting for a worker")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	prompt := p.SystemPrompt(string(sess.Category), strings.ToUpper(string(sess.Phase)), tactic.Directive, sess.TurnCount)

	messages := make([]ChatMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		role := ChatRoleUser
		if m.Role == "agent" || m.Role == ChatRoleAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: req.Message})

	start := time.Now()
	resp, err := e.llm.Complete(callCtx, LLMRequest{
		Model:       e.cfg.Model,
		System:      []string{prompt},
		Messages:    messages,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		e.metrics.ObserveLLMLatency("error", elapsed)
		e.metrics.ObserveFallbackReply()
		e.logger.Warn("dialogue generation failed, using fallback utterance",
			"conversation_id", req.ConversationID,
			"phase", string(sess.Phase),
			"error", err,
		)
		return fallbackReply(sess.Phase, err.Error())
	}
	if strings.TrimSpace(resp.Text) == "" {
		e.metrics.ObserveLLMLatency("empty", elapsed)
		e.metrics.ObserveFallbackReply()
		return fallbackReply(sess.Phase, "generator returned empty text")
	}

	e.metrics.ObserveLLMLatency("ok", elapsed)
	return Reply{Text: strings.TrimSpace(resp.Text)}
}

// fallbackUtterances keep the persona plausibly alive when the generator
// is unavailable. Each stays on-mission for its phase.
var fallbackUtterances = map[Phase]string{
	PhaseTrustBuilding:  "Hello? Sorry, the network here is very bad. Can you explain that once more?",
	PhaseExtraction:     "My UPI app is not working again. Can you give me your account number so I try a direct transfer?",
	PhaseDeepExtraction: "That link is not opening on my phone. Is there another number or account I can use?",
}

func fallbackReply(phase Phase, reason string) Reply {
	text, ok := fallbackUtterances[phase]
	if !ok {
		text = fallbackUtterances[PhaseTrustBuilding]
	}
	return Reply{Text: text, Fallback: true, Reason: reason}
}
