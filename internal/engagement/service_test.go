package engagement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
	"github.com/MSAbhishek22/chameleon-agent/pkg/logging"
)

type stubLLM struct {
	resp    LLMResponse
	err     error
	lastReq LLMRequest
	calls   int
}

func (s *stubLLM) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return s.resp, nil
}

func newTestEngine(llm LLMClient, cfg EngineConfig) (*Engine, *MemoryStore) {
	store := NewMemoryStore(0)
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	return NewEngine(store, llm, cfg, logging.New("error"), nil), store
}

func TestProcessScamMessage(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "  Oh no, which account is blocked?  "}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)

	assert.True(t, result.ScamDetected)
	assert.Equal(t, detection.CategoryFinancial, result.Category)
	assert.True(t, result.Engaged)
	assert.Equal(t, "Oh no, which account is blocked?", result.Reply.Text)
	assert.False(t, result.Reply.Fallback)
	assert.Equal(t, 1, result.Session.TurnCount)
	assert.Equal(t, PhaseTrustBuilding, result.Session.Phase)
	assert.NotEmpty(t, result.PersonaName)
}

func TestProcessPromptCarriesPersonaAndTactic(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "ok"}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})

	_, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)
	require.Equal(t, 1, llm.calls)
	require.Len(t, llm.lastReq.System, 1)

	prompt := llm.lastReq.System[0]
	assert.Contains(t, prompt, "TRUST_BUILDING")
	assert.Contains(t, strings.ToLower(prompt), "trust")
	require.Len(t, llm.lastReq.Messages, 1)
	assert.Equal(t, ChatRoleUser, llm.lastReq.Messages[0].Role)
}

func TestProcessNilLLMFallsBack(t *testing.T) {
	engine, _ := newTestEngine(nil, EngineConfig{EngageUnclassified: true})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)

	assert.True(t, result.Engaged)
	assert.True(t, result.Reply.Fallback)
	assert.NotEmpty(t, result.Reply.Text)
	assert.NotEmpty(t, result.Reply.Reason)
}

func TestProcessLLMErrorFallsBack(t *testing.T) {
	llm := &stubLLM{err: errors.New("provider down")}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)

	assert.True(t, result.Reply.Fallback)
	assert.Equal(t, fallbackUtterances[PhaseTrustBuilding], result.Reply.Text)
	assert.Contains(t, result.Reply.Reason, "provider down")
}

func TestProcessEmptyLLMTextFallsBack(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "   "}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)
	assert.True(t, result.Reply.Fallback)
}

func TestProcessDeclinesUnclassifiedWhenDisabled(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "hi"}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: false})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "hello there",
	})
	require.NoError(t, err)

	assert.False(t, result.ScamDetected)
	assert.False(t, result.Engaged)
	assert.Empty(t, result.Reply.Text)
	assert.Zero(t, llm.calls)
}

func TestProcessEngagesUnclassifiedByPolicy(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "hello, who is this?"}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})

	result, err := engine.Process(context.Background(), Request{
		ConversationID: "conv-1",
		Message:        "hello there",
	})
	require.NoError(t, err)

	assert.False(t, result.ScamDetected)
	assert.True(t, result.Engaged)
	assert.Equal(t, 1, llm.calls)
	// Generic probing persona until the conversation classifies.
	assert.Equal(t, "Anil Mehta", result.PersonaName)
}

func TestProcessAccumulatesIntelAcrossTurns(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "Let me note that down."}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})
	ctx := context.Background()

	result, err := engine.Process(ctx, Request{
		ConversationID: "conv-1",
		Message:        "Transfer to account 12345678901, IFSC: SBIN0001234",
	})
	require.NoError(t, err)
	require.True(t, result.Session.Intel.Has(intel.KindBankAccount))

	result, err = engine.Process(ctx, Request{
		ConversationID: "conv-1",
		Message:        "Or pay me at scammer@paytm",
	})
	require.NoError(t, err)

	assert.True(t, result.Session.Intel.Has(intel.KindBankAccount), "earlier intel must persist")
	assert.True(t, result.Session.Intel.Has(intel.KindUPI))
	assert.Equal(t, 2, result.Session.TurnCount)
}

func TestProcessDedupesRepeatedIntel(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "Noted."}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := engine.Process(ctx, Request{
			ConversationID: "conv-1",
			Message:        "Pay at scammer@paytm now",
		}); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	sess, ok, err := engine.store.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, sess.Intel[intel.KindUPI], 1)
}

func TestProcessCategorySticksAcrossTurns(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "ok"}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})
	ctx := context.Background()

	result, err := engine.Process(ctx, Request{
		ConversationID: "conv-1",
		Message:        "your account is blocked, act now",
	})
	require.NoError(t, err)
	require.Equal(t, detection.CategoryFinancial, result.Category)
	persona := result.PersonaName

	result, err = engine.Process(ctx, Request{
		ConversationID: "conv-1",
		Message:        "congratulations you won the lottery prize, claim your prize",
	})
	require.NoError(t, err)
	assert.Equal(t, detection.CategoryFinancial, result.Category)
	assert.Equal(t, persona, result.PersonaName)
}

func TestProcessPhaseAdvancesWithTurns(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "ok"}}
	engine, _ := newTestEngine(llm, EngineConfig{EngageUnclassified: true})
	ctx := context.Background()

	var result *Result
	var err error
	for i := 0; i < 8; i++ {
		result, err = engine.Process(ctx, Request{
			ConversationID: "conv-1",
			Message:        "your account is blocked",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseDeepExtraction, result.Session.Phase)
}
