package engagement

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
)

func TestMemoryStoreAdvanceCreatesSession(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	sess, err := store.Advance(ctx, "conv-1", "hello", detection.Result{})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if sess.ID != "conv-1" {
		t.Errorf("expected id conv-1, got %q", sess.ID)
	}
	if sess.TurnCount != 1 {
		t.Errorf("expected turn 1, got %d", sess.TurnCount)
	}
	if sess.Phase != PhaseTrustBuilding {
		t.Errorf("expected trust_building, got %q", sess.Phase)
	}
	if sess.Category != detection.CategoryNone {
		t.Errorf("expected no category, got %q", sess.Category)
	}
}

func TestMemoryStoreTurnCountMonotonic(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for i := 1; i <= 9; i++ {
		sess, err := store.Advance(ctx, "conv-1", fmt.Sprintf("message %d", i), detection.Result{})
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if sess.TurnCount != i {
			t.Fatalf("turn %d: got TurnCount %d", i, sess.TurnCount)
		}
		if sess.Phase != PhaseForTurn(i) {
			t.Fatalf("turn %d: got phase %q, want %q", i, sess.Phase, PhaseForTurn(i))
		}
	}
}

func TestMemoryStoreCategorySticky(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	// First turn does not classify.
	sess, _ := store.Advance(ctx, "conv-1", "hello", detection.Result{})
	if sess.Category != detection.CategoryNone {
		t.Fatalf("expected no category after neutral turn, got %q", sess.Category)
	}

	// Second turn classifies as financial.
	sess, _ = store.Advance(ctx, "conv-1", "your account is blocked", detection.Result{
		IsScam:   true,
		Category: detection.CategoryFinancial,
	})
	if sess.Category != detection.CategoryFinancial {
		t.Fatalf("expected financial, got %q", sess.Category)
	}
	if sess.Persona == "" {
		t.Fatal("expected a persona to be assigned")
	}
	persona := sess.Persona

	// A later, different classification must not reassign.
	sess, _ = store.Advance(ctx, "conv-1", "you won a lottery prize", detection.Result{
		IsScam:   true,
		Category: detection.CategoryPrize,
	})
	if sess.Category != detection.CategoryFinancial {
		t.Fatalf("category reassigned to %q", sess.Category)
	}
	if sess.Persona != persona {
		t.Fatalf("persona changed from %q to %q", persona, sess.Persona)
	}
}

func TestMemoryStoreRecentWindowBounded(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	var sess *Session
	for i := 1; i <= recentWindow+3; i++ {
		sess, _ = store.Advance(ctx, "conv-1", fmt.Sprintf("message %d", i), detection.Result{})
	}
	if len(sess.Recent) != recentWindow {
		t.Fatalf("expected window of %d, got %d", recentWindow, len(sess.Recent))
	}
	// Oldest surviving message is the one just past the overflow.
	if sess.Recent[0] != "message 4" {
		t.Errorf("expected oldest to be message 4, got %q", sess.Recent[0])
	}
	if sess.Recent[len(sess.Recent)-1] != fmt.Sprintf("message %d", recentWindow+3) {
		t.Errorf("expected newest to be last sent, got %q", sess.Recent[len(sess.Recent)-1])
	}
}

func TestMemoryStoreSaveIntelMerges(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	if _, err := store.Advance(ctx, "conv-1", "hello", detection.Result{}); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	rec := intel.NewRecord()
	rec.Add(intel.KindPhone, intel.Entity{Value: "9876543210", Confidence: 0.7})
	sess, err := store.SaveIntel(ctx, "conv-1", rec)
	if err != nil {
		t.Fatalf("SaveIntel: %v", err)
	}
	if !sess.Intel.Has(intel.KindPhone) {
		t.Fatal("expected phone intel in session")
	}

	// Duplicate value with lower confidence must not add or downgrade.
	again := intel.NewRecord()
	again.Add(intel.KindPhone, intel.Entity{Value: "9876543210", Confidence: 0.5})
	sess, err = store.SaveIntel(ctx, "conv-1", again)
	if err != nil {
		t.Fatalf("SaveIntel: %v", err)
	}
	phones := sess.Intel[intel.KindPhone]
	if len(phones) != 1 {
		t.Fatalf("expected 1 phone entity, got %d", len(phones))
	}
	if phones[0].Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", phones[0].Confidence)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	sess, _ := store.Advance(ctx, "conv-1", "hello", detection.Result{})
	sess.Recent[0] = "tampered"
	sess.Intel.Add(intel.KindPhone, intel.Entity{Value: "9876543210", Confidence: 0.7})

	fresh, ok, err := store.Get(ctx, "conv-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if fresh.Recent[0] != "hello" {
		t.Errorf("stored message mutated through the returned copy: %q", fresh.Recent[0])
	}
	if fresh.Intel.Has(intel.KindPhone) {
		t.Error("stored intel mutated through the returned copy")
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore(0)
	_, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unknown conversation")
	}
}

func TestMemoryStoreConcurrentAdvance(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := store.Advance(ctx, "conv-1", "msg", detection.Result{}); err != nil {
					t.Errorf("Advance: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	sess, ok, _ := store.Get(ctx, "conv-1")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if sess.TurnCount != goroutines*perGoroutine {
		t.Fatalf("expected turn count %d, got %d", goroutines*perGoroutine, sess.TurnCount)
	}
}

func TestMemoryStoreSweepEvictsIdleSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	store.Advance(ctx, "stale", "hello", detection.Result{})

	now = now.Add(30 * time.Second)
	store.Advance(ctx, "fresh", "hello", detection.Result{})

	now = now.Add(45 * time.Second)
	store.sweep(now)

	if _, ok, _ := store.Get(ctx, "stale"); ok {
		t.Error("expected stale session to be evicted")
	}
	if _, ok, _ := store.Get(ctx, "fresh"); !ok {
		t.Error("expected fresh session to survive")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", store.Len())
	}
}
