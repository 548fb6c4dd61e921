package batcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// memStore applies batches to in-memory reaction sets and can be told to
// fail the next N calls.
type memStore struct {
	mu      sync.Mutex
	posts   map[string]domain.ReactionSet
	calls   [][]domain.ReactionGroup
	failN   int
	onApply func()
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{posts: map[string]domain.ReactionSet{}}
	for _, id := range ids {
		s.posts[id] = domain.NewReactionSet()
	}
	return s
}

func (s *memStore) ApplyReactionBatch(_ context.Context, groups []domain.ReactionGroup) (int, error) {
	if s.onApply != nil {
		s.onApply()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, groups)
	if s.failN > 0 {
		s.failN--
		return 0, errors.New("store unavailable")
	}
	written := 0
	for _, g := range groups {
		rs, ok := s.posts[g.PostID]
		if !ok {
			continue
		}
		for _, e := range g.Entries {
			rs.Apply(e)
		}
		written++
	}
	return written, nil
}

func newTestBatcher(store Store) (*Batcher, *clock.Fake) {
	fc := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	return New(store, fc, 30*time.Second, zerolog.Nop()), fc
}

func TestAdd_ValidatesKindAndIDs(t *testing.T) {
	b, fc := newTestBatcher(newMemStore())

	if _, err := b.Add("p1", "like", "u1"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("unknown kind err = %v", err)
	}
	if _, err := b.Remove(" ", "semma", "u1"); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("blank post err = %v", err)
	}
	if b.Len() != 0 || fc.Pending() != 0 {
		t.Fatalf("rejected entries must not be queued: len=%d timers=%d", b.Len(), fc.Pending())
	}
}

func TestAdd_ArmsSingleTimerAndAssignsSequence(t *testing.T) {
	b, fc := newTestBatcher(newMemStore("p1"))

	e1, _ := b.Add("p1", "semma", "u1")
	e2, _ := b.Add("p1", "gethu", "u2")
	e3, _ := b.Remove("p1", "semma", "u1")
	if !(e1.Seq < e2.Seq && e2.Seq < e3.Seq) {
		t.Fatalf("sequence not increasing: %d %d %d", e1.Seq, e2.Seq, e3.Seq)
	}
	if fc.Pending() != 1 {
		t.Fatalf("pending timers = %d; want 1", fc.Pending())
	}
	if b.Len() != 3 {
		t.Fatalf("queue len = %d; want 3", b.Len())
	}
}

func TestTimer_FlushesGroupedByPostInFirstSeenOrder(t *testing.T) {
	store := newMemStore("p1", "p2")
	b, fc := newTestBatcher(store)

	b.Add("p2", "semma", "u1")
	b.Add("p1", "gethu", "u1")
	b.Add("p2", "semma", "u2")

	fc.Advance(29 * time.Second)
	if len(store.calls) != 0 {
		t.Fatalf("flushed before interval elapsed")
	}
	fc.Advance(time.Second)
	if len(store.calls) != 1 {
		t.Fatalf("store calls = %d; want 1", len(store.calls))
	}
	groups := store.calls[0]
	if len(groups) != 2 || groups[0].PostID != "p2" || groups[1].PostID != "p1" || len(groups[0].Entries) != 2 {
		t.Fatalf("unexpected grouping: %+v", groups)
	}
	if b.Len() != 0 || fc.Pending() != 0 {
		t.Fatalf("after success: len=%d timers=%d", b.Len(), fc.Pending())
	}
	if store.posts["p2"]["semma"].Count != 2 {
		t.Fatalf("p2 semma = %+v", store.posts["p2"]["semma"])
	}
}

func TestFlush_FailureKeepsEntriesAndRetriesWithoutDuplicates(t *testing.T) {
	store := newMemStore("p1")
	store.failN = 1
	b, fc := newTestBatcher(store)

	b.Add("p1", "semma", "u1")
	b.Add("p1", "semma", "u2")

	fc.Advance(30 * time.Second)
	if len(store.calls) != 1 {
		t.Fatalf("expected one failed attempt, got %d", len(store.calls))
	}
	if b.Len() != 2 {
		t.Fatalf("entries dropped on failure: len=%d", b.Len())
	}
	if fc.Pending() != 1 {
		t.Fatalf("retry not scheduled: timers=%d", fc.Pending())
	}

	b.Add("p1", "semma", "u1") // duplicate add while failing
	fc.Advance(30 * time.Second)

	if len(store.calls) != 2 {
		t.Fatalf("store calls = %d; want 2", len(store.calls))
	}
	if b.Len() != 0 {
		t.Fatalf("queue not drained after retry: %d", b.Len())
	}
	got := store.posts["p1"]["semma"]
	if got.Count != 2 || len(got.Users) != 2 {
		t.Fatalf("semma after retry = %+v; want two distinct voters", got)
	}
}

func TestFlush_EntriesArrivingDuringFlushSurvive(t *testing.T) {
	store := newMemStore("p1")
	b, fc := newTestBatcher(store)
	once := sync.Once{}
	store.onApply = func() {
		once.Do(func() { b.Add("p1", "gethu", "late") })
	}

	b.Add("p1", "semma", "u1")
	if err := b.FlushNow(context.Background()); err != nil {
		t.Fatalf("FlushNow: %v", err)
	}
	pending := b.Pending()
	if len(pending) != 1 || pending[0].UserID != "late" {
		t.Fatalf("late entry lost: %+v", pending)
	}
	if fc.Pending() != 1 {
		t.Fatalf("timer not re-armed for late entry: %d", fc.Pending())
	}
	fc.Advance(30 * time.Second)
	if store.posts["p1"]["gethu"].Count != 1 {
		t.Fatalf("late entry not flushed")
	}
}

func TestFlushNow_CancelsTimerAndIsNoopWhenEmpty(t *testing.T) {
	store := newMemStore("p1")
	b, fc := newTestBatcher(store)

	if err := b.FlushNow(context.Background()); err != nil || len(store.calls) != 0 {
		t.Fatalf("empty flush touched the store: calls=%d err=%v", len(store.calls), err)
	}

	b.Add("p1", "semma", "u1")
	if err := b.FlushNow(context.Background()); err != nil {
		t.Fatalf("FlushNow: %v", err)
	}
	if fc.Pending() != 0 {
		t.Fatalf("timer still pending after FlushNow")
	}
	fc.Advance(time.Minute)
	if len(store.calls) != 1 {
		t.Fatalf("cancelled timer fired: calls=%d", len(store.calls))
	}
}

func TestToggleParity_ThroughBatcher(t *testing.T) {
	for n := 1; n <= 6; n++ {
		store := newMemStore("p1")
		b, fc := newTestBatcher(store)
		for i := 0; i < n; i++ {
			if i%2 == 0 {
				b.Add("p1", "mokka_da", "u1")
			} else {
				b.Remove("p1", "mokka_da", "u1")
			}
		}
		fc.Advance(30 * time.Second)
		want := n%2 == 1
		if store.posts["p1"].Has("mokka_da", "u1") != want {
			t.Fatalf("n=%d: has=%v want %v", n, !want, want)
		}
	}
}

func TestMissingPostIsSkipped(t *testing.T) {
	store := newMemStore("p1")
	b, fc := newTestBatcher(store)
	b.Add("gone", "semma", "u1")
	b.Add("p1", "semma", "u1")
	fc.Advance(30 * time.Second)
	if b.Len() != 0 {
		t.Fatalf("entries for missing post must be dropped with the batch")
	}
	if store.posts["p1"]["semma"].Count != 1 {
		t.Fatalf("existing post not updated")
	}
}

func TestPendingAndOverlay(t *testing.T) {
	b, _ := newTestBatcher(newMemStore("p1", "p2"))
	b.Add("p1", "semma", "u1")
	b.Add("p2", "gethu", "u1")
	b.Remove("p1", "semma", "u1")
	b.Add("p1", "semma", "u2")

	p1 := b.Pending("p1")
	if len(p1) != 3 {
		t.Fatalf("pending for p1 = %d; want 3", len(p1))
	}
	for i := 1; i < len(p1); i++ {
		if p1[i-1].Seq >= p1[i].Seq {
			t.Fatalf("pending not in sequence order")
		}
	}

	persisted := domain.NewReactionSet()
	persisted.Add("semma", "u3")
	view := Overlay(persisted, "p1", b.Pending())
	if view.Has("semma", "u1") || !view.Has("semma", "u2") || view["semma"].Count != 2 {
		t.Fatalf("overlay = %+v", view["semma"])
	}
	if view["gethu"].Count != 0 {
		t.Fatalf("entry for another post leaked into overlay")
	}
	if persisted["semma"].Count != 1 {
		t.Fatalf("overlay mutated the persisted set")
	}
}
