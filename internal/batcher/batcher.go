// Package batcher coalesces reaction toggles in memory and drains them into
// the post store on a fixed interval.
//
// Enqueueing never touches the store. A single pending timer triggers a
// flush; a flush captures the queue prefix present when it starts, groups it
// by post and hands the groups to the store as one atomic write. On success
// exactly that prefix is dropped, entries that arrived meanwhile stay queued
// and re-arm the timer. On failure nothing is dropped and the timer is re-armed
// after the same interval, indefinitely.
package batcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// DefaultInterval is the flush cadence used when none is configured.
const DefaultInterval = 30 * time.Second

// timerFlushTimeout bounds a flush started by the timer.
const timerFlushTimeout = 15 * time.Second

var (
	// ErrUnknownKind is returned for reaction kinds outside the vocabulary.
	ErrUnknownKind = errors.New("unknown reaction kind")
	// ErrInvalidEntry is returned when the post or user id is blank.
	ErrInvalidEntry = errors.New("post id and user id are required")
)

// Store persists a batch atomically: every group is applied or none is.
// written is the number of posts rewritten.
type Store interface {
	ApplyReactionBatch(ctx context.Context, groups []domain.ReactionGroup) (written int, err error)
}

// Batcher is safe for concurrent use.
type Batcher struct {
	store    Store
	clock    clock.Clock
	interval time.Duration
	log      zerolog.Logger

	flushMu sync.Mutex // serializes flushes

	mu    sync.Mutex
	queue []domain.ReactionBatchEntry
	timer clock.Timer
	gen   uint64 // identifies the pending timer
	seq   uint64
}

// New builds a Batcher. A non-positive interval falls back to
// DefaultInterval.
func New(store Store, clk clock.Clock, interval time.Duration, log zerolog.Logger) *Batcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Batcher{
		store:    store,
		clock:    clk,
		interval: interval,
		log:      log.With().Str("component", "reaction_batcher").Logger(),
	}
}

// Interval returns the flush cadence.
func (b *Batcher) Interval() time.Duration { return b.interval }

// Add queues "userID reacts with kind on postID".
func (b *Batcher) Add(postID, kind, userID string) (domain.ReactionBatchEntry, error) {
	return b.enqueue(postID, kind, userID, domain.ActionAdd)
}

// Remove queues "userID withdraws kind on postID".
func (b *Batcher) Remove(postID, kind, userID string) (domain.ReactionBatchEntry, error) {
	return b.enqueue(postID, kind, userID, domain.ActionRemove)
}

func (b *Batcher) enqueue(postID, kind, userID string, action domain.ReactionAction) (domain.ReactionBatchEntry, error) {
	if !domain.IsReaction(kind) {
		return domain.ReactionBatchEntry{}, ErrUnknownKind
	}
	if strings.TrimSpace(postID) == "" || strings.TrimSpace(userID) == "" {
		return domain.ReactionBatchEntry{}, ErrInvalidEntry
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	e := domain.ReactionBatchEntry{
		Seq:       b.seq,
		PostID:    postID,
		Kind:      kind,
		UserID:    userID,
		Action:    action,
		Timestamp: b.clock.Now(),
	}
	b.queue = append(b.queue, e)
	queueDepth.Set(float64(len(b.queue)))
	b.armLocked()
	return e, nil
}

// armLocked schedules a flush unless one is already pending. b.mu must be held.
func (b *Batcher) armLocked() {
	if b.timer != nil {
		return
	}
	b.gen++
	gen := b.gen
	b.timer = b.clock.AfterFunc(b.interval, func() { b.onTimer(gen) })
}

func (b *Batcher) onTimer(gen uint64) {
	b.mu.Lock()
	if b.timer == nil || b.gen != gen {
		// superseded by a flush that already cancelled this timer
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timerFlushTimeout)
	defer cancel()
	_ = b.Flush(ctx)
}

// Flush drains the entries queued at the moment it starts. It waits for an
// in-flight flush to finish first. A failed flush keeps every entry and
// schedules a retry after the normal interval.
func (b *Batcher) Flush(ctx context.Context) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	n := len(b.queue)
	if n == 0 {
		b.mu.Unlock()
		return nil
	}
	batch := make([]domain.ReactionBatchEntry, n)
	copy(batch, b.queue[:n])
	b.mu.Unlock()

	groups := Group(batch)
	start := time.Now()
	written, err := b.store.ApplyReactionBatch(ctx, groups)
	flushDuration.Observe(time.Since(start).Seconds())

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		flushes.WithLabelValues("error").Inc()
		b.log.Error().Err(err).Int("entries", n).Int("posts", len(groups)).Msg("reaction flush failed; will retry")
		b.armLocked()
		return err
	}

	rest := make([]domain.ReactionBatchEntry, len(b.queue)-n)
	copy(rest, b.queue[n:])
	b.queue = rest
	queueDepth.Set(float64(len(b.queue)))
	flushes.WithLabelValues("ok").Inc()
	flushedEntries.Add(float64(n))
	b.log.Debug().Int("entries", n).Int("posts", len(groups)).Int("written", written).Msg("reaction batch flushed")
	if len(b.queue) > 0 {
		b.armLocked()
	}
	return nil
}

// FlushNow cancels the pending timer and flushes immediately. Used on
// shutdown and sign-out.
func (b *Batcher) FlushNow(ctx context.Context) error {
	return b.Flush(ctx)
}

// Len returns the number of queued entries.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Pending returns the queued entries for the given posts in sequence order.
// With no post ids every queued entry is returned.
func (b *Batcher) Pending(postIDs ...string) []domain.ReactionBatchEntry {
	var want map[string]struct{}
	if len(postIDs) > 0 {
		want = make(map[string]struct{}, len(postIDs))
		for _, id := range postIDs {
			want[id] = struct{}{}
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ReactionBatchEntry, 0, len(b.queue))
	for _, e := range b.queue {
		if want != nil {
			if _, ok := want[e.PostID]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Group splits entries by post, posts in first-seen order and entries in
// their original order.
func Group(entries []domain.ReactionBatchEntry) []domain.ReactionGroup {
	idx := make(map[string]int)
	var groups []domain.ReactionGroup
	for _, e := range entries {
		i, ok := idx[e.PostID]
		if !ok {
			i = len(groups)
			idx[e.PostID] = i
			groups = append(groups, domain.ReactionGroup{PostID: e.PostID})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Overlay applies pending entries for one post on top of its persisted
// reaction set and returns the merged copy. Entries must be in sequence
// order; entries for other posts are ignored.
func Overlay(persisted domain.ReactionSet, postID string, pending []domain.ReactionBatchEntry) domain.ReactionSet {
	var rs domain.ReactionSet
	if persisted == nil {
		rs = domain.NewReactionSet()
	} else {
		rs = persisted.Clone()
	}
	for _, e := range pending {
		if e.PostID == postID {
			rs.Apply(e)
		}
	}
	return rs
}
