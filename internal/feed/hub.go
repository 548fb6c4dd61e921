// Package feed fans the newest posts out to live subscribers.
//
// Publish reloads the snapshot once and offers it to every subscriber. Each
// subscriber channel holds at most one snapshot; a slow reader only ever sees
// the latest one, and publishing never blocks on readers.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// SnapshotSize is the number of newest posts carried by a snapshot.
const SnapshotSize = 20

// Loader fetches the newest posts, newest first.
type Loader func(ctx context.Context, limit int) ([]domain.Post, error)

// Snapshot is an ordered view of the newest posts. Versions follow the order
// in which loads started, so a higher version never holds older data.
type Snapshot struct {
	Version uint64
	Posts   []domain.Post
	At      time.Time
}

var subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "mood_feed_subscribers",
	Help: "Open live feed subscriptions.",
})

func init() {
	prometheus.MustRegister(subscribers)
}

// Hub is safe for concurrent use.
type Hub struct {
	load  Loader
	clock clock.Clock
	log   zerolog.Logger

	mu      sync.Mutex
	subs    map[uint64]chan Snapshot
	nextID  uint64
	version uint64
	last    *Snapshot
}

// NewHub builds a Hub that reads snapshots through load and stamps them
// with clk.
func NewHub(load Loader, clk clock.Clock, log zerolog.Logger) *Hub {
	return &Hub{
		load:  load,
		clock: clk,
		log:   log.With().Str("component", "feed_hub").Logger(),
		subs:  make(map[uint64]chan Snapshot),
	}
}

// Subscribe registers a listener and delivers the current snapshot
// immediately. The returned cancel stops delivery and closes the channel; it
// is also called when ctx ends. Calling cancel more than once is harmless.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Snapshot, func(), error) {
	h.mu.Lock()
	cur := h.last
	h.mu.Unlock()
	if cur == nil {
		snap, err := h.refresh(ctx, false)
		if err != nil {
			return nil, nil, err
		}
		cur = &snap
	}

	ch := make(chan Snapshot, 1)
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	if h.last != nil && h.last.Version > cur.Version {
		cur = h.last
	}
	ch <- *cur
	h.mu.Unlock()
	subscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
			subscribers.Dec()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}

// Publish reloads the snapshot and offers it to every subscriber. A load
// overtaken by a later one is dropped; subscribers already hold newer data.
func (h *Hub) Publish(ctx context.Context) error {
	if _, err := h.refresh(ctx, true); err != nil {
		h.log.Warn().Err(err).Msg("live feed refresh failed")
		return err
	}
	return nil
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// refresh reserves a version, loads outside the lock and installs the result
// unless a load that started later already finished. Installing and
// broadcasting happen under one lock hold so subscribers see versions in
// increasing order.
func (h *Hub) refresh(ctx context.Context, broadcast bool) (Snapshot, error) {
	h.mu.Lock()
	h.version++
	seq := h.version
	h.mu.Unlock()

	posts, err := h.load(ctx, SnapshotSize)
	if err != nil {
		return Snapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil && h.last.Version > seq {
		return *h.last, nil
	}
	snap := Snapshot{Version: seq, Posts: posts, At: h.clock.Now().UTC()}
	h.last = &snap
	if broadcast {
		for _, ch := range h.subs {
			offer(ch, snap)
		}
	}
	return snap, nil
}

// offer replaces any unread snapshot with s. Only the hub sends on ch, and
// always under h.mu.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
