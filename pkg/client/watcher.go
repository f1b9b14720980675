package client

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the moderation view refresh cadence.
const DefaultPollInterval = 5 * time.Second

// Watcher polls the route listing on a fixed interval and hands each
// successful response to OnUpdate, replacing the previous list wholesale.
//
// Ticks are fire-and-continue: a slow or failed fetch never blocks or
// cancels the next scheduled one. Because responses can therefore resolve
// out of request order, every fetch is tagged with an increasing sequence
// number and a response older than the last applied one is discarded, so the
// displayed list always converges to the server's latest truth.
type Watcher struct {
	client   *Client
	interval time.Duration

	// OnUpdate receives each applied listing. OnError receives failed tick
	// errors; the loop keeps running regardless.
	OnUpdate func([]Route)
	OnError  func(error)

	mu      sync.Mutex
	filter  RouteFilter
	gen     uint64 // incremented per Start; in-flight polls from earlier runs are discarded
	nextSeq uint64
	applied uint64
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// NewWatcher creates a watcher with the given cadence; interval <= 0 uses
// DefaultPollInterval.
func NewWatcher(c *Client, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{client: c, interval: interval}
}

// SetFilter swaps the filter used by subsequent ticks. Safe while running.
func (w *Watcher) SetFilter(filter RouteFilter) {
	w.mu.Lock()
	w.filter = filter
	w.mu.Unlock()
}

// Start begins polling. The first fetch fires immediately, then every
// interval. Starting an already-running watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stop != nil && !w.stopped {
		w.mu.Unlock()
		return
	}
	w.gen++
	w.nextSeq, w.applied = 0, 0
	w.stopped = false
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	gen, stop, done := w.gen, w.stop, w.done
	w.mu.Unlock()

	go w.loop(gen, stop, done)
}

func (w *Watcher) loop(gen uint64, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	go w.poll(gen)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			go w.poll(gen)
		}
	}
}

// poll performs one fetch and applies the response unless it is stale, from a
// previous run, or the watcher has been stopped meanwhile.
func (w *Watcher) poll(gen uint64) {
	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.nextSeq++
	seq := w.nextSeq
	filter := w.filter
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	routes, err := w.client.ListRoutes(ctx, filter)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || gen != w.gen {
		// In-flight result of a torn-down or restarted view; discard.
		return
	}
	if err != nil {
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}
	if seq <= w.applied {
		// An out-of-order response that resolved after a newer one; applying
		// it would roll the view backwards.
		return
	}
	w.applied = seq
	if w.OnUpdate != nil {
		w.OnUpdate(routes)
	}
}

// Stop halts polling immediately. No update or error callback fires after
// Stop returns; results of requests still in flight are discarded, even if
// the watcher is started again meanwhile. Stop is idempotent. Must not be
// called from inside OnUpdate or OnError.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stop == nil || w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done
}
