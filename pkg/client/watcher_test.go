package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherStopEndsPolling(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]Route{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("t")

	w := NewWatcher(c, 15*time.Millisecond)
	var updates atomic.Int64
	w.OnUpdate = func([]Route) { updates.Add(1) }

	w.Start()
	time.Sleep(80 * time.Millisecond)
	w.Stop()

	// A fetch dispatched just before Stop may still land; let it settle.
	time.Sleep(20 * time.Millisecond)
	afterStop := calls.Load()
	if afterStop < 2 {
		t.Fatalf("watcher polled %d times while running; want at least 2", afterStop)
	}
	if updates.Load() == 0 {
		t.Fatal("no updates delivered while running")
	}

	// Several intervals later no further fetch may have fired.
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != afterStop {
		t.Errorf("watcher kept polling after Stop: %d calls, was %d at stop", got, afterStop)
	}

	// Stop is idempotent.
	w.Stop()
}

func routesBody(id int) *http.Response {
	payload, _ := json.Marshal([]Route{{ID: id}})
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(string(payload))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestWatcherDiscardsStaleResponse(t *testing.T) {
	// The first request is slow and resolves after later ones; its response
	// is older than what the view already shows and must be discarded.
	var reqs atomic.Int64
	c := New("http://watched.local")
	c.SetToken("t")
	c.httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			n := reqs.Add(1)
			if n == 1 {
				time.Sleep(70 * time.Millisecond)
				return routesBody(1), nil
			}
			return routesBody(2), nil
		}),
	}

	var mu sync.Mutex
	var seen []int
	w := NewWatcher(c, 20*time.Millisecond)
	w.OnUpdate = func(routes []Route) {
		mu.Lock()
		seen = append(seen, routes[0].ID)
		mu.Unlock()
	}

	w.Start()
	time.Sleep(120 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("no updates delivered")
	}
	for _, id := range seen {
		if id == 1 {
			t.Fatalf("stale response applied: update sequence %v", seen)
		}
	}
}

func TestWatcherRestartDiscardsPreviousRunResponse(t *testing.T) {
	// A fetch dispatched before Stop may resolve after a restart, before the
	// new run has applied anything; its response belongs to the old run and
	// must not reach OnUpdate.
	var reqs atomic.Int64
	c := New("http://watched.local")
	c.SetToken("t")
	c.httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if reqs.Add(1) == 1 {
				// First run's only fetch: resolves well after the restart.
				time.Sleep(60 * time.Millisecond)
				return routesBody(1), nil
			}
			// Second run's fetches: resolve even later.
			time.Sleep(100 * time.Millisecond)
			return routesBody(2), nil
		}),
	}

	var mu sync.Mutex
	var seen []int
	w := NewWatcher(c, 150*time.Millisecond)
	w.OnUpdate = func(routes []Route) {
		mu.Lock()
		seen = append(seen, routes[0].ID)
		mu.Unlock()
	}

	w.Start()
	time.Sleep(10 * time.Millisecond)
	w.Stop()
	w.Start()
	time.Sleep(200 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	for _, id := range seen {
		if id == 1 {
			t.Fatalf("previous run's response applied after restart: update sequence %v", seen)
		}
	}
	if len(seen) == 0 {
		t.Fatal("restarted watcher delivered no updates")
	}
}

func TestWatcherContinuesAfterFailedTick(t *testing.T) {
	var reqs atomic.Int64
	c := New("http://watched.local")
	c.SetToken("t")
	c.httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if reqs.Add(1) <= 2 {
				return nil, errors.New("connection refused")
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`[]`)),
				Header:     http.Header{},
			}, nil
		}),
	}

	var updates, failures atomic.Int64
	w := NewWatcher(c, 15*time.Millisecond)
	w.OnUpdate = func([]Route) { updates.Add(1) }
	w.OnError = func(error) { failures.Add(1) }

	w.Start()
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	if failures.Load() < 2 {
		t.Errorf("failed ticks reported %d times; want 2", failures.Load())
	}
	if updates.Load() == 0 {
		t.Error("polling halted after failed ticks; no later update arrived")
	}
}

func TestWatcherFilterSwap(t *testing.T) {
	var mu sync.Mutex
	var statuses []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		statuses = append(statuses, r.URL.Query().Get("status"))
		mu.Unlock()
		json.NewEncoder(w).Encode([]Route{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("t")

	w := NewWatcher(c, 15*time.Millisecond)
	w.SetFilter(RouteFilter{Status: StatusFormed})
	w.Start()
	time.Sleep(40 * time.Millisecond)
	w.SetFilter(RouteFilter{Status: StatusCompleted})
	time.Sleep(40 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) == 0 {
		t.Fatal("no polls observed")
	}
	if statuses[0] != "formed" {
		t.Errorf("first poll used status %q; want formed", statuses[0])
	}
	if statuses[len(statuses)-1] != "completed" {
		t.Errorf("last poll used status %q; want completed", statuses[len(statuses)-1])
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
