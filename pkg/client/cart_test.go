package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cartServer fakes the draft/cart endpoints with a server-side item count.
type cartServer struct {
	items      int
	routeID    int
	badgeHits  int
	addFailure int // HTTP status to fail add-to-route with; 0 = succeed
}

func (s *cartServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/routes/cart-badge", func(w http.ResponseWriter, r *http.Request) {
		s.badgeHits++
		badge := CartBadge{ItemsCount: s.items}
		if s.items > 0 {
			badge.RouteID = &s.routeID
		}
		json.NewEncoder(w).Encode(badge)
	})
	mux.HandleFunc("/api/commands/", func(w http.ResponseWriter, r *http.Request) {
		if s.addFailure != 0 {
			w.WriteHeader(s.addFailure)
			json.NewEncoder(w).Encode(errorBody{Message: "add failed"})
			return
		}
		s.items++
		json.NewEncoder(w).Encode(AddToRouteResponse{RouteID: s.routeID, CommandName: "move_forward"})
	})
	mux.HandleFunc("/api/routes/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Route{ID: s.routeID, Status: StatusFormed})
	})
	return mux
}

func newCartFixture(t *testing.T, s *cartServer) (*CartStore, func()) {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	c := New(srv.URL)
	c.SetToken("t")
	return NewCartStore(c), srv.Close
}

func TestBadgeServedFromCache(t *testing.T) {
	s := &cartServer{items: 2, routeID: 42}
	store, done := newCartFixture(t, s)
	defer done()
	ctx := context.Background()

	first, err := store.Badge(ctx)
	require.NoError(t, err)
	second, err := store.Badge(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, first.ItemsCount)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.badgeHits, "second read must come from the cache")
}

func TestAddCommandConfirmedOnly(t *testing.T) {
	s := &cartServer{routeID: 42}
	store, done := newCartFixture(t, s)
	defer done()
	ctx := context.Background()

	badge, err := store.Badge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, badge.ItemsCount)

	resp, err := store.AddCommand(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.RouteID)

	badge, err = store.Badge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, badge.ItemsCount, "count reflects the confirmed server state")
}

func TestFailedAddLeavesBadgeUntouched(t *testing.T) {
	s := &cartServer{items: 1, routeID: 42}
	store, done := newCartFixture(t, s)
	defer done()
	ctx := context.Background()

	before, err := store.Badge(ctx)
	require.NoError(t, err)

	s.addFailure = http.StatusUnauthorized
	_, err = store.AddCommand(ctx, 5)
	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))

	after, err := store.Badge(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "no speculative increment on failure")
}

func TestFormRouteEmptiesDraftHandle(t *testing.T) {
	s := &cartServer{items: 3, routeID: 42}
	store, done := newCartFixture(t, s)
	defer done()
	ctx := context.Background()

	_, err := store.Badge(ctx)
	require.NoError(t, err)

	route, err := store.FormRoute(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StatusFormed, route.Status)

	// The server's draft is gone; the next read must re-fetch, not serve the
	// cached pre-form badge.
	s.items = 0
	badge, err := store.Badge(ctx)
	require.NoError(t, err)
	assert.Nil(t, badge.RouteID)
	assert.Equal(t, 0, badge.ItemsCount)
}
