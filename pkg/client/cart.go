package client

import (
	"context"
	"sync"
)

// CartStore is the single shared accessor for the cart badge and the
// current-draft handle. Every view reads through the same store, so a
// mutation in one view is visible to others on their next read.
//
// Counting is confirmed-only: the badge changes only after the server has
// acknowledged the mutation, never speculatively.
type CartStore struct {
	client *Client

	mu    sync.RWMutex
	badge CartBadge
	valid bool
}

// NewCartStore creates a store around the given client.
func NewCartStore(c *Client) *CartStore {
	return &CartStore{client: c}
}

// Badge returns the cached badge, fetching it first if the cache is invalid.
// Cheap to call on every navigation.
func (s *CartStore) Badge(ctx context.Context) (CartBadge, error) {
	s.mu.RLock()
	if s.valid {
		badge := s.badge
		s.mu.RUnlock()
		return badge, nil
	}
	s.mu.RUnlock()
	return s.Refresh(ctx)
}

// Refresh re-fetches the badge from the server unconditionally.
func (s *CartStore) Refresh(ctx context.Context) (CartBadge, error) {
	badge, err := s.client.CartBadge(ctx)
	if err != nil {
		return CartBadge{}, err
	}
	s.mu.Lock()
	s.badge = badge
	s.valid = true
	s.mu.Unlock()
	return badge, nil
}

// Invalidate drops the cached badge; the next Badge call re-fetches.
func (s *CartStore) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// AddCommand appends a command to the draft and refreshes the badge from the
// confirmed server state. On failure the cache is left untouched: no partial
// or speculative count is ever visible.
func (s *CartStore) AddCommand(ctx context.Context, commandID int) (*AddToRouteResponse, error) {
	resp, err := s.client.AddToRoute(ctx, commandID)
	if err != nil {
		return nil, err
	}

	if _, err := s.Refresh(ctx); err != nil {
		// The append is confirmed but the re-read failed; drop the cache so
		// the next read converges instead of serving the stale count.
		s.Invalidate()
	}
	return resp, nil
}

// FormRoute submits the draft and empties the current-draft handle; a new
// draft is created lazily by the next AddCommand.
func (s *CartStore) FormRoute(ctx context.Context, routeID int) (*Route, error) {
	route, err := s.client.FormRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	s.Invalidate()
	return route, nil
}
