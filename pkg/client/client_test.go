package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindMapping(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusUnauthorized, KindUnauthenticated},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindPreconditionFailed},
		{http.StatusBadRequest, KindValidation},
		{http.StatusInternalServerError, KindTransport},
		{http.StatusBadGateway, KindTransport},
	}

	for _, tt := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(errorBody{Message: "nope"})
		}))

		c := New(srv.URL)
		c.SetToken("t")
		_, err := c.GetRoute(context.Background(), 1)

		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.want, KindOf(err), "status %d", tt.status)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.status, apiErr.Status)
		assert.Equal(t, "nope", apiErr.Message)

		srv.Close()
	}
}

func TestMutatingCallWithoutTokenFailsFast(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.AddToRoute(context.Background(), 5)

	require.Error(t, err)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.Zero(t, hits, "unauthenticated call must not reach the server")
}

func TestTransportFailure(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	c.SetToken("t")

	_, err := c.CartBadge(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestCurrentDraftNoDraftSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errorBody{Message: "No draft route"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("t")

	_, err := c.CurrentDraft(context.Background())
	assert.True(t, errors.Is(err, ErrNoDraft), "err = %v; want ErrNoDraft", err)
}

func TestListCommandsQueryParams(t *testing.T) {
	var gotName, gotDirective string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		gotDirective = r.URL.Query().Get("directive")
		json.NewEncoder(w).Encode([]Command{{ID: 5, Name: "move_forward"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	commands, err := c.ListCommands(context.Background(), CommandFilter{Name: "move", Directive: "cmd_vel"})

	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "move", gotName)
	assert.Equal(t, "cmd_vel", gotDirective)
}

func TestLoginInstallsToken(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(loginResponse{
				Token: "issued-token",
				User:  User{ID: 1, Username: "alice"},
			})
		case "/api/routes/cart-badge":
			authHeader = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(CartBadge{})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = c.CartBadge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer issued-token", authHeader)
}
