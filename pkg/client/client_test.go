package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

type staticTokenSource struct {
	token     string
	err       error
	refreshes atomic.Int32
}

func (s *staticTokenSource) Refresh(_ context.Context) (string, error) {
	s.refreshes.Add(1)

	return s.token, s.err
}

func TestClient_GetFlow_CachesResult(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(models.Flow{ID: "f1", Name: "Welcome"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, WithToken("tok"))
	ctx := context.Background()

	first, err := c.GetFlow(ctx, "f1")
	require.NoError(t, err)

	second, err := c.GetFlow(ctx, "f1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_UpdateFlow_InvalidatesCache(t *testing.T) {
	var name atomic.Value

	name.Store("Before")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			name.Store("After")
		}

		_ = json.NewEncoder(w).Encode(models.Flow{ID: "f1", Name: name.Load().(string)})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	ctx := context.Background()

	flow, err := c.GetFlow(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Before", flow.Name)

	newName := "After"
	updated, err := c.UpdateFlow(ctx, "f1", UpdateFlowInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)

	flow, err = c.GetFlow(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "After", flow.Name)
}

func TestClient_AuthHeaders(t *testing.T) {
	var (
		gotAuth     string
		gotInternal string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotInternal = r.Header.Get(InternalHeader)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, WithToken("secret"))

	_, err := c.ExportFlow(context.Background(), "f1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "1", gotInternal)
}

func TestClient_RefreshOnceOn401(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		_ = json.NewEncoder(w).Encode(models.Flow{ID: "f1"})
	}))
	defer server.Close()

	source := &staticTokenSource{token: "fresh"}
	c := NewClient(server.URL, source, WithToken("stale"))

	flow, err := c.GetFlow(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", flow.ID)
	assert.Equal(t, int32(1), source.refreshes.Load())
	assert.Equal(t, int32(2), requests.Load())
}

func TestClient_SessionExpiredAfterFailedReplay(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	source := &staticTokenSource{token: "still-bad"}
	c := NewClient(server.URL, source, WithToken("stale"))

	_, err := c.GetFlow(context.Background(), "f1")
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Exactly one refresh, exactly one replay, no loop.
	assert.Equal(t, int32(1), source.refreshes.Load())
	assert.Equal(t, int32(2), requests.Load())
}

func TestClient_SessionExpiredOnRefreshFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	source := &staticTokenSource{err: errors.New("refresh endpoint down")}
	c := NewClient(server.URL, source, WithToken("stale"))

	_, err := c.GetFlow(context.Background(), "f1")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, c.currentToken())
}

func TestClient_APIErrorFromProblemResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"title":"Conflict","detail":"flow changed since validation; validate again","status":409}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)

	_, err := c.Publish(context.Background(), "f1", "tok")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "validate again")
}

func TestClient_MutationNotRetriedOnServerError(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)

	_, err := c.CreateFlow(context.Background(), CreateFlowInput{Name: "X", Owner: "u"})
	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}
