package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flavor-twin/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.ProviderConfig{
		Enabled:    true,
		BaseURL:    url,
		APIKey:     "test-key-123456",
		Timeout:    2 * time.Second,
		RetryCount: 1,
		RetryWait:  10 * time.Millisecond,
	})
}

func TestClient_SearchByTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipe/search", r.URL.Path)
		assert.Equal(t, "pad thai", r.URL.Query().Get("title"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "1", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "test-key-123456", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"payload":{"data":[{"Recipe_id":"42","recipe_title":"Pad Thai","cuisine":"Thai"}]}}`))
	}))
	defer srv.Close()

	stubs, err := newTestClient(srv.URL).SearchByTitle(context.Background(), "pad thai")
	require.NoError(t, err)
	require.Len(t, stubs, 1)
	assert.Equal(t, "42", stubs[0].ID)
	assert.Equal(t, "Pad Thai", stubs[0].Title)
	assert.Equal(t, "Thai", stubs[0].Cuisine)
	assert.Equal(t, "Thai", stubs[0].Raw["cuisine"])
}

func TestClient_SearchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	stubs, err := newTestClient(srv.URL).SearchByTitle(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, stubs)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"recipe_id":"1","name":"Pho"}]`))
	}))
	defer srv.Close()

	stubs, err := newTestClient(srv.URL).SearchByTitle(context.Background(), "pho")
	require.NoError(t, err)
	require.Len(t, stubs, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SearchByTitle(context.Background(), "pho")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_GetDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipe/42":
			_, _ = w.Write([]byte(`{"recipe":{"recipe_title":"Pad Thai"},"ingredients":[{"ingredient":"lime"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	raw, err := c.GetDetail(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, raw)

	d := ToDish(CandidateStub{ID: "42"}, raw)
	assert.Equal(t, "Pad Thai", d.Name)
	assert.Equal(t, []string{"lime"}, d.Ingredients)

	raw, err = c.GetDetail(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetDetail(context.Background(), "1")
	assert.Error(t, err)
}
