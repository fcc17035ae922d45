package statsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHit(t *testing.T) {
	var received endpointHit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := New(srv.URL, "eventhub-backend")
	err := client.SendHit(context.Background(), "/events/7", "203.0.113.9")

	require.NoError(t, err)
	assert.Equal(t, "eventhub-backend", received.App)
	assert.Equal(t, "/events/7", received.URI)
	assert.Equal(t, "203.0.113.9", received.IP)
	_, err = time.Parse(TimeLayout, received.Timestamp)
	assert.NoError(t, err)
}

func TestSendHit_CollectorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "eventhub-backend")
	err := client.SendHit(context.Background(), "/events", "203.0.113.9")

	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("unique"))
		assert.Equal(t, []string{"/events/1", "/events/2"}, q["uris"])
		_, err := time.Parse(TimeLayout, q.Get("start"))
		assert.NoError(t, err)

		json.NewEncoder(w).Encode([]Stat{
			{App: "eventhub-backend", URI: "/events/1", Hits: 42},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, "eventhub-backend")
	now := time.Now()
	stats, err := client.GetStats(context.Background(), now.Add(-time.Hour), now, []string{"/events/1", "/events/2"}, true)

	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "/events/1", stats[0].URI)
	assert.Equal(t, int64(42), stats[0].Hits)
}

func TestGetStats_CollectorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(srv.URL, "eventhub-backend")
	now := time.Now()
	_, err := client.GetStats(context.Background(), now.Add(-time.Hour), now, nil, false)

	assert.Error(t, err)
}
