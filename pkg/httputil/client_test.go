package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/logger"
)

func newClient(maxRetries int) *Client {
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Timeout:           5 * time.Second,
			MaxRetries:        maxRetries,
			RetryBackoff:      time.Millisecond,
			ProviderRateLimit: 1000,
		},
	}
	return New(cfg, logger.NewNop())
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := newClient(3)

	var dest struct {
		OK bool `json:"ok"`
	}
	err := client.GetJSON(context.Background(), server.URL, nil, &dest)
	require.NoError(t, err)
	assert.True(t, dest.OK)
	assert.Equal(t, int64(3), calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(3)

	_, err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int64(1), calls.Load(), "4xx responses must not be retried")
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newClient(2)

	_, err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load(), "initial attempt plus two retries")
}

func TestGetSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	client := newClient(0)

	resp, err := client.Get(context.Background(), server.URL, map[string]string{"X-Api-Key": "secret"})
	require.NoError(t, err)
	resp.Body.Close()
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(http.StatusInternalServerError))
	assert.True(t, IsRetryable(http.StatusTooManyRequests))
	assert.False(t, IsRetryable(http.StatusBadRequest))
	assert.False(t, IsRetryable(http.StatusUnauthorized))
}
