package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(Config{
		Timeout:        5 * time.Second,
		MaxConcurrency: 2,
		MaxRetries:     retries,
		RetryDelay:     time.Millisecond,
		UserAgent:      "test-agent",
	})
}

func TestClient_Get_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body><p id=\"x\">hello</p></body></html>"))
	}))
	defer srv.Close()

	c := newTestClient(0)
	doc, err := c.Document(context.Background(), "test", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("p#x").Text())
}

func TestClient_Get_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient(3).Get(context.Background(), "test", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load(), "Should succeed on the third attempt")
}

func TestClient_Get_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(2).Get(context.Background(), "test", srv.URL)
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "Exhausted retries should surface a NetworkError")
	assert.Equal(t, http.StatusBadGateway, netErr.Status)
	assert.Equal(t, int32(3), calls.Load(), "One attempt plus two retries")
}

func TestClient_Get_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(3).Get(context.Background(), "test", srv.URL)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusNotFound, netErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Get(ctx, "test", srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ConcurrencyCap(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(0)
	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := c.Get(context.Background(), "test", srv.URL)
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	assert.LessOrEqual(t, peak.Load(), int32(2), "Semaphore should cap in-flight requests")
}

func TestRetryAfterDelay(t *testing.T) {
	assert.Equal(t, 3*time.Second, retryAfterDelay("3"))
	assert.Zero(t, retryAfterDelay(""))
	assert.Zero(t, retryAfterDelay("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Zero(t, retryAfterDelay("-4"))
}
