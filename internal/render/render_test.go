package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRenderer_Render(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table id="ranking-table"></table>`))
	}))
	defer srv.Close()

	r := &HTTPRenderer{Client: client.NewClient(client.Config{Timeout: time.Second, MaxConcurrency: 1})}
	html, err := r.Render(context.Background(), Request{URL: srv.URL, WaitSelector: "table#ranking-table"})
	require.NoError(t, err)
	assert.Contains(t, html, `id="ranking-table"`)
}

func TestHTTPRenderer_PropagatesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := &HTTPRenderer{Client: client.NewClient(client.Config{Timeout: time.Second, MaxConcurrency: 1})}
	_, err := r.Render(context.Background(), Request{URL: srv.URL})
	assert.Error(t, err)
}

func TestChromeRenderer_CloseWithoutStart(t *testing.T) {
	r := NewChromeRenderer(ChromeConfig{IdleTimeout: time.Minute})
	assert.NotPanics(t, r.Close)
	assert.Equal(t, 90*time.Second, r.cfg.RenderTimeout, "Render timeout should default")
}

func TestChromeRenderer_StaleIdleTimerKeepsBrowser(t *testing.T) {
	r := NewChromeRenderer(ChromeConfig{IdleTimeout: time.Minute})

	browserCtx, cancel := context.WithCancel(context.Background())
	r.browserCtx, r.cancelBrowser = browserCtx, cancel

	armedAt := r.renders
	// a render started after the timer was armed
	r.renders++

	assert.False(t, r.closeIfIdle(armedAt), "Timer armed before the latest render must not close")
	require.NotNil(t, r.browserCtx)
	assert.NoError(t, browserCtx.Err())

	assert.True(t, r.closeIfIdle(r.renders))
	assert.Nil(t, r.browserCtx)
	assert.ErrorIs(t, browserCtx.Err(), context.Canceled)

	assert.False(t, r.closeIfIdle(r.renders), "Already closed")
}
