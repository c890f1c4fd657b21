package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const (
	scrollPause     = 500 * time.Millisecond
	maxScrollRounds = 60
)

// ChromeConfig configures the headless browser
type ChromeConfig struct {
	// RemoteURL points at a running Chrome devtools endpoint. Empty starts a local headless Chrome.
	RemoteURL string
	// IdleTimeout closes the browser after this long without a render
	IdleTimeout time.Duration
	// RenderTimeout bounds a single page render
	RenderTimeout time.Duration
}

// ChromeRenderer renders pages in one shared headless browser. Renders are
// serialised because the rankings passes share a single tab budget.
type ChromeRenderer struct {
	cfg ChromeConfig

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	idleTimer     *time.Timer
	// renders counts Render calls so a stale idle timer can tell it was overtaken
	renders uint64
}

// NewChromeRenderer creates a renderer. The browser starts on the first render.
func NewChromeRenderer(cfg ChromeConfig) *ChromeRenderer {
	if cfg.RenderTimeout == 0 {
		cfg.RenderTimeout = 90 * time.Second
	}
	return &ChromeRenderer{cfg: cfg}
}

// Render implements Renderer
func (r *ChromeRenderer) Render(ctx context.Context, req Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.renders++
	if err := r.ensureBrowser(); err != nil {
		return "", err
	}
	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	defer r.armIdleTimer()

	start := time.Now()
	html, err := r.render(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordSourceFetch("render", status, time.Since(start).Seconds())
	return html, err
}

func (r *ChromeRenderer) render(ctx context.Context, req Request) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.cfg.RenderTimeout)
	defer cancelTimeout()

	// the tab hangs off the browser context, so tie it to the caller as well
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	tasks := chromedp.Tasks{
		chromedp.Navigate(req.URL),
		chromedp.WaitVisible(req.WaitSelector, chromedp.ByQuery),
	}
	if req.ToggleSelector != "" {
		tasks = append(tasks, clickIfPresent(req.ToggleSelector))
	}
	if req.RowSelector != "" {
		tasks = append(tasks, scrollUntilSettled(req.URL, req.RowSelector))
	}

	var html string
	if req.ExtractSelector != "" {
		tasks = append(tasks, chromedp.OuterHTML(req.ExtractSelector, &html, chromedp.ByQuery))
	} else {
		tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	}

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to render %s: %w", req.URL, err)
	}
	return html, nil
}

// clickIfPresent clicks the first match of selector and is a no-op when nothing matches
func clickIfPresent(selector string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		js := fmt.Sprintf(`(() => { const el = document.querySelector(%q); if (el) { el.click(); return true; } return false; })()`, selector)
		if err := chromedp.Evaluate(js, &clicked).Do(ctx); err != nil {
			return fmt.Errorf("failed to click %s: %w", selector, err)
		}
		if !clicked {
			log.Debug().Str("selector", selector).Msg("Toggle not found, keeping default view")
		}
		return nil
	})
}

// scrollUntilSettled scrolls to the bottom until the number of rows stops growing.
// The rankings list is lazily extended as the viewer scrolls.
func scrollUntilSettled(url, rowSelector string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		js := fmt.Sprintf(`(() => { window.scrollTo(0, document.body.scrollHeight); return document.querySelectorAll(%q).length; })()`, rowSelector)
		last := -1
		for round := 0; round < maxScrollRounds; round++ {
			var count int
			if err := chromedp.Evaluate(js, &count).Do(ctx); err != nil {
				return fmt.Errorf("failed to count rows: %w", err)
			}
			if count > 0 && count == last {
				log.Debug().Str("url", url).Int("rows", count).Int("rounds", round).Msg("Row count settled")
				return nil
			}
			last = count
			if err := chromedp.Sleep(scrollPause).Do(ctx); err != nil {
				return err
			}
		}
		log.Warn().Str("url", url).Int("rows", last).Msg("Row count still changing after max scroll rounds")
		return nil
	})
}

func (r *ChromeRenderer) ensureBrowser() error {
	if r.browserCtx != nil {
		return nil
	}

	var allocCtx context.Context
	if r.cfg.RemoteURL != "" {
		allocCtx, r.cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), r.cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.WindowSize(1280, 2000),
		)
		allocCtx, r.cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	r.browserCtx, r.cancelBrowser = chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser
	if err := chromedp.Run(r.browserCtx); err != nil {
		r.closeLocked()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info().Str("remote", r.cfg.RemoteURL).Msg("Headless browser started")
	return nil
}

func (r *ChromeRenderer) armIdleTimer() {
	if r.cfg.IdleTimeout <= 0 {
		return
	}
	gen := r.renders
	r.idleTimer = time.AfterFunc(r.cfg.IdleTimeout, func() {
		r.closeIfIdle(gen)
	})
}

// closeIfIdle closes the browser unless a render started after generation gen.
// A timer that fired while Render held the lock must not close the browser
// that render just used.
func (r *ChromeRenderer) closeIfIdle(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renders != gen || r.browserCtx == nil {
		return false
	}
	log.Info().Dur("idle", r.cfg.IdleTimeout).Msg("Closing idle headless browser")
	r.closeLocked()
	return true
}

// Close shuts the browser down
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	r.closeLocked()
}

func (r *ChromeRenderer) closeLocked() {
	if r.cancelBrowser != nil {
		r.cancelBrowser()
	}
	if r.cancelAlloc != nil {
		r.cancelAlloc()
	}
	r.browserCtx, r.cancelBrowser, r.cancelAlloc = nil, nil, nil
}
