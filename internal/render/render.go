// Package render produces the final HTML of pages whose tables are filled in by
// client-side script.
package render

import (
	"context"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/client"
)

// Request describes a page to render and when it counts as loaded
type Request struct {
	URL string
	// WaitSelector must be visible before anything else happens
	WaitSelector string
	// RowSelector is counted while scrolling; rendering stops once the count settles
	RowSelector string
	// ToggleSelector, when set and present, is clicked before scrolling
	ToggleSelector string
	// ExtractSelector is the element whose outer HTML is returned. Empty means the whole document.
	ExtractSelector string
}

// Renderer returns the HTML of a fully loaded page
type Renderer interface {
	Render(ctx context.Context, req Request) (string, error)
}

// HTTPRenderer fetches pages without running script. It serves pages that are
// rendered on the server and is what tests use.
type HTTPRenderer struct {
	Client *client.Client
}

// Render implements Renderer
func (h *HTTPRenderer) Render(ctx context.Context, req Request) (string, error) {
	body, err := h.Client.Get(ctx, "rankings", req.URL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
