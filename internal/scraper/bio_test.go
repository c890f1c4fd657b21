package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/client"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseBio(t *testing.T) {
	bio, err := ParseBio(docFrom(t, readFixture(t, "bio.html")))
	require.NoError(t, err)

	assert.Equal(t, `5'10"`, bio.Height)
	assert.Equal(t, "191", bio.Weight)
	assert.Equal(t, 30, bio.Age)
	assert.Equal(t, "West Alabama", bio.College)
	assert.Equal(t, 6, bio.ByeWeek, "Bye week is the 1-based schedule row, ignoring the sos table")
	assert.Equal(t, "https://images.fantasypros.com/images/players/nfl/16393/headshot/70x70.png", bio.ImageURL)
}

func TestParseBio_TeamDefensePage(t *testing.T) {
	html := `<table class="table table-bordered"><tbody>
		<tr><td>1</td><td>vs PIT</td></tr>
		<tr><td>2</td><td>BYE</td></tr>
	</tbody></table>`

	bio, err := ParseBio(docFrom(t, html))
	require.NoError(t, err, "A schedule alone is enough")
	assert.Equal(t, 2, bio.ByeWeek)
	assert.Empty(t, bio.Height)
}

func TestParseBio_LenientAge(t *testing.T) {
	html := `<div class="clearfix"><span class="bio-detail">Age: N/A</span><span class="bio-detail">College: None</span></div>`

	bio, err := ParseBio(docFrom(t, html))
	require.NoError(t, err)
	assert.Zero(t, bio.Age)
	assert.Equal(t, "None", bio.College)
	assert.Zero(t, bio.ByeWeek)
}

func TestParseBio_EmptyPage(t *testing.T) {
	_, err := ParseBio(docFrom(t, `<html><body><h1>Player not found</h1></body></html>`))
	assert.Error(t, err)
}

func bioServer(t *testing.T, failing map[string]bool, inFlight, peak *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)

		if failing[r.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<div class="clearfix"><span class="bio-detail">College: %s</span></div>`, strings.Trim(r.URL.Path, "/"))
	}))
}

func TestBioEnricher_Enrich(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := bioServer(t, map[string]bool{"/p3": true}, &inFlight, &peak)
	defer srv.Close()

	var tasks []models.Player
	for id := 1; id <= 12; id++ {
		tasks = append(tasks, models.Player{PlayerIdentity: models.PlayerIdentity{
			ID:     id,
			Name:   fmt.Sprintf("Player %d", id),
			BioURL: fmt.Sprintf("%s/p%d", srv.URL, id),
		}})
	}

	c := client.NewClient(client.Config{Timeout: time.Second, MaxConcurrency: 20})
	enricher := NewBioEnricher(c, 3)

	bios, err := enricher.Enrich(context.Background(), tasks)
	require.NoError(t, err, "A failed player must not fail the batch")

	assert.Len(t, bios, 11)
	_, ok := bios[3]
	assert.False(t, ok, "Failed player is dropped")
	assert.Equal(t, "p7", bios[7].College)
	assert.Equal(t, "https://images.fantasypros.com/images/players/nfl/7/headshot/70x70.png", bios[7].ImageURL,
		"Missing headshot falls back to the id based url")
	assert.LessOrEqual(t, peak.Load(), int32(3), "Pool width caps concurrent fetches")
}

func TestBioEnricher_Cancelled(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := bioServer(t, nil, &inFlight, &peak)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := client.NewClient(client.Config{Timeout: time.Second, MaxConcurrency: 5})
	_, err := NewBioEnricher(c, 5).Enrich(ctx, []models.Player{
		{PlayerIdentity: models.PlayerIdentity{ID: 1, BioURL: srv.URL + "/p1"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBioEnricher_DefaultWidth(t *testing.T) {
	e := NewBioEnricher(nil, 0)
	assert.Equal(t, DefaultBioWorkers, e.workers)
}
