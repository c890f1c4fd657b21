package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// DefaultBioWorkers is the enrichment pool width
const DefaultBioWorkers = 5

const headshotURLPattern = "https://images.fantasypros.com/images/players/nfl/%d/headshot/70x70.png"

var errNoBioContent = errors.New("page has neither bio details nor a bye week")

// BioEnricher fetches player detail pages with a fixed-size worker pool
type BioEnricher struct {
	fetcher DocumentFetcher
	workers int
}

// NewBioEnricher creates an enricher running the given number of workers
func NewBioEnricher(fetcher DocumentFetcher, workers int) *BioEnricher {
	if workers < 1 {
		workers = DefaultBioWorkers
	}
	return &BioEnricher{fetcher: fetcher, workers: workers}
}

// Bio fetches and parses one player's detail page
func (e *BioEnricher) Bio(ctx context.Context, identity models.PlayerIdentity) (models.PlayerBio, error) {
	doc, err := e.fetcher.Document(ctx, "bio", identity.BioURL)
	if err != nil {
		return models.PlayerBio{}, err
	}
	bio, err := ParseBio(doc)
	if err != nil {
		return models.PlayerBio{}, fmt.Errorf("player %d: %w", identity.ID, err)
	}
	if bio.ImageURL == "" {
		bio.ImageURL = fmt.Sprintf(headshotURLPattern, identity.ID)
	}
	return bio, nil
}

// Enrich fetches a bio for every task. A task that fails is logged and left out of
// the result; only cancellation of ctx fails the whole call.
func (e *BioEnricher) Enrich(ctx context.Context, tasks []models.Player) (map[int]models.PlayerBio, error) {
	start := time.Now()

	queue := make(chan models.PlayerIdentity)
	results := make(map[int]models.PlayerBio, len(tasks))
	var mu sync.Mutex
	var failed int

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for identity := range queue {
				bio, err := e.Bio(ctx, identity)
				if err != nil {
					if ctx.Err() != nil {
						continue
					}
					log.Warn().
						Err(err).
						Int("player_id", identity.ID).
						Str("name", identity.Name).
						Msg("Bio enrichment failed, dropping player bio")
					metrics.RecordBioFailure()
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				results[identity.ID] = bio
				mu.Unlock()
			}
		}()
	}

feed:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case queue <- task.PlayerIdentity:
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().
		Int("tasks", len(tasks)).
		Int("enriched", len(results)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Bio enrichment complete")
	return results, nil
}

// ParseBio reads height, weight, age, college, headshot and bye week from a player page.
// Bio values are optional. A page with neither bio details nor a bye week is an error.
func ParseBio(doc *goquery.Document) (models.PlayerBio, error) {
	var bio models.PlayerBio

	details := 0
	doc.Find("div.clearfix span.bio-detail").Each(func(_ int, s *goquery.Selection) {
		key, value, ok := strings.Cut(s.Text(), ":")
		if !ok {
			return
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Height":
			bio.Height = value
		case "Weight":
			bio.Weight = value
		case "Age":
			// lenient: a missing or odd age leaves zero
			bio.Age, _ = strconv.Atoi(value)
		case "College":
			bio.College = value
		default:
			return
		}
		details++
	})

	if src, ok := doc.Find("picture img").First().Attr("src"); ok {
		bio.ImageURL = strings.TrimSpace(src)
	}

	bio.ByeWeek = parseByeWeek(doc)

	if details == 0 && bio.ByeWeek == 0 {
		return bio, errNoBioContent
	}
	return bio, nil
}

// parseByeWeek returns the 1-based schedule row whose opponent cell reads BYE, or zero
func parseByeWeek(doc *goquery.Document) int {
	week := 0
	doc.Find("table.table-bordered:not(.sos) tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(row.Find("td").Eq(1).Text()), "BYE") {
			week = i + 1
			return false
		}
		return true
	})
	return week
}
