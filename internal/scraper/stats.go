package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/scoring"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	statsTableSelector = "table#data"
	// rank and player name
	statsLeadingCells = 2
)

var rowPlayerIDPattern = regexp.MustCompile(`^mpb-player-(\d+)$`)

// StatsExtractor reads the per-category season stats tables
type StatsExtractor struct {
	fetcher    DocumentFetcher
	baseURL    string
	categories []models.Category
}

// NewStatsExtractor creates an extractor for every category under baseURL
func NewStatsExtractor(fetcher DocumentFetcher, baseURL string) *StatsExtractor {
	return &StatsExtractor{
		fetcher:    fetcher,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		categories: models.Categories,
	}
}

// Stats fetches and parses one category table
func (e *StatsExtractor) Stats(ctx context.Context, category models.Category) ([]models.StatLine, error) {
	pageURL := category.StatsURL(e.baseURL)
	doc, err := e.fetcher.Document(ctx, "stats_"+string(category), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s stats: %w", category, err)
	}
	lines, err := ParseStatsTable(doc, category, pageURL)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("category", string(category)).
		Int("rows", len(lines)).
		Msg("Stats table parsed")
	return lines, nil
}

// ExtractAll fetches every category, merges players appearing more than once and
// scores the merged lines. Any table failure aborts.
func (e *StatsExtractor) ExtractAll(ctx context.Context) ([]models.StatLine, error) {
	merger := NewStatsMerger()
	for _, category := range e.categories {
		lines, err := e.Stats(ctx, category)
		if err != nil {
			return nil, err
		}
		merger.AddAll(lines)
	}

	merged := merger.Lines()
	scoring.CalculateAll(merged)

	log.Info().
		Int("players", len(merged)).
		Int("overlaps", merger.Overlaps()).
		Msg("Stats merged and scored")
	return merged, nil
}

// ParseStatsTable maps a category table's rows to stat lines. Rows without a player id
// are dropped and unreadable cells count as zero.
func ParseStatsTable(doc *goquery.Document, category models.Category, pageURL string) ([]models.StatLine, error) {
	schema, err := category.Schema()
	if err != nil {
		return nil, err
	}

	table := doc.Find(statsTableSelector)
	if table.Length() == 0 {
		return nil, &StructureError{Page: pageURL, Field: statsTableSelector, Reason: "stats table not found"}
	}

	var lines []models.StatLine
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		id, ok := rowPlayerID(row)
		if !ok {
			log.Debug().Str("category", string(category)).Int("row", i+1).Msg("Stats row without player id, skipping")
			return
		}

		line := models.StatLine{PlayerID: id}
		cells := row.Find("td")
		for j, name := range schema {
			idx := j + statsLeadingCells
			if idx >= cells.Length() {
				break
			}
			*line.Field(name) = lenientFloat(cells.Eq(idx).Text())
		}
		lines = append(lines, line)
	})

	return lines, nil
}

// rowPlayerID reads the id from the row's mpb-player-<id> class. Other classes on
// the row may carry digits of their own and are ignored.
func rowPlayerID(row *goquery.Selection) (int, bool) {
	class, _ := row.Attr("class")
	for _, token := range strings.Fields(class) {
		m := rowPlayerIDPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// lenientFloat reads a stat cell. Blank cells mean zero on the stats pages.
func lenientFloat(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// StatsMerger folds stat lines by player id, keeping field-wise maxima
type StatsMerger struct {
	lines    map[int]*models.StatLine
	order    []int
	overlaps int
}

// NewStatsMerger creates an empty merger
func NewStatsMerger() *StatsMerger {
	return &StatsMerger{lines: make(map[int]*models.StatLine)}
}

// Add merges line into the record for its player
func (m *StatsMerger) Add(line models.StatLine) {
	existing, ok := m.lines[line.PlayerID]
	if !ok {
		l := line
		m.lines[line.PlayerID] = &l
		m.order = append(m.order, line.PlayerID)
		return
	}
	m.overlaps++
	existing.MergeMax(&line)
}

// AddAll merges every line
func (m *StatsMerger) AddAll(lines []models.StatLine) {
	for _, l := range lines {
		m.Add(l)
	}
}

// Lines returns merged lines in first-seen order
func (m *StatsMerger) Lines() []models.StatLine {
	out := make([]models.StatLine, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.lines[id])
	}
	return out
}

// Overlaps is how many lines were merged into an existing player
func (m *StatsMerger) Overlaps() int {
	return m.overlaps
}
