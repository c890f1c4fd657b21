package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
	"github.com/mengeling/fantasy-football-draft-board-v2/internal/render"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	rankingTableSelector = "table#ranking-table"
	rankingRowSelector   = "tbody tr.player-row"
	// the cheatsheet's "Detailed" layout adds best, worst, avg and std dev columns
	detailToggleSelector = "[data-view='detailed'], #detailed-view-toggle"
)

// detailColumns holds the cell index of each detailed-layout column
type detailColumns struct {
	best, worst, average, stdDev int
}

// fallbackDetailColumns is the detailed layout when the table has no header row
var fallbackDetailColumns = detailColumns{best: 5, worst: 6, average: 7, stdDev: 8}

func (d detailColumns) last() int {
	return max(d.best, d.worst, d.average, d.stdDev)
}

var positionRankPattern = regexp.MustCompile(`([A-Za-z]+)(\d+)`)

// RankingsExtractor reads one cheatsheet per scoring convention
type RankingsExtractor struct {
	renderer render.Renderer
	detailed bool
	urls     map[models.ScoringConvention]string
}

// RankingsOption configures a RankingsExtractor
type RankingsOption func(*RankingsExtractor)

// WithRankingsURL overrides the page used for a convention
func WithRankingsURL(sc models.ScoringConvention, pageURL string) RankingsOption {
	return func(e *RankingsExtractor) {
		e.urls[sc] = pageURL
	}
}

// WithDetailedView asks the renderer to switch the table to its detailed layout
func WithDetailedView(enabled bool) RankingsOption {
	return func(e *RankingsExtractor) {
		e.detailed = enabled
	}
}

// NewRankingsExtractor creates an extractor rendering pages with r
func NewRankingsExtractor(r render.Renderer, opts ...RankingsOption) *RankingsExtractor {
	e := &RankingsExtractor{
		renderer: r,
		urls:     make(map[models.ScoringConvention]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rankings renders the convention's cheatsheet and parses every player row.
// Any malformed required field fails the whole pass.
func (e *RankingsExtractor) Rankings(ctx context.Context, sc models.ScoringConvention) ([]models.RankedPlayer, error) {
	pageURL, ok := e.urls[sc]
	if !ok {
		var err error
		if pageURL, err = sc.RankingsURL(); err != nil {
			return nil, err
		}
	}

	req := render.Request{
		URL:             pageURL,
		WaitSelector:    rankingTableSelector,
		RowSelector:     rankingTableSelector + " " + rankingRowSelector,
		ExtractSelector: rankingTableSelector,
	}
	if e.detailed {
		req.ToggleSelector = detailToggleSelector
	}

	html, err := e.renderer.Render(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s rankings: %w", sc, err)
	}

	rows, err := ParseRankings(html, sc, pageURL, e.detailed)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("convention", sc.String()).
		Int("rows", len(rows)).
		Msg("Rankings extracted")
	return rows, nil
}

// ParseRankings parses a rendered rankings table. pageURL resolves relative bio links.
// With detailed set, every row must carry best, worst, avg and std dev or the pass fails.
func ParseRankings(html string, sc models.ScoringConvention, pageURL string, detailed bool) ([]models.RankedPlayer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &StructureError{Page: pageURL, Reason: "unreadable html", Err: err}
	}

	table := doc.Find(rankingTableSelector)
	if table.Length() == 0 {
		return nil, &StructureError{Page: pageURL, Field: rankingTableSelector, Reason: "table not found"}
	}
	rows := table.Find(rankingRowSelector)
	if rows.Length() == 0 {
		return nil, &StructureError{Page: pageURL, Field: rankingRowSelector, Reason: "table has no player rows"}
	}

	cols, hasCols := findDetailColumns(table)
	if detailed && !hasCols {
		return nil, &StructureError{Page: pageURL, Field: "best", Reason: "detailed columns missing from table header"}
	}

	base, _ := url.Parse(pageURL)
	seen := make(map[int]bool, rows.Length())
	players := make([]models.RankedPlayer, 0, rows.Length())

	var parseErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		rp, err := parseRankingRow(row, sc, base, cols, hasCols, detailed)
		if err != nil {
			err.Page, err.Row = pageURL, i+1
			parseErr = err
			return false
		}
		if seen[rp.Identity.ID] {
			log.Warn().
				Int("player_id", rp.Identity.ID).
				Str("convention", sc.String()).
				Msg("Player listed twice in rankings, keeping first row")
			return true
		}
		seen[rp.Identity.ID] = true
		players = append(players, rp)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return players, nil
}

// findDetailColumns locates the detail columns by header label. A table without a
// header row is assumed to use the fixed detailed layout; a header row missing any
// of the labels means the detailed layout is not showing.
func findDetailColumns(table *goquery.Selection) (detailColumns, bool) {
	headers := table.Find("thead th")
	if headers.Length() == 0 {
		return fallbackDetailColumns, true
	}

	cols := detailColumns{best: -1, worst: -1, average: -1, stdDev: -1}
	headers.Each(func(i int, th *goquery.Selection) {
		label := strings.ToUpper(strings.NewReplacer(".", "", " ", "").Replace(th.Text()))
		switch label {
		case "BEST":
			cols.best = i
		case "WORST":
			cols.worst = i
		case "AVG":
			cols.average = i
		case "STDDEV":
			cols.stdDev = i
		}
	})
	if min(cols.best, cols.worst, cols.average, cols.stdDev) < 0 {
		return cols, false
	}
	return cols, true
}

func parseRankingRow(row *goquery.Selection, sc models.ScoringConvention, base *url.URL, cols detailColumns, hasCols, detailed bool) (models.RankedPlayer, *StructureError) {
	cells := row.Find("td")
	if cells.Length() < 4 {
		return models.RankedPlayer{}, &StructureError{Reason: fmt.Sprintf("expected at least 4 cells, found %d", cells.Length())}
	}

	rp := models.RankedPlayer{Convention: sc}

	overall, err := strictInt("overall", cells.Eq(0).Text())
	if err != nil {
		return rp, &StructureError{Field: "overall", Reason: "overall rank is required", Err: err}
	}
	rp.Overall = overall

	identity, serr := parsePlayerCell(cells.Eq(2), base)
	if serr != nil {
		return rp, serr
	}
	rp.Identity = identity

	rp.Position, rp.PositionRank, serr = parsePositionCell(cells.Eq(3))
	if serr != nil {
		return rp, serr
	}

	hasDetail := hasCols && cells.Length() > cols.last()
	if detailed && !hasDetail {
		return rp, &StructureError{Field: "best", Reason: fmt.Sprintf("detailed columns missing, row has %d cells", cells.Length())}
	}
	if hasDetail {
		if serr := parseDetailCells(cells, cols, &rp); serr != nil {
			return rp, serr
		}
	}

	return rp, nil
}

func parsePlayerCell(cell *goquery.Selection, base *url.URL) (models.PlayerIdentity, *StructureError) {
	var identity models.PlayerIdentity

	rawID, ok := cell.Find("div[data-player]").First().Attr("data-player")
	if !ok {
		return identity, &StructureError{Field: "player_id", Reason: "data-player attribute missing"}
	}
	id, err := strictInt("player_id", rawID)
	if err != nil {
		return identity, &StructureError{Field: "player_id", Reason: "player id must be numeric", Err: err}
	}
	identity.ID = id

	link := cell.Find("a").First()
	identity.Name = strings.TrimSpace(link.Text())
	if identity.Name == "" {
		return identity, &StructureError{Field: "name", Reason: "player name missing"}
	}

	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return identity, &StructureError{Field: "bio_url", Reason: "player link missing"}
	}
	identity.BioURL = resolve(base, strings.TrimSpace(href))

	team, err := models.ParseTeam(cell.Find("span").First().Text())
	if err != nil {
		return identity, &StructureError{Field: "team", Reason: "malformed team label", Err: err}
	}
	if !team.Known() {
		log.Warn().
			Int("player_id", identity.ID).
			Str("team", string(team)).
			Msg("Unlisted team abbreviation, keeping as shown")
	}
	identity.Team = team

	return identity, nil
}

func parsePositionCell(cell *goquery.Selection) (models.Position, int, *StructureError) {
	text := strings.TrimSpace(cell.Text())
	m := positionRankPattern.FindStringSubmatch(text)
	if m == nil {
		return "", 0, &StructureError{Field: "position", Reason: fmt.Sprintf("expected position and rank, got %q", text)}
	}

	pos, err := models.ParsePosition(m[1])
	if err != nil {
		return "", 0, &StructureError{Field: "position", Reason: "unknown position", Err: err}
	}

	rank, err := strictInt("position_rank", m[2])
	if err != nil || rank < 1 {
		return "", 0, &StructureError{Field: "position_rank", Reason: fmt.Sprintf("position rank must be a positive integer, got %q", m[2]), Err: err}
	}

	return pos, rank, nil
}

func parseDetailCells(cells *goquery.Selection, cols detailColumns, rp *models.RankedPlayer) *StructureError {
	var err error
	if rp.Best, err = strictInt("best", cells.Eq(cols.best).Text()); err != nil {
		return &StructureError{Field: "best", Reason: "best rank must be an integer", Err: err}
	}
	if rp.Worst, err = strictInt("worst", cells.Eq(cols.worst).Text()); err != nil {
		return &StructureError{Field: "worst", Reason: "worst rank must be an integer", Err: err}
	}
	if rp.Average, err = strictFloat("average", cells.Eq(cols.average).Text()); err != nil {
		return &StructureError{Field: "average", Reason: "average rank must be numeric", Err: err}
	}
	if rp.StdDev, err = strictFloat("standard_deviation", cells.Eq(cols.stdDev).Text()); err != nil {
		return &StructureError{Field: "standard_deviation", Reason: "standard deviation must be numeric", Err: err}
	}
	return nil
}

func strictInt(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func strictFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
