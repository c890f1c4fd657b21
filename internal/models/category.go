package models

import "fmt"

// Category is a statistics table on the source site. Each one has a fixed column layout.
type Category string

const (
	CategoryQB  Category = "qb"
	CategoryRB  Category = "rb"
	CategoryWR  Category = "wr"
	CategoryTE  Category = "te"
	CategoryK   Category = "k"
	CategoryDST Category = "dst"
)

// Categories lists every stats table in ingestion order
var Categories = []Category{CategoryQB, CategoryRB, CategoryWR, CategoryTE, CategoryK, CategoryDST}

var receivingColumns = []string{
	"receptions", "rec_tgt", "rec_yds", "rec_yds_per_rec", "rec_long", "rec_20", "rec_td",
	"rush_att", "rush_yds", "rush_td", "fumbles", "games",
}

// Schema returns the stat field names for the table's columns after rank and name,
// in the order they appear on the page.
func (c Category) Schema() ([]string, error) {
	switch c {
	case CategoryQB:
		return []string{
			"pass_cmp", "pass_att", "pass_cmp_pct", "pass_yds", "pass_yds_per_att", "pass_td",
			"pass_int", "pass_sacks", "rush_att", "rush_yds", "rush_td", "fumbles", "games",
		}, nil
	case CategoryRB:
		return []string{
			"rush_att", "rush_yds", "rush_yds_per_att", "rush_long", "rush_20", "rush_td",
			"receptions", "rec_tgt", "rec_yds", "rec_yds_per_rec", "rec_td", "fumbles", "games",
		}, nil
	case CategoryWR, CategoryTE:
		return append([]string(nil), receivingColumns...), nil
	case CategoryK:
		return []string{
			"field_goals", "fg_att", "fg_pct", "fg_long", "fg_1_19", "fg_20_29", "fg_30_39",
			"fg_40_49", "fg_50", "extra_points", "xp_att", "games",
		}, nil
	case CategoryDST:
		return []string{
			"sacks", "int", "fumbles_recovered", "fumbles_forced", "def_td", "safeties",
			"special_teams_td", "games",
		}, nil
	}
	return nil, fmt.Errorf("no schema for stats category %q", c)
}

// StatsURL returns the category's table under baseURL, e.g. https://www.fantasypros.com/nfl/stats/qb.php
func (c Category) StatsURL(baseURL string) string {
	return fmt.Sprintf("%s/%s.php", baseURL, c)
}
