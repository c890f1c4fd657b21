package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerIdentity is what a rankings row tells us about a player.
// ID is the source site's player id and joins every other entity.
type PlayerIdentity struct {
	ID     int    `db:"id"`
	Name   string `db:"name"`
	Team   Team   `db:"team"`
	BioURL string `db:"-"`
}

// PlayerBio holds the attributes scraped from a player's detail page
type PlayerBio struct {
	Height   string `db:"height"`
	Weight   string `db:"weight"`
	Age      int    `db:"age"`
	College  string `db:"college"`
	ByeWeek  int    `db:"bye_week"`
	ImageURL string `db:"image_url"`
}

// Player is one published row of the players table
type Player struct {
	PlayerIdentity
	Position Position `db:"position"`
	PlayerBio
}

// Ranking is a player's rank under one scoring convention
type Ranking struct {
	PlayerID     int               `db:"player_id"`
	Convention   ScoringConvention `db:"scoring_convention"`
	Overall      int               `db:"overall"`
	PositionRank int               `db:"position_rank"`
	Best         int               `db:"best"`
	Worst        int               `db:"worst"`
	Average      float64           `db:"average"`
	StdDev       float64           `db:"standard_deviation"`
}

// RankedPlayer is a single parsed row of a rankings table
type RankedPlayer struct {
	Identity     PlayerIdentity
	Position     Position
	Convention   ScoringConvention
	Overall      int
	PositionRank int
	Best         int
	Worst        int
	Average      float64
	StdDev       float64
}

// ToRanking converts a parsed rankings row to its stored form
func (rp *RankedPlayer) ToRanking() Ranking {
	return Ranking{
		PlayerID:     rp.Identity.ID,
		Convention:   rp.Convention,
		Overall:      rp.Overall,
		PositionRank: rp.PositionRank,
		Best:         rp.Best,
		Worst:        rp.Worst,
		Average:      rp.Average,
		StdDev:       rp.StdDev,
	}
}

// RunMarker records one successful publish
type RunMarker struct {
	RunID       uuid.UUID `db:"run_id"`
	CompletedAt time.Time `db:"completed_at"`
}

// Snapshot is everything a single ingestion run publishes
type Snapshot struct {
	Players  []Player
	Rankings []Ranking
	Stats    []StatLine
}
