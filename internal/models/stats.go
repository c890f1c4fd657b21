package models

import "math"

// StatLine is one player's season totals merged across every stats table they appear in,
// plus the derived fantasy point totals.
type StatLine struct {
	PlayerID int `db:"player_id"`

	PassCmp       float64 `db:"pass_cmp"`
	PassAtt       float64 `db:"pass_att"`
	PassCmpPct    float64 `db:"pass_cmp_pct"`
	PassYds       float64 `db:"pass_yds"`
	PassYdsPerAtt float64 `db:"pass_yds_per_att"`
	PassTD        float64 `db:"pass_td"`
	PassInt       float64 `db:"pass_int"`
	PassSacks     float64 `db:"pass_sacks"`

	RushAtt       float64 `db:"rush_att"`
	RushYds       float64 `db:"rush_yds"`
	RushYdsPerAtt float64 `db:"rush_yds_per_att"`
	RushLong      float64 `db:"rush_long"`
	Rush20        float64 `db:"rush_20"`
	RushTD        float64 `db:"rush_td"`

	Receptions   float64 `db:"receptions"`
	RecTgt       float64 `db:"rec_tgt"`
	RecYds       float64 `db:"rec_yds"`
	RecYdsPerRec float64 `db:"rec_yds_per_rec"`
	RecLong      float64 `db:"rec_long"`
	Rec20        float64 `db:"rec_20"`
	RecTD        float64 `db:"rec_td"`

	Fumbles float64 `db:"fumbles"`

	FieldGoals  float64 `db:"field_goals"`
	FGAtt       float64 `db:"fg_att"`
	FGPct       float64 `db:"fg_pct"`
	FGLong      float64 `db:"fg_long"`
	FG1To19     float64 `db:"fg_1_19"`
	FG20To29    float64 `db:"fg_20_29"`
	FG30To39    float64 `db:"fg_30_39"`
	FG40To49    float64 `db:"fg_40_49"`
	FG50        float64 `db:"fg_50"`
	ExtraPoints float64 `db:"extra_points"`
	XPAtt       float64 `db:"xp_att"`

	Sacks            float64 `db:"sacks"`
	DefInt           float64 `db:"int"`
	FumblesRecovered float64 `db:"fumbles_recovered"`
	FumblesForced    float64 `db:"fumbles_forced"`
	DefTD            float64 `db:"def_td"`
	Safeties         float64 `db:"safeties"`
	SpecialTeamsTD   float64 `db:"special_teams_td"`

	Games float64 `db:"games"`

	StandardPts        float64 `db:"standard_pts"`
	StandardPtsPerGame float64 `db:"standard_pts_per_game"`
	HalfPPRPts         float64 `db:"half_ppr_pts"`
	HalfPPRPtsPerGame  float64 `db:"half_ppr_pts_per_game"`
	PPRPts             float64 `db:"ppr_pts"`
	PPRPtsPerGame      float64 `db:"ppr_pts_per_game"`
}

// StatFields is every raw stat column in table order. Point totals are not included.
var StatFields = []string{
	"pass_cmp", "pass_att", "pass_cmp_pct", "pass_yds", "pass_yds_per_att", "pass_td", "pass_int", "pass_sacks",
	"rush_att", "rush_yds", "rush_yds_per_att", "rush_long", "rush_20", "rush_td",
	"receptions", "rec_tgt", "rec_yds", "rec_yds_per_rec", "rec_long", "rec_20", "rec_td",
	"fumbles",
	"field_goals", "fg_att", "fg_pct", "fg_long", "fg_1_19", "fg_20_29", "fg_30_39", "fg_40_49", "fg_50",
	"extra_points", "xp_att",
	"sacks", "int", "fumbles_recovered", "fumbles_forced", "def_td", "safeties", "special_teams_td",
	"games",
}

// PointFields are the derived columns filled in by the scoring calculator
var PointFields = []string{
	"standard_pts", "standard_pts_per_game",
	"half_ppr_pts", "half_ppr_pts_per_game",
	"ppr_pts", "ppr_pts_per_game",
}

// Field returns a pointer to the named raw stat, or nil for an unknown name
func (s *StatLine) Field(name string) *float64 {
	switch name {
	case "pass_cmp":
		return &s.PassCmp
	case "pass_att":
		return &s.PassAtt
	case "pass_cmp_pct":
		return &s.PassCmpPct
	case "pass_yds":
		return &s.PassYds
	case "pass_yds_per_att":
		return &s.PassYdsPerAtt
	case "pass_td":
		return &s.PassTD
	case "pass_int":
		return &s.PassInt
	case "pass_sacks":
		return &s.PassSacks
	case "rush_att":
		return &s.RushAtt
	case "rush_yds":
		return &s.RushYds
	case "rush_yds_per_att":
		return &s.RushYdsPerAtt
	case "rush_long":
		return &s.RushLong
	case "rush_20":
		return &s.Rush20
	case "rush_td":
		return &s.RushTD
	case "receptions":
		return &s.Receptions
	case "rec_tgt":
		return &s.RecTgt
	case "rec_yds":
		return &s.RecYds
	case "rec_yds_per_rec":
		return &s.RecYdsPerRec
	case "rec_long":
		return &s.RecLong
	case "rec_20":
		return &s.Rec20
	case "rec_td":
		return &s.RecTD
	case "fumbles":
		return &s.Fumbles
	case "field_goals":
		return &s.FieldGoals
	case "fg_att":
		return &s.FGAtt
	case "fg_pct":
		return &s.FGPct
	case "fg_long":
		return &s.FGLong
	case "fg_1_19":
		return &s.FG1To19
	case "fg_20_29":
		return &s.FG20To29
	case "fg_30_39":
		return &s.FG30To39
	case "fg_40_49":
		return &s.FG40To49
	case "fg_50":
		return &s.FG50
	case "extra_points":
		return &s.ExtraPoints
	case "xp_att":
		return &s.XPAtt
	case "sacks":
		return &s.Sacks
	case "int":
		return &s.DefInt
	case "fumbles_recovered":
		return &s.FumblesRecovered
	case "fumbles_forced":
		return &s.FumblesForced
	case "def_td":
		return &s.DefTD
	case "safeties":
		return &s.Safeties
	case "special_teams_td":
		return &s.SpecialTeamsTD
	case "games":
		return &s.Games
	}
	return nil
}

// MergeMax folds other into s by keeping the larger value of every raw stat.
// Overlapping category tables report the same season totals, so max never double counts.
func (s *StatLine) MergeMax(other *StatLine) {
	for _, name := range StatFields {
		dst := s.Field(name)
		*dst = math.Max(*dst, *other.Field(name))
	}
}

// Row returns player_id, the raw stats and the point totals in stats table column order
func (s *StatLine) Row() []any {
	row := make([]any, 0, 1+len(StatFields)+len(PointFields))
	row = append(row, s.PlayerID)
	for _, name := range StatFields {
		row = append(row, *s.Field(name))
	}
	return append(row,
		s.StandardPts, s.StandardPtsPerGame,
		s.HalfPPRPts, s.HalfPPRPtsPerGame,
		s.PPRPts, s.PPRPtsPerGame,
	)
}
