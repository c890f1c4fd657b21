package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringConventions_AllHaveURLs(t *testing.T) {
	require.Len(t, ScoringConventions, 3)
	seen := map[string]bool{}
	for _, sc := range ScoringConventions {
		url, err := sc.RankingsURL()
		require.NoError(t, err, "convention %s should map to a page", sc)
		assert.False(t, seen[url], "each convention should have its own page")
		seen[url] = true

		parsed, err := ParseScoringConvention(sc.String())
		require.NoError(t, err)
		assert.Equal(t, sc, parsed)
	}

	_, err := ScoringConvention("superflex").RankingsURL()
	assert.Error(t, err)
	_, err = ParseScoringConvention("superflex")
	assert.Error(t, err)
}

func TestCategories_SchemasMapToStatFields(t *testing.T) {
	require.Len(t, Categories, 6)
	var line StatLine
	for _, c := range Categories {
		schema, err := c.Schema()
		require.NoError(t, err, "category %s should have a schema", c)
		require.NotEmpty(t, schema)
		assert.Equal(t, "games", schema[len(schema)-1], "games is always the last column")
		for _, name := range schema {
			assert.NotNil(t, line.Field(name), "schema field %s of %s must exist on StatLine", name, c)
		}
	}

	_, err := Category("ol").Schema()
	assert.Error(t, err)
}

func TestCategorySchema_ReturnsCopy(t *testing.T) {
	wr, err := CategoryWR.Schema()
	require.NoError(t, err)
	wr[0] = "mutated"

	te, err := CategoryTE.Schema()
	require.NoError(t, err)
	assert.Equal(t, "receptions", te[0])
}

func TestStatsURL(t *testing.T) {
	assert.Equal(t, "https://www.fantasypros.com/nfl/stats/dst.php",
		CategoryDST.StatsURL("https://www.fantasypros.com/nfl/stats"))
}

func TestStatFields_AllAddressable(t *testing.T) {
	assert.Len(t, StatFields, 41)
	var line StatLine
	for i, name := range StatFields {
		p := line.Field(name)
		require.NotNil(t, p, name)
		*p = float64(i + 1)
	}
	row := line.Row()
	require.Len(t, row, 1+len(StatFields)+len(PointFields))
	for i := range StatFields {
		assert.Equal(t, float64(i+1), row[i+1])
	}
	assert.Nil(t, line.Field("fantasy_pts"))
}

func TestMergeMax(t *testing.T) {
	a := StatLine{PlayerID: 1, RushYds: 800, RecYds: 200, Games: 16}
	b := StatLine{PlayerID: 1, RushYds: 750, RecYds: 450, Games: 17}

	a.MergeMax(&b)

	assert.Equal(t, 800.0, a.RushYds)
	assert.Equal(t, 450.0, a.RecYds)
	assert.Equal(t, 17.0, a.Games, "overlapping games takes the max, not the sum")
}

func TestMergeMax_Idempotent(t *testing.T) {
	line := StatLine{PlayerID: 7, PassYds: 4100, PassTD: 31, PassCmpPct: 66.4, Games: 17}
	copyOf := line

	line.MergeMax(&copyOf)

	assert.Equal(t, copyOf, line)
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("wr")
	require.NoError(t, err)
	assert.Equal(t, WR, p)

	p, err = ParsePosition(" DST ")
	require.NoError(t, err)
	assert.Equal(t, DST, p)

	_, err = ParsePosition("OL")
	assert.Error(t, err)
}

func TestParseTeam(t *testing.T) {
	tm, err := ParseTeam("(KC)")
	require.NoError(t, err)
	assert.Equal(t, Team("KC"), tm)

	tm, err = ParseTeam("JAX")
	require.NoError(t, err)
	assert.Equal(t, Team("JAC"), tm)

	tm, err = ParseTeam("")
	require.NoError(t, err)
	assert.Equal(t, FreeAgent, tm)

	tm, err = ParseTeam("(XYZ)")
	require.NoError(t, err, "Unlisted codes pass through")
	assert.Equal(t, Team("XYZ"), tm)
	assert.False(t, tm.Known())
	assert.True(t, Team("KC").Known())

	for _, bad := range []string{"(X1)", "(TOOLONG)", "K", "(12)"} {
		_, err = ParseTeam(bad)
		assert.Error(t, err, bad)
	}
}

func TestRankedPlayer_ToRanking(t *testing.T) {
	rp := RankedPlayer{
		Identity:     PlayerIdentity{ID: 19196, Name: "Justin Jefferson", Team: "MIN"},
		Position:     WR,
		Convention:   PPR,
		Overall:      3,
		PositionRank: 2,
		Best:         1,
		Worst:        9,
		Average:      3.4,
		StdDev:       1.2,
	}
	r := rp.ToRanking()
	assert.Equal(t, Ranking{
		PlayerID: 19196, Convention: PPR, Overall: 3, PositionRank: 2,
		Best: 1, Worst: 9, Average: 3.4, StdDev: 1.2,
	}, r)
}
