// Package scoring computes fantasy point totals from merged season stats.
package scoring

import (
	"math"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/models"
)

// Standard scoring weights
const (
	passYdWeight         = 0.04
	passTDWeight         = 4
	passIntWeight        = -2
	rushYdWeight         = 0.1
	rushTDWeight         = 6
	fumbleWeight         = -2
	recYdWeight          = 0.1
	recTDWeight          = 6
	shortFGWeight        = 3
	fg40To49Weight       = 4
	fg50Weight           = 5
	xpWeight             = 1
	sackWeight           = 1
	defIntWeight         = 2
	fumbleRecWeight      = 2
	defTDWeight          = 6
	safetyWeight         = 2
	specialTeamsTDWeight = 6

	halfPPRReception = 0.5
	pprReception     = 1.0
)

// Calculate returns line with the three point totals and per-game rates filled in.
// Per-game rates stay zero when no games were played.
func Calculate(line models.StatLine) models.StatLine {
	standard := passYdWeight*line.PassYds +
		passTDWeight*line.PassTD +
		passIntWeight*line.PassInt +
		rushYdWeight*line.RushYds +
		rushTDWeight*line.RushTD +
		fumbleWeight*line.Fumbles +
		recYdWeight*line.RecYds +
		recTDWeight*line.RecTD +
		shortFGWeight*(line.FG1To19+line.FG20To29+line.FG30To39) +
		fg40To49Weight*line.FG40To49 +
		fg50Weight*line.FG50 +
		xpWeight*line.ExtraPoints +
		sackWeight*line.Sacks +
		defIntWeight*line.DefInt +
		fumbleRecWeight*line.FumblesRecovered +
		defTDWeight*line.DefTD +
		safetyWeight*line.Safeties +
		specialTeamsTDWeight*line.SpecialTeamsTD

	line.StandardPts = round(standard, 2)
	line.HalfPPRPts = round(standard+halfPPRReception*line.Receptions, 2)
	line.PPRPts = round(standard+pprReception*line.Receptions, 2)

	line.StandardPtsPerGame = perGame(line.StandardPts, line.Games)
	line.HalfPPRPtsPerGame = perGame(line.HalfPPRPts, line.Games)
	line.PPRPtsPerGame = perGame(line.PPRPts, line.Games)

	return line
}

// CalculateAll scores every line in place
func CalculateAll(lines []models.StatLine) {
	for i := range lines {
		lines[i] = Calculate(lines[i])
	}
}

func perGame(total, games float64) float64 {
	if games <= 0 {
		return 0
	}
	return round(total/games, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
