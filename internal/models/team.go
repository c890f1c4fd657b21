package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Position is a player's roster position. DST covers team defenses.
type Position string

const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DST Position = "DST"
)

// ParsePosition accepts the position prefix shown in ranking tables ("WR", "dst", ...)
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToUpper(strings.TrimSpace(s))); p {
	case QB, RB, WR, TE, K, DST:
		return p, nil
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Team is an NFL team abbreviation as printed on the source site. FA marks free agents.
type Team string

var teams = map[Team]struct{}{
	"ARI": {}, "ATL": {}, "BAL": {}, "BUF": {}, "CAR": {}, "CHI": {}, "CIN": {}, "CLE": {},
	"DAL": {}, "DEN": {}, "DET": {}, "GB": {}, "HOU": {}, "IND": {}, "JAC": {}, "KC": {},
	"LV": {}, "LAC": {}, "LAR": {}, "MIA": {}, "MIN": {}, "NE": {}, "NO": {}, "NYG": {},
	"NYJ": {}, "PHI": {}, "PIT": {}, "SF": {}, "SEA": {}, "TB": {}, "TEN": {}, "WAS": {},
	"FA": {},
}

// FreeAgent is used when a player row carries no team label
const FreeAgent Team = "FA"

var teamCodePattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// Known reports whether t is one of the current franchises or FA
func (t Team) Known() bool {
	_, ok := teams[t]
	return ok
}

// ParseTeam normalises a team label such as "(KC)" or "jax". Any two or three
// letter code is accepted so a relocation or new abbreviation does not stop a
// refresh; callers check Known to flag it.
func ParseTeam(s string) (Team, error) {
	code := strings.ToUpper(strings.Trim(strings.TrimSpace(s), "()"))
	if code == "" {
		return FreeAgent, nil
	}
	// the site has used both spellings for Jacksonville
	if code == "JAX" {
		code = "JAC"
	}
	if !teamCodePattern.MatchString(code) {
		return "", fmt.Errorf("malformed team label %q", s)
	}
	return Team(code), nil
}
