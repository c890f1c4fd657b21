package models

import "fmt"

// ScoringConvention is one of the three point-scoring rule sets a ranking is published for
type ScoringConvention string

const (
	Standard ScoringConvention = "standard"
	Half     ScoringConvention = "half"
	PPR      ScoringConvention = "ppr"
)

// ScoringConventions lists every convention in ingestion order
var ScoringConventions = []ScoringConvention{Standard, Half, PPR}

// ParseScoringConvention maps a stored or user supplied value back to a convention
func ParseScoringConvention(s string) (ScoringConvention, error) {
	switch ScoringConvention(s) {
	case Standard, Half, PPR:
		return ScoringConvention(s), nil
	}
	return "", fmt.Errorf("unknown scoring convention %q", s)
}

// RankingsURL returns the cheatsheet page ranking players under the convention
func (s ScoringConvention) RankingsURL() (string, error) {
	switch s {
	case Standard:
		return "https://www.fantasypros.com/nfl/rankings/consensus-cheatsheets.php", nil
	case Half:
		return "https://www.fantasypros.com/nfl/rankings/half-point-ppr-cheatsheets.php", nil
	case PPR:
		return "https://www.fantasypros.com/nfl/rankings/ppr-cheatsheets.php", nil
	}
	return "", fmt.Errorf("no rankings page for scoring convention %q", s)
}

func (s ScoringConvention) String() string {
	return string(s)
}
