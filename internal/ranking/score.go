// Package ranking orders league entries for leaderboards.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"garen-bot/internal/domain"
)

// Unranked is the score of a player without a solo queue entry.
const Unranked = -1

const (
	tierWeight     = 100_000
	divisionWeight = 10_000
	maxLP          = divisionWeight - 1
)

// Score maps an entry to an integer where tier dominates division, which
// dominates league points. Apex tiers sit in the top division bucket.
func Score(e *domain.LeagueEntry) int {
	if e == nil {
		return Unranked
	}
	lp := min(max(e.LeaguePoints, 0), maxLP)
	return int(e.Tier)*tierWeight + divisionBucket(e)*divisionWeight + lp
}

func divisionBucket(e *domain.LeagueEntry) int {
	if e.Tier.IsApex() || e.Division == domain.DivisionNone {
		return int(domain.DivisionI)
	}
	return int(e.Division)
}

// SortByScore sorts items best first. Equal scores keep their input order.
func SortByScore[T any](items []T, entry func(T) *domain.LeagueEntry) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(Score(entry(b)), Score(entry(a)))
	})
}

// Winrate is a percentage with one decimal, 0 when no games were played.
func Winrate(wins, losses int) float64 {
	total := wins + losses
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}

func DisplayRank(e *domain.LeagueEntry) string {
	if e == nil {
		return "Unranked"
	}
	if e.Tier.IsApex() || e.Division == domain.DivisionNone {
		return e.Tier.Title()
	}
	return e.Tier.Title() + " " + e.Division.String()
}
