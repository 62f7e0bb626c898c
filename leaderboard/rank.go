package leaderboard

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/Dosada05/poker-leaderboard/models"
)

// Ordinal formats n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// RankLabel is the display label of a rank; tied ranks get a "T" prefix.
func RankLabel(rank int, tied bool) string {
	if tied {
		return "T" + Ordinal(rank)
	}
	return Ordinal(rank)
}

// Rank orders the standings of one series and assigns standard competition
// ranks (1, 2, 2, 4). Players sharing points are ordered by name.
func Rank(standings []models.PlayerStanding) []models.RankedStanding {
	sorted := slices.Clone(standings)
	slices.SortFunc(sorted, compareForBoard)

	pointCounts := make(map[int64]int, len(sorted))
	for _, s := range sorted {
		pointCounts[s.Points]++
	}

	ranked := make([]models.RankedStanding, len(sorted))
	rank := 0
	for i, s := range sorted {
		if i == 0 || s.Points != sorted[i-1].Points {
			rank = i + 1
		}
		tied := pointCounts[s.Points] > 1
		ranked[i] = models.RankedStanding{
			Standing: s,
			Rank:     rank,
			Label:    RankLabel(rank, tied),
			Tied:     tied,
		}
	}
	return ranked
}

// compareForBoard is a total order: points desc, then name case-insensitive,
// then exact name and id so equal inputs always land in the same place.
func compareForBoard(a, b models.PlayerStanding) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := compareFolded(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareFolded(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
