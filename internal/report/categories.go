package report

import (
	"slices"

	"presupuesto/internal/core"
)

const (
	// DashboardTopN is the number of categories on the dashboard breakdown.
	DashboardTopN = 6
	// AnnualTopN is the number of categories on the annual report ranking.
	AnnualTopN = 10
)

// Colours shared by charts and ranking entries.
const (
	ColorAccent = "#4F7FFF"
	ColorRed    = "#FF5A7E"
	ColorGreen  = "#4FD1A5"
	ColorYellow = "#FFB84F"
	ColorPurple = "#A78BFA"
)

// Palette is assigned to ranked entries by position, cycling when the
// ranking is longer than the palette.
var Palette = []string{
	ColorAccent, ColorRed, ColorGreen, ColorYellow, ColorPurple,
	"#F472B6", "#34D399", "#60A5FA", "#FBBF24", "#A78BFA",
}

// PaletteColor returns the palette entry for a zero-based rank.
func PaletteColor(rank int) string {
	if rank < 0 {
		rank = 0
	}
	return Palette[rank%len(Palette)]
}

// RankedCategory is one entry of an expense ranking.
type RankedCategory struct {
	Rank  int
	Name  string
	Total core.Money
	Color string
}

// RankCategories totals expense rows by category and keeps the n largest,
// sorted by total descending. Ties keep the order in which the categories
// were first seen. Rows outside the 1..12 months are ignored, matching
// MonthlySplit.
func RankCategories(rows []core.Transaction, n int) []RankedCategory {
	if n <= 0 {
		return nil
	}
	index := make(map[string]int)
	var ranked []RankedCategory
	for _, r := range rows {
		if r.Direction == core.Income || !validMonth(r) {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(ranked)
			index[r.Category] = i
			ranked = append(ranked, RankedCategory{Name: r.Category})
		}
		ranked[i].Total = ranked[i].Total.Add(r.Amount)
	}

	slices.SortStableFunc(ranked, func(a, b RankedCategory) int {
		switch {
		case a.Total.Cents > b.Total.Cents:
			return -1
		case a.Total.Cents < b.Total.Cents:
			return 1
		}
		return 0
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Color = PaletteColor(i)
	}
	return ranked
}
