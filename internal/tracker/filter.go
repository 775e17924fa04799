package tracker

import (
	"math"
	"sort"
	"strings"

	"github.com/tgibson/stock-tracker/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder selects one of the six supported sort orders
type SortOrder string

const (
	SortAlphaAsc    SortOrder = "alpha-asc"
	SortAlphaDesc   SortOrder = "alpha-desc"
	SortPercentDesc SortOrder = "percent-desc"
	SortPercentAsc  SortOrder = "percent-asc"
	SortPriceDesc   SortOrder = "price-desc"
	SortPriceAsc    SortOrder = "price-asc"
)

// PerformanceFilter classifies entries by 24h change sign
type PerformanceFilter string

const (
	PerformanceAll     PerformanceFilter = "all"
	PerformanceGainers PerformanceFilter = "gainers"
	PerformanceLosers  PerformanceFilter = "losers"
)

// Query bundles the four pipeline stages. Apply runs them in the fixed
// order search, sector, performance, sort.
type Query struct {
	Search      string
	Sectors     []string
	Performance PerformanceFilter
	Sort        SortOrder
}

// SectorGroup is one sector's entries after grouping
type SectorGroup struct {
	Sector  string                 `json:"sector"`
	Entries []models.EnrichedEntry `json:"entries"`
}

// Apply runs the full filter/sort pipeline over an enriched list
func Apply(entries []models.EnrichedEntry, q Query) []models.EnrichedEntry {
	out := FilterBySearch(entries, q.Search)
	out = FilterBySector(out, q.Sectors)
	out = FilterByPerformance(out, q.Performance)
	return SortWatchlist(out, q.Sort)
}

// FilterBySearch keeps entries whose symbol or display name contains the
// term, case-insensitively. A blank term returns the input unchanged.
func FilterBySearch(entries []models.EnrichedEntry, term string) []models.EnrichedEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	var out []models.EnrichedEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Symbol), term) ||
			strings.Contains(strings.ToLower(e.Name), term) {
			out = append(out, e)
		}
	}
	return out
}

// FilterBySector keeps entries whose effective sector is in the selected
// set. An empty selection returns the input unchanged.
func FilterBySector(entries []models.EnrichedEntry, selected []string) []models.EnrichedEntry {
	if len(selected) == 0 {
		return entries
	}

	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}

	var out []models.EnrichedEntry
	for _, e := range entries {
		if _, ok := set[e.EffectiveSector()]; ok {
			out = append(out, e)
		}
	}
	return out
}

// FilterByPerformance keeps gainers (change > 0) or losers (change < 0).
// Entries without a 24h percent change are excluded from both buckets.
func FilterByPerformance(entries []models.EnrichedEntry, filter PerformanceFilter) []models.EnrichedEntry {
	if filter == PerformanceAll || filter == "" {
		return entries
	}

	var out []models.EnrichedEntry
	for _, e := range entries {
		pct := changePercent(e)
		if pct == nil {
			continue
		}
		if filter == PerformanceGainers && *pct > 0 {
			out = append(out, e)
		} else if filter == PerformanceLosers && *pct < 0 {
			out = append(out, e)
		}
	}
	return out
}

// SortWatchlist returns a new, stably sorted slice; the input is never
// mutated. Entries missing the sort key sink to the bottom under both
// directions.
func SortWatchlist(entries []models.EnrichedEntry, order SortOrder) []models.EnrichedEntry {
	sorted := make([]models.EnrichedEntry, len(entries))
	copy(sorted, entries)

	switch order {
	case SortAlphaAsc:
		c := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Symbol, sorted[j].Symbol) < 0
		})
	case SortAlphaDesc:
		c := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Symbol, sorted[j].Symbol) > 0
		})
	case SortPercentDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return keyOf(sorted[i], changePercent, math.Inf(-1)) > keyOf(sorted[j], changePercent, math.Inf(-1))
		})
	case SortPercentAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return keyOf(sorted[i], changePercent, math.Inf(1)) < keyOf(sorted[j], changePercent, math.Inf(1))
		})
	case SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return keyOf(sorted[i], currentPrice, math.Inf(-1)) > keyOf(sorted[j], currentPrice, math.Inf(-1))
		})
	case SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return keyOf(sorted[i], currentPrice, math.Inf(1)) < keyOf(sorted[j], currentPrice, math.Inf(1))
		})
	}
	return sorted
}

// GroupBySector partitions an already filtered and sorted list by
// effective sector, preserving first-seen order within each group. The
// "Cryptocurrency" group always sorts first; the rest follow in
// locale-aware ascending order. Sectors with no surviving entries do not
// appear.
func GroupBySector(entries []models.EnrichedEntry) []SectorGroup {
	byName := make(map[string][]models.EnrichedEntry)
	var names []string

	for _, e := range entries {
		sector := e.EffectiveSector()
		if _, seen := byName[sector]; !seen {
			names = append(names, sector)
		}
		byName[sector] = append(byName[sector], e)
	}

	c := collate.New(language.English)
	sort.SliceStable(names, func(i, j int) bool {
		if names[i] == models.SectorCryptocurrency {
			return true
		}
		if names[j] == models.SectorCryptocurrency {
			return false
		}
		return c.CompareString(names[i], names[j]) < 0
	})

	groups := make([]SectorGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, SectorGroup{Sector: name, Entries: byName[name]})
	}
	return groups
}

func changePercent(e models.EnrichedEntry) *float64 {
	if e.Price == nil {
		return nil
	}
	return e.Price.Change24hPct
}

func currentPrice(e models.EnrichedEntry) *float64 {
	if e.Price == nil {
		return nil
	}
	return &e.Price.CurrentPrice
}

func keyOf(e models.EnrichedEntry, get func(models.EnrichedEntry) *float64, missing float64) float64 {
	if v := get(e); v != nil {
		return *v
	}
	return missing
}
