package chart

import (
	"sort"

	"rivals-tracker/internal/domain"
)

type Entry struct {
	Label  string
	Weight float64
	Color  string
}

// Aggregate turns weighted entries into pie slices in input order. An empty result means
// there is nothing to draw (all weights zero). Zero-weight entries get no slice and the last
// slice always ends at exactly 360 degrees.
func Aggregate(entries []Entry) []domain.Slice {
	var total float64
	last := -1
	for i, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
			last = i
		}
	}
	if total == 0 {
		return []domain.Slice{}
	}

	slices := make([]domain.Slice, 0, len(entries))
	current := 0.0
	for i, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		angle := e.Weight / total * 360
		end := current + angle
		if i == last {
			end = 360
		}
		slices = append(slices, domain.Slice{
			Label:      e.Label,
			StartAngle: current,
			EndAngle:   end,
			Color:      e.Color,
			Count:      e.Weight,
			Percent:    e.Weight / total * 100,
			Path:       Arc(current, end),
		})
		current = end
	}
	return slices
}

// GroupBy sums weights per category, keeping categories in order of first appearance.
// Rows rejected by keep, or without a category, are dropped.
func GroupBy[T any](rows []T, category func(T) (string, bool), weight func(T) float64, keep func(T) bool) []Entry {
	index := make(map[string]int)
	var entries []Entry
	for _, row := range rows {
		if keep != nil && !keep(row) {
			continue
		}
		key, ok := category(row)
		if !ok {
			continue
		}
		w := weight(row)
		if w <= 0 {
			continue
		}
		if i, seen := index[key]; seen {
			entries[i].Weight += w
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Label: key, Weight: w})
	}
	return entries
}

func heroMatches(h domain.HeroStat) float64 { return h.Matches.Float() }

func heroKey(h domain.HeroStat) (string, bool) {
	name := normalizeHero(h.HeroName)
	return name, name != ""
}

func heroRole(h domain.HeroStat) (string, bool) {
	role, ok := RoleOf(h.HeroName)
	return string(role), ok
}

// RoleSlices builds the role distribution chart in the fixed Vanguard, Duelist, Strategist order.
// Heroes missing from the catalogue are ignored.
func RoleSlices(heroes []domain.HeroStat) []domain.Slice {
	grouped := GroupBy(heroes, heroRole, heroMatches, nil)
	weights := make(map[string]float64, len(grouped))
	for _, e := range grouped {
		weights[e.Label] = e.Weight
	}

	entries := make([]Entry, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		entries = append(entries, Entry{
			Label:  string(role),
			Weight: weights[string(role)],
			Color:  RoleColor(role),
		})
	}
	return Aggregate(entries)
}

// HeroSlices builds the heroes-played chart sorted by descending match count, optionally
// restricted to one role.
func HeroSlices(heroes []domain.HeroStat, filterRole domain.Role) []domain.Slice {
	var keep func(domain.HeroStat) bool
	if filterRole != "" {
		keep = func(h domain.HeroStat) bool {
			role, ok := RoleOf(h.HeroName)
			return ok && role == filterRole
		}
	}

	entries := GroupBy(heroes, heroKey, heroMatches, keep)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Label < entries[j].Label
	})
	for i := range entries {
		entries[i].Color = HeroColor(entries[i].Label, i)
		entries[i].Label = CapitalizeWords(entries[i].Label)
	}
	return Aggregate(entries)
}

// Total sums the counts of a slice list.
func Total(slices []domain.Slice) float64 {
	var total float64
	for _, s := range slices {
		total += s.Count
	}
	return total
}
