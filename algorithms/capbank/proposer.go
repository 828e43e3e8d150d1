package capbank

import (
	"slices"
	"sort"
)

// E24Catalog is the stock of standard capacitor values, in pF, searched by
// Propose when no catalog is given
var E24Catalog = []int{
	10, 11, 12, 13, 15, 16, 18, 20, 22, 24, 27, 30, 33, 36, 39, 43, 47, 51, 56,
	62, 68, 75, 82, 91, 100, 110, 120, 130, 150, 160, 180, 200, 220, 240, 270,
	300, 330, 360, 390, 430, 470, 510, 560, 620, 680, 750, 820, 910, 1000,
	1100, 1200, 1500, 1800, 2200, 2400, 2700,
}

// Propose lists every multiset of comboSize catalog values that sums to
// target. The catalog is searched in ascending order with duplicates
// dropped, so tuples are non-decreasing and come out in the order
// combinations with replacement are enumerated. A nil catalog means
// E24Catalog.
func Propose(comboSize, target int, catalog []int) [][]int {
	if catalog == nil {
		catalog = E24Catalog
	}
	if comboSize < 1 || len(catalog) == 0 {
		return nil
	}
	catalog = slices.Compact(slices.Sorted(slices.Values(catalog)))

	// partial sums only grow when every value is non-negative
	prune := slices.Min(catalog) >= 0

	var out [][]int
	combo := make([]int, comboSize)

	var walk func(depth, start, sum int)
	walk = func(depth, start, sum int) {
		if depth == comboSize {
			if sum == target {
				out = append(out, append([]int(nil), combo...))
			}
			return
		}
		for i := start; i < len(catalog); i++ {
			next := sum + catalog[i]
			if prune && next > target {
				continue
			}
			combo[depth] = catalog[i]
			walk(depth+1, i, next)
		}
	}
	walk(0, 0, 0)

	return out
}

// ProposeAll runs Propose for each target
func ProposeAll(comboSize int, catalog []int, targets ...int) map[int][][]int {
	out := make(map[int][][]int, len(targets))
	for _, target := range targets {
		out[target] = Propose(comboSize, target, catalog)
	}
	return out
}

// HasValue returns, in ascending order, the targets whose proposals use the
// given capacitor value anywhere
func HasValue(value int, proposals map[int][][]int) []int {
	var out []int
	for target, combos := range proposals {
		for _, combo := range combos {
			if slices.Contains(combo, value) {
				out = append(out, target)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}
