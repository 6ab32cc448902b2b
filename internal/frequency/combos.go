package frequency

import (
	"sort"

	"megasena-analyzer/models"
)

// Pair is an unordered 2-combination of drawn numbers, stored ascending so
// (7,3) and (3,7) collapse into the same key.
type Pair [2]int

// Triplet is an unordered 3-combination, stored ascending.
type Triplet [3]int

// PairCount is a pair together with its occurrence count.
type PairCount struct {
	Pair  Pair `json:"pair"`
	Count int  `json:"count"`
}

// TripletCount is a triplet together with its occurrence count.
type TripletCount struct {
	Triplet Triplet `json:"triplet"`
	Count   int     `json:"count"`
}

// Pairs counts every 2-combination within each draw and returns the k most
// frequent, ties broken by lexicographic key order. Draw numbers are already
// sorted ascending, so combinations come out canonical.
func Pairs(draws []models.Draw, k int) []PairCount {
	counts := make(map[Pair]int)
	for _, d := range draws {
		for i := 0; i < len(d.Numbers); i++ {
			for j := i + 1; j < len(d.Numbers); j++ {
				counts[Pair{d.Numbers[i], d.Numbers[j]}]++
			}
		}
	}

	ranked := make([]PairCount, 0, len(counts))
	for p, c := range counts {
		ranked = append(ranked, PairCount{Pair: p, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Pair[0] != ranked[j].Pair[0] {
			return ranked[i].Pair[0] < ranked[j].Pair[0]
		}
		return ranked[i].Pair[1] < ranked[j].Pair[1]
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// Triplets counts every 3-combination within each draw and returns the k most
// frequent, ties broken by lexicographic key order.
func Triplets(draws []models.Draw, k int) []TripletCount {
	counts := make(map[Triplet]int)
	for _, d := range draws {
		for i := 0; i < len(d.Numbers); i++ {
			for j := i + 1; j < len(d.Numbers); j++ {
				for l := j + 1; l < len(d.Numbers); l++ {
					counts[Triplet{d.Numbers[i], d.Numbers[j], d.Numbers[l]}]++
				}
			}
		}
	}

	ranked := make([]TripletCount, 0, len(counts))
	for t, c := range counts {
		ranked = append(ranked, TripletCount{Triplet: t, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		for x := 0; x < 3; x++ {
			if ranked[i].Triplet[x] != ranked[j].Triplet[x] {
				return ranked[i].Triplet[x] < ranked[j].Triplet[x]
			}
		}
		return false
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
