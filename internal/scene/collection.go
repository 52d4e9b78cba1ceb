package scene

import (
	"math"
	"sort"
)

// #region types

// Stats summarises the aggregated weights of a Collection.
type Stats struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // population variance
}

// Collection is a frame's values aggregated by label and sorted by total
// weight, highest first.
type Collection struct {
	Items []Entry `json:"items"`
	Stats Stats   `json:"stats"`
}

// #endregion types

// #region organize

// organize sums weights per label (the last seen value wins), sorts the
// result by descending weight and computes summary statistics. Equal weights
// keep first-seen order.
func organize(entries []Entry) Collection {
	index := make(map[string]int)
	var items []Entry
	for _, e := range entries {
		if i, ok := index[e.Label]; ok {
			items[i].Weight += e.Weight
			items[i].Value = e.Value
			continue
		}
		index[e.Label] = len(items)
		items = append(items, e)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Weight > items[j].Weight
	})
	return Collection{Items: items, Stats: summarize(items)}
}

func summarize(items []Entry) Stats {
	if len(items) == 0 {
		return Stats{}
	}
	s := Stats{Count: len(items), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, it := range items {
		sum += it.Weight
		s.Min = math.Min(s.Min, it.Weight)
		s.Max = math.Max(s.Max, it.Weight)
	}
	s.Mean = sum / float64(len(items))
	for _, it := range items {
		d := it.Weight - s.Mean
		s.Variance += d * d
	}
	s.Variance /= float64(len(items))
	return s
}

// #endregion organize
