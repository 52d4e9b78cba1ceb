package scene

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/vecmath"
)

// GroupPrefix starts every group label.
const GroupPrefix = "group_"

// #region feature-vector

// ContextVector derives a context-level feature vector: every data value in
// insertion order except "label", numerics taken as-is and other scalars
// hashed. Non-scalars contribute 0.
func ContextVector(ctx *memory.Context) []float64 {
	if ctx == nil {
		return nil
	}
	var vec []float64
	for _, f := range ctx.All() {
		if f.Key == "label" {
			continue
		}
		if n, ok := memory.AsFloat(f.Value); ok {
			vec = append(vec, n)
			continue
		}
		s, err := memory.Stringify(f.Value)
		if err != nil {
			vec = append(vec, 0)
			continue
		}
		vec = append(vec, vecmath.HashFeature(s))
	}
	return vec
}

// #endregion feature-vector

// #region greedy

// greedyCluster assigns each vector to the first cluster holding any member
// with cosine >= tolerance, else opens a new cluster. Returns index lists.
func greedyCluster(vectors [][]float64, tolerance float64) [][]int {
	var clusters [][]int
	for i, v := range vectors {
		placed := false
		for c := range clusters {
			for _, m := range clusters[c] {
				if vecmath.Cosine(vectors[m], v) >= tolerance {
					clusters[c] = append(clusters[c], i)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			clusters = append(clusters, []int{i})
		}
	}
	return clusters
}

// #endregion greedy

// #region labels

// GroupLabel returns "group_" + md5 of the sorted, comma-joined labels. The
// same label set always yields the same group label.
func GroupLabel(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	sum := md5.Sum([]byte(strings.Join(sorted, ",")))
	return GroupPrefix + hex.EncodeToString(sum[:])
}

// PairKey is the temporal edge key for member indices i and j, smaller first.
func PairKey(i, j int) string {
	if j < i {
		i, j = j, i
	}
	return fmt.Sprintf("%d-%d", i, j)
}

func labelOf(ctx *memory.Context) string {
	s, _ := memory.Stringify(ctx.Get("label", nil))
	return s
}

// #endregion labels
