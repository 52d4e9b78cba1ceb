package vecmath

import (
	"hash/crc32"
	"math"
)

// #region constants

// FeatureScale maps a CRC32 checksum into a small float so hashed features
// stay comparable in magnitude to plain numeric features.
const FeatureScale = 1e-10

// #endregion constants

// #region cosine

// Cosine returns the cosine similarity of a and b over their overlapping
// prefix (the shorter length bounds iteration). Returns 0 when either
// magnitude is 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// #endregion cosine

// #region levenshtein

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity returns 1 - distance/maxLen. Two empty strings (or
// identical strings) score 1.0.
func LevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// #endregion levenshtein

// #region feature-hash

// HashFeature returns CRC32(s) scaled by FeatureScale.
func HashFeature(s string) float64 {
	return float64(crc32.ChecksumIEEE([]byte(s))) * FeatureScale
}

// #endregion feature-hash
