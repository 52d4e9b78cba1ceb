package vecmath

import (
	"hash/crc32"
	"math"
	"testing"
)

func TestCosine_Identical(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestCosine_ZeroMagnitude(t *testing.T) {
	if got := Cosine([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Errorf("expected 0 for zero vector, got %f", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("expected 0 for empty vectors, got %f", got)
	}
}

func TestCosine_OverlappingPrefix(t *testing.T) {
	// Trailing entries of the longer vector are ignored.
	got := Cosine([]float64{1, 2}, []float64{1, 2, 100})
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected prefix cosine 1.0, got %f", got)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "ab", 2},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"héllo", "hello", 1},
	}
	for _, c := range cases {
		if got := Levenshtein(c.a, c.b); got != c.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	if got := LevenshteinSimilarity("", ""); got != 1.0 {
		t.Errorf("empty strings: expected 1.0, got %f", got)
	}
	if got := LevenshteinSimilarity("same", "same"); got != 1.0 {
		t.Errorf("identical: expected 1.0, got %f", got)
	}
	if got := LevenshteinSimilarity("abcd", "wxyz"); got != 0 {
		t.Errorf("disjoint equal length: expected 0, got %f", got)
	}
	got := LevenshteinSimilarity("kitten", "sitting")
	if math.Abs(got-(1.0-3.0/7.0)) > 1e-9 {
		t.Errorf("kitten/sitting: got %f", got)
	}
}

func TestHashFeature(t *testing.T) {
	want := float64(crc32.ChecksumIEEE([]byte("alpha"))) * 1e-10
	if got := HashFeature("alpha"); got != want {
		t.Errorf("expected %g, got %g", want, got)
	}
	if HashFeature("alpha") == HashFeature("beta") {
		t.Error("expected different features for different inputs")
	}
}
