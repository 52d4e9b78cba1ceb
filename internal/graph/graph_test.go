package graph

import (
	"math"
	"reflect"
	"testing"
)

// #region test-vertices
func TestSetVertexKeepsPosition(t *testing.T) {
	g := New()
	g.SetVertex("a", nil)
	g.SetVertex("b", nil)
	g.SetVertex("a", []Edge{{TargetID: "b", Weight: 0.5}})

	if got := g.Vertices(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	edges := g.Neighbors("a")
	if len(edges) != 1 || edges[0].SourceID != "a" || edges[0].TargetID != "b" {
		t.Fatalf("unexpected edges: %+v", edges)
	}
}

func TestRemoveVertex(t *testing.T) {
	g := New()
	g.SetVertex("a", []Edge{{TargetID: "b", Weight: 1}})
	g.SetVertex("b", nil)

	if !g.RemoveVertex("b") {
		t.Fatal("expected removal to succeed")
	}
	if g.RemoveVertex("b") {
		t.Error("second removal should report false")
	}
	if g.HasVertex("b") {
		t.Error("b should be gone")
	}
	// Dangling edge is skipped
	if n := g.Neighbors("a"); len(n) != 0 {
		t.Errorf("expected no live neighbors, got %+v", n)
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 vertex, got %d", g.Len())
	}
}

// #endregion test-vertices

// #region test-shortest-path
func TestShortestPathIgnoresWeights(t *testing.T) {
	g := New()
	// a -> d directly is expensive, a -> b -> c -> d is cheap
	g.SetVertex("a", []Edge{{TargetID: "b", Weight: 0.1}, {TargetID: "d", Weight: 100}})
	g.SetVertex("b", []Edge{{TargetID: "c", Weight: 0.1}})
	g.SetVertex("c", []Edge{{TargetID: "d", Weight: 0.1}})
	g.SetVertex("d", nil)

	res := g.ShortestPath("a", "d")
	if !reflect.DeepEqual(res.IDs, []string{"a", "d"}) {
		t.Fatalf("expected [a d], got %v", res.IDs)
	}
	if res.Cost != 1 {
		t.Errorf("expected 1 hop, got %f", res.Cost)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := New()
	g.SetVertex("a", nil)
	g.SetVertex("b", nil)

	if res := g.ShortestPath("a", "b"); len(res.IDs) != 0 {
		t.Errorf("expected empty path, got %v", res.IDs)
	}
	if res := g.ShortestPath("a", "missing"); len(res.IDs) != 0 {
		t.Errorf("expected empty path for missing vertex, got %v", res.IDs)
	}
}

func TestShortestPathHandlesCycles(t *testing.T) {
	g := New()
	g.SetVertex("a", []Edge{{TargetID: "b", Weight: 1}})
	g.SetVertex("b", []Edge{{TargetID: "a", Weight: 1}, {TargetID: "c", Weight: 1}})
	g.SetVertex("c", []Edge{{TargetID: "a", Weight: 1}})

	res := g.ShortestPath("a", "c")
	if !reflect.DeepEqual(res.IDs, []string{"a", "b", "c"}) {
		t.Fatalf("expected [a b c], got %v", res.IDs)
	}
}

func TestShortestPathSelf(t *testing.T) {
	g := New()
	g.SetVertex("a", nil)
	res := g.ShortestPath("a", "a")
	if !reflect.DeepEqual(res.IDs, []string{"a"}) {
		t.Errorf("expected [a], got %v", res.IDs)
	}
}

// #endregion test-shortest-path

// #region test-cheapest-path
func TestCheapestPathUsesWeights(t *testing.T) {
	g := New()
	g.SetVertex("a", []Edge{{TargetID: "b", Weight: 0.1}, {TargetID: "d", Weight: 100}})
	g.SetVertex("b", []Edge{{TargetID: "c", Weight: 0.1}})
	g.SetVertex("c", []Edge{{TargetID: "d", Weight: 0.1}})
	g.SetVertex("d", nil)

	res := g.CheapestPath("a", "d")
	if !reflect.DeepEqual(res.IDs, []string{"a", "b", "c", "d"}) {
		t.Fatalf("expected [a b c d], got %v", res.IDs)
	}
	if math.Abs(res.Cost-0.3) > 1e-9 {
		t.Errorf("expected cost 0.3, got %f", res.Cost)
	}
}

func TestCheapestPathChain(t *testing.T) {
	g := New()
	g.SetVertex("x", []Edge{{TargetID: "y", Weight: 1}})
	g.SetVertex("y", []Edge{{TargetID: "x", Weight: 1}, {TargetID: "z", Weight: 5}})
	g.SetVertex("z", []Edge{{TargetID: "y", Weight: 5}})

	res := g.CheapestPath("x", "z")
	if !reflect.DeepEqual(res.IDs, []string{"x", "y", "z"}) {
		t.Fatalf("expected [x y z], got %v", res.IDs)
	}
	if math.Abs(res.Cost-6.0) > 1e-9 {
		t.Errorf("expected cost 6.0, got %f", res.Cost)
	}
}

func TestCheapestPathTieBreak(t *testing.T) {
	g := New()
	g.SetVertex("s", []Edge{{TargetID: "a", Weight: 1}, {TargetID: "b", Weight: 1}})
	g.SetVertex("a", []Edge{{TargetID: "t", Weight: 1}})
	g.SetVertex("b", []Edge{{TargetID: "t", Weight: 1}})
	g.SetVertex("t", nil)

	res := g.CheapestPath("s", "t")
	if !reflect.DeepEqual(res.IDs, []string{"s", "a", "t"}) {
		t.Errorf("expected first-discovered path [s a t], got %v", res.IDs)
	}
}

func TestCheapestPathUnreachable(t *testing.T) {
	g := New()
	g.SetVertex("a", nil)
	g.SetVertex("b", []Edge{{TargetID: "a", Weight: 1}})

	if res := g.CheapestPath("a", "b"); len(res.IDs) != 0 {
		t.Errorf("expected empty path, got %v", res.IDs)
	}
}

// #endregion test-cheapest-path
