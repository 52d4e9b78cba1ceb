// Package graph holds the label-keyed adjacency arena that backs working
// memory. Vertices are addressed by label, never by pointer, so cycles and
// removal need no special handling.
package graph

import "container/heap"

// #region types
// Edge represents a weighted link between two labelled vertices.
type Edge struct {
	SourceID string
	TargetID string
	Weight   float64
}

// PathResult holds an ordered path and its total cost.
type PathResult struct {
	IDs  []string // vertex IDs from start to end
	Cost float64  // hop count for unit-cost search, summed weights otherwise
}

// Graph is an insertion-ordered directed adjacency list.
type Graph struct {
	adj   map[string][]Edge
	order []string
}

// #endregion types

// #region constructor
// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string][]Edge)}
}

// #endregion constructor

// #region vertices
// SetVertex stores id with the given outbound edges, replacing any previous
// adjacency. A replaced vertex keeps its position.
func (g *Graph) SetVertex(id string, edges []Edge) {
	if _, ok := g.adj[id]; !ok {
		g.order = append(g.order, id)
	}
	out := make([]Edge, len(edges))
	for i, e := range edges {
		e.SourceID = id
		out[i] = e
	}
	g.adj[id] = out
}

// RemoveVertex deletes id and its outbound edges. Inbound edges held by other
// vertices are left alone; traversal skips targets that no longer exist.
func (g *Graph) RemoveVertex(id string) bool {
	if _, ok := g.adj[id]; !ok {
		return false
	}
	delete(g.adj, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// HasVertex reports whether id exists.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// Len returns the vertex count.
func (g *Graph) Len() int {
	return len(g.order)
}

// Vertices returns vertex IDs in insertion order.
func (g *Graph) Vertices() []string {
	return append([]string(nil), g.order...)
}

// Neighbors returns the outbound edges of id whose targets still exist, in
// insertion order.
func (g *Graph) Neighbors(id string) []Edge {
	var out []Edge
	for _, e := range g.adj[id] {
		if g.HasVertex(e.TargetID) {
			out = append(out, e)
		}
	}
	return out
}

// #endregion vertices

// #region shortest-path
// ShortestPath performs a BFS from start to end treating every edge as unit
// cost. Returns an empty result when either vertex is missing or end is
// unreachable.
func (g *Graph) ShortestPath(start, end string) PathResult {
	if !g.HasVertex(start) || !g.HasVertex(end) {
		return PathResult{}
	}
	if start == end {
		return PathResult{IDs: []string{start}}
	}

	prev := map[string]string{}
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.Neighbors(current) {
			if visited[edge.TargetID] {
				continue
			}
			visited[edge.TargetID] = true
			prev[edge.TargetID] = current
			if edge.TargetID == end {
				ids := unwind(prev, start, end)
				return PathResult{IDs: ids, Cost: float64(len(ids) - 1)}
			}
			queue = append(queue, edge.TargetID)
		}
	}
	return PathResult{}
}

// #endregion shortest-path

// #region cheapest-path
// CheapestPath runs Dijkstra from start to end using edge weights as costs.
// Weights must be non-negative. Ties resolve to the path discovered first.
func (g *Graph) CheapestPath(start, end string) PathResult {
	if !g.HasVertex(start) || !g.HasVertex(end) {
		return PathResult{}
	}
	if start == end {
		return PathResult{IDs: []string{start}}
	}

	dist := map[string]float64{start: 0}
	prev := map[string]string{}
	done := map[string]bool{}
	pq := &queue{}
	seq := 0
	heap.Push(pq, &item{id: start, cost: 0, seq: seq})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*item)
		if done[current.id] {
			continue
		}
		done[current.id] = true
		if current.id == end {
			return PathResult{IDs: unwind(prev, start, end), Cost: current.cost}
		}

		for _, edge := range g.Neighbors(current.id) {
			if done[edge.TargetID] {
				continue
			}
			next := current.cost + edge.Weight
			if d, seen := dist[edge.TargetID]; seen && next >= d {
				continue
			}
			dist[edge.TargetID] = next
			prev[edge.TargetID] = current.id
			seq++
			heap.Push(pq, &item{id: edge.TargetID, cost: next, seq: seq})
		}
	}
	return PathResult{}
}

// #endregion cheapest-path

// #region helpers
func unwind(prev map[string]string, start, end string) []string {
	var ids []string
	for at := end; ; at = prev[at] {
		ids = append(ids, at)
		if at == start {
			break
		}
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

type item struct {
	id   string
	cost float64
	seq  int
}

type queue []*item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(*item)) }
func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// #endregion helpers
