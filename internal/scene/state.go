package scene

import (
	"sort"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
)

// #region state

// GroupState is one group as exported for persistence.
type GroupState struct {
	Label   string            `json:"label"`
	Members []*memory.Context `json:"members"`
}

// EdgeState is one temporal edge as exported for persistence.
type EdgeState struct {
	Group string       `json:"group"`
	Pair  string       `json:"pair"`
	Edge  TemporalEdge `json:"edge"`
}

// State is the persistable part of a Scene. Buffered frames are transient
// and only counted.
type State struct {
	Groups     []GroupState `json:"groups"`
	Edges      []EdgeState  `json:"edges"`
	FrameCount int          `json:"frame_count"`
}

// Export returns a copy of the scene's groups and temporal edges. Groups come
// in first-commit order, edges sorted by group then pair key.
func (s *Scene) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{FrameCount: len(s.frames)}
	for _, label := range s.groupOrder {
		members := make([]*memory.Context, len(s.groups[label]))
		for i, m := range s.groups[label] {
			members[i] = m.Clone()
		}
		st.Groups = append(st.Groups, GroupState{Label: label, Members: members})
	}
	for group, m := range s.edges {
		for pair, e := range m {
			st.Edges = append(st.Edges, EdgeState{Group: group, Pair: pair, Edge: *e})
		}
	}
	sort.Slice(st.Edges, func(i, j int) bool {
		if st.Edges[i].Group != st.Edges[j].Group {
			return st.Edges[i].Group < st.Edges[j].Group
		}
		return st.Edges[i].Pair < st.Edges[j].Pair
	})
	return st
}

// Restore replaces the scene's groups and temporal edges with st. The frame
// buffer is cleared.
func (s *Scene) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames = nil
	s.groups = make(map[string][]*memory.Context, len(st.Groups))
	s.groupOrder = s.groupOrder[:0]
	s.edges = make(map[string]map[string]*TemporalEdge)

	for _, g := range st.Groups {
		if _, ok := s.groups[g.Label]; !ok {
			s.groupOrder = append(s.groupOrder, g.Label)
		}
		s.groups[g.Label] = g.Members
	}
	for _, es := range st.Edges {
		m, ok := s.edges[es.Group]
		if !ok {
			m = make(map[string]*TemporalEdge)
			s.edges[es.Group] = m
		}
		e := es.Edge
		m[es.Pair] = &e
	}
}

// #endregion state
