package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/scene"
	"github.com/danielpatrickdp/scene-memory/internal/similarity"
)

// #region memories
func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	nodes := s.orch.Memory().Nodes()
	if nodes == nil {
		nodes = []*memory.MemoryNode{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(nodes),
		"memories": nodes,
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	node := s.orch.Memory().GetMemory(label)
	if node == nil {
		writeError(w, http.StatusNotFound, "memory "+label+" not found")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleAssociations(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	limit := 0
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max must be an integer")
			return
		}
		limit = n
	}

	mem := s.orch.Memory()
	if mem.GetMemory(label) == nil {
		writeError(w, http.StatusNotFound, "memory "+label+" not found")
		return
	}
	assoc := mem.RecallWithAssociations(label, limit)
	if assoc == nil {
		assoc = []memory.Association{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"label":        label,
		"associations": assoc,
	})
}

// handlePath answers the cheapest weighted path without touching memory.
// Reinforcement goes through POST /path/reinforce.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	from, to, ok := pathEnds(w, r)
	if !ok {
		return
	}
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "weighted":
	case "reinforce":
		writeError(w, http.StatusMethodNotAllowed, "reinforce mutates memory, use POST /path/reinforce")
		return
	default:
		writeError(w, http.StatusBadRequest, "unknown mode "+mode)
		return
	}
	path, cost := s.orch.Memory().ShortestAssociationCost(from, to)
	writePath(w, from, to, path, cost)
}

// handleReinforcePath reinforces every node on the fewest-hop path. The
// change is persisted at the next checkpoint.
func (s *Server) handleReinforcePath(w http.ResponseWriter, r *http.Request) {
	from, to, ok := pathEnds(w, r)
	if !ok {
		return
	}
	path := s.orch.Memory().ReinforcePath(from, to)
	writePath(w, from, to, path, float64(max(len(path)-1, 0)))
}

func pathEnds(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to required")
		return "", "", false
	}
	return from, to, true
}

func writePath(w http.ResponseWriter, from, to string, path []string, cost float64) {
	if path == nil {
		path = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from,
		"to":    to,
		"path":  path,
		"cost":  cost,
		"found": len(path) > 0,
	})
}
// #endregion memories

// #region groups
type groupView struct {
	Label   string            `json:"label"`
	Members []*memory.Context `json:"members"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	sc := s.orch.Scene()
	groups := sc.Groups()
	out := []groupView{}
	for _, label := range sc.GroupLabels() {
		out = append(out, groupView{Label: label, Members: groups[label]})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"groups": out,
		"edges":  s.orch.Scene().EdgeCount(),
	})
}

func (s *Server) handleGroupRecall(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	q := r.URL.Query()

	tolerance := s.orch.Config().VarianceTolerance
	if v := q.Get("tolerance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "tolerance must be a number")
			return
		}
		tolerance = f
	}

	var st similarity.Strategy
	if name := q.Get("strategy"); name != "" {
		var err error
		if st, err = s.strategies.Lookup(name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sc := s.orch.Scene()
	if _, ok := sc.Groups()[label]; !ok {
		writeError(w, http.StatusNotFound, "group "+label+" not found")
		return
	}
	matches := sc.RecallFromGroup(label, tolerance, st)
	if matches == nil {
		matches = []scene.GroupMatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"label":     label,
		"tolerance": tolerance,
		"matches":   matches,
	})
}
// #endregion groups

// #region frames
type frameView struct {
	Index   int              `json:"index"`
	Sources []string         `json:"sources"`
	Entries []scene.Entry    `json:"entries"`
	Process scene.Collection `json:"process"`
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	sc := s.orch.Scene()
	frames := []frameView{}
	for i, f := range sc.Frames() {
		frames = append(frames, frameView{
			Index:   i,
			Sources: f.Sources(),
			Entries: f.Extract(),
			Process: f.Process(),
		})
	}
	clusters := [][]int{}
	for _, c := range sc.ClusterEntities() {
		clusters = append(clusters, c.Indices)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(frames),
		"frames":   frames,
		"clusters": clusters,
	})
}
// #endregion frames

// #region history
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.orch.Snapshots(limitParam(r, 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": list, "active": s.orch.Version()})
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	list, err := s.orch.RecentCommits(limitParam(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commits": list})
}

func limitParam(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return def
}
// #endregion history
