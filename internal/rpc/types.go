package rpc

import (
	"github.com/danielpatrickdp/scene-memory/internal/memory"
)

// #region messages

// RecallRequest asks for one memory by label.
type RecallRequest struct {
	Label string `json:"label"`
}

// RecallResponse carries the recalled context. Found is false for unknown
// labels.
type RecallResponse struct {
	Found   bool            `json:"found"`
	Context *memory.Context `json:"context,omitempty"`
}

// RecallSimilarRequest scores Query against every stored memory. A nil
// Threshold means memory.DefaultSimilarityThreshold.
type RecallSimilarRequest struct {
	Query     *memory.Context `json:"query"`
	Threshold *float64        `json:"threshold,omitempty"`
}

// RecallSimilarResponse lists matches, most similar first.
type RecallSimilarResponse struct {
	Matches []memory.SimilarMemory `json:"matches"`
}

// PathRequest names the endpoints of a path query.
type PathRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PathResponse is an empty Path when no route exists.
type PathResponse struct {
	Path []string `json:"path"`
	Cost float64  `json:"cost"`
}

// GroupsRequest optionally narrows Groups to one group and recalls its
// matching members at Tolerance using the named Strategy. A nil Tolerance
// means the server's configured variance tolerance.
type GroupsRequest struct {
	Label     string   `json:"label,omitempty"`
	Tolerance *float64 `json:"tolerance,omitempty"`
	Strategy  string   `json:"strategy,omitempty"`
}

// GroupSummary describes one group by its member labels.
type GroupSummary struct {
	Label   string   `json:"label"`
	Members []string `json:"members"`
}

// GroupsResponse lists groups in commit order.
type GroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

// Float returns a pointer to v, for the optional numeric request fields.
func Float(v float64) *float64 {
	return &v
}

// #endregion messages
