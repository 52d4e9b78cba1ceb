package logging

import "time"

// #region commit-entry
// CommitEntry is a single row in the commit_log table: one memory written by
// a Scene while ingesting a frame.
type CommitEntry struct {
	FrameSeq  int64     `json:"frame_seq"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"` // "single" | "group"
	Members   []string  `json:"members,omitempty"`
	Evicted   int       `json:"evicted"`
	CreatedAt time.Time `json:"created_at"`
}
// #endregion commit-entry
