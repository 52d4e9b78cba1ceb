package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// #region log-commit
// LogCommit writes one entry to the commit_log table.
func LogCommit(db *sql.DB, entry CommitEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var membersJSON string
	if len(entry.Members) > 0 {
		b, err := json.Marshal(entry.Members)
		if err != nil {
			return fmt.Errorf("marshal members: %w", err)
		}
		membersJSON = string(b)
	}

	_, err := db.Exec(
		`INSERT INTO commit_log (frame_seq, label, kind, members_json, evicted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.FrameSeq,
		entry.Label,
		entry.Kind,
		nullIfEmpty(membersJSON),
		entry.Evicted,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log commit: %w", err)
	}
	return nil
}

// LogReport writes one row per commit in report, all stamped with the same
// frame sequence number and time.
func LogReport(db *sql.DB, frameSeq int64, report scene.CommitReport) error {
	now := time.Now().UTC()
	for _, c := range report.Commits {
		err := LogCommit(db, CommitEntry{
			FrameSeq:  frameSeq,
			Label:     c.Label,
			Kind:      string(c.Kind),
			Members:   c.Members,
			Evicted:   report.Evicted,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
// #endregion log-commit

// #region recent
// RecentCommits returns up to limit entries, newest first.
func RecentCommits(db *sql.DB, limit int) ([]CommitEntry, error) {
	rows, err := db.Query(
		`SELECT frame_seq, label, kind, members_json, evicted, created_at
		 FROM commit_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent commits: %w", err)
	}
	defer rows.Close()

	var out []CommitEntry
	for rows.Next() {
		var e CommitEntry
		var members sql.NullString
		var created string
		if err := rows.Scan(&e.FrameSeq, &e.Label, &e.Kind, &members, &e.Evicted, &created); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		if members.Valid {
			if err := json.Unmarshal([]byte(members.String), &e.Members); err != nil {
				return nil, fmt.Errorf("unmarshal members: %w", err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastFrameSeq returns the highest logged frame sequence number, or 0.
func LastFrameSeq(db *sql.DB) (int64, error) {
	var seq sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(frame_seq) FROM commit_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last frame seq: %w", err)
	}
	return seq.Int64, nil
}
// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
