package logging

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE commit_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		frame_seq    INTEGER NOT NULL,
		label        TEXT NOT NULL,
		kind         TEXT NOT NULL,
		members_json TEXT,
		evicted      INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-commit-tests
func TestLogCommit_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := CommitEntry{
		FrameSeq:  3,
		Label:     "group_abc",
		Kind:      "group",
		Members:   []string{"a", "b"},
		Evicted:   1,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogCommit(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := RecentCommits(db, 10)
	if err != nil {
		t.Fatalf("RecentCommits: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	e := got[0]
	if e.FrameSeq != 3 || e.Label != "group_abc" || e.Kind != "group" || e.Evicted != 1 {
		t.Errorf("unexpected entry %+v", e)
	}
	if !reflect.DeepEqual(e.Members, []string{"a", "b"}) {
		t.Errorf("expected members [a b], got %v", e.Members)
	}
	if !e.CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("expected %v, got %v", entry.CreatedAt, e.CreatedAt)
	}
}

func TestLogCommit_NullMembers(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogCommit(db, CommitEntry{FrameSeq: 1, Label: "a", Kind: "single"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var members sql.NullString
	db.QueryRow("SELECT members_json FROM commit_log").Scan(&members)
	if members.Valid {
		t.Errorf("expected NULL members_json, got %q", members.String)
	}
}

func TestLogCommit_DefaultsTimestamp(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Second)
	if err := LogCommit(db, CommitEntry{FrameSeq: 1, Label: "a", Kind: "single"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := RecentCommits(db, 1)
	if len(got) != 1 || got[0].CreatedAt.Before(before) {
		t.Errorf("expected a fresh timestamp, got %+v", got)
	}
}

func TestLogCommit_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := LogCommit(db, CommitEntry{Label: "a", Kind: "single"}); err == nil {
		t.Fatal("expected error for missing table")
	}
}

// #endregion log-commit-tests

// #region log-report-tests
func TestLogReport(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	report := scene.CommitReport{
		Commits: []scene.Commit{
			{Label: "x", Kind: scene.CommitSingle},
			{Label: "group_1", Kind: scene.CommitGroup, Members: []string{"a", "b"}},
		},
		Evicted: 2,
	}
	if err := LogReport(db, 7, report); err != nil {
		t.Fatalf("LogReport: %v", err)
	}

	got, err := RecentCommits(db, 10)
	if err != nil {
		t.Fatalf("RecentCommits: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// newest first
	if got[0].Label != "group_1" || got[1].Label != "x" {
		t.Errorf("unexpected order %s, %s", got[0].Label, got[1].Label)
	}
	if got[0].FrameSeq != 7 || got[0].Evicted != 2 {
		t.Errorf("unexpected entry %+v", got[0])
	}

	seq, err := LastFrameSeq(db)
	if err != nil || seq != 7 {
		t.Errorf("expected last seq 7, got %d (%v)", seq, err)
	}
}

func TestLastFrameSeqEmpty(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	seq, err := LastFrameSeq(db)
	if err != nil || seq != 0 {
		t.Errorf("expected 0, got %d (%v)", seq, err)
	}
}

// #endregion log-report-tests
