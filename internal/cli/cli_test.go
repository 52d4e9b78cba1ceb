package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const sampleFrames = `{"experiences":[{"source":"eyes","entries":[{"label":"a","value":1,"weight":1},{"label":"b","value":1,"weight":1}]}]}

{"experiences":[{"source":"ears","entries":[{"label":"bell","value":"ring","weight":2}]}]}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadFramesSkipsBlankLines(t *testing.T) {
	frames, err := readFrames(strings.NewReader(sampleFrames))
	if err != nil {
		t.Fatalf("readFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Experiences[0].Source != "ears" {
		t.Errorf("unexpected second frame %+v", frames[1])
	}
}

func TestReadFramesReportsLine(t *testing.T) {
	_, err := readFrames(strings.NewReader("{}\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestIngestThenInspect(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, sampleFrames, "ingest", "--db", db)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, "ingested 2 frames: 2 commits") || !strings.Contains(out, "snapshot ") {
		t.Errorf("unexpected ingest output %q", out)
	}

	out, err = run(t, "", "inspect", "memory", "--db", db)
	if err != nil {
		t.Fatalf("inspect memory: %v", err)
	}
	if !strings.Contains(out, "bell") || !strings.Contains(out, "group_") {
		t.Errorf("expected bell and a group in %q", out)
	}

	out, err = run(t, "", "inspect", "snapshots", "--db", db)
	if err != nil {
		t.Fatalf("inspect snapshots: %v", err)
	}
	if !strings.HasPrefix(out, "* ") {
		t.Errorf("expected the active snapshot marked, got %q", out)
	}

	out, err = run(t, "", "inspect", "commits", "--db", db)
	if err != nil {
		t.Fatalf("inspect commits: %v", err)
	}
	if !strings.Contains(out, "#2 single bell") {
		t.Errorf("unexpected commits output %q", out)
	}

	out, err = run(t, "", "path", "bell", "nope", "--db", db, "--mode", "weighted")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.Contains(out, "no path from bell to nope") {
		t.Errorf("unexpected path output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "memoryd dev") {
		t.Errorf("unexpected version output %q", out)
	}
}
