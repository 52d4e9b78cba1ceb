package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
)

var ingestNoSave bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest JSON-lines frames from a file or stdin",
	Long: "Each non-empty line is one frame: " +
		`{"experiences":[{"source":"eyes","entries":[{"label":"a","value":1,"weight":1}]}]}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoSave, "no-save", false, "skip the checkpoint after ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open frames: %w", err)
		}
		defer f.Close()
		in = f
	}

	frames, err := readFrames(in)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	cfg.Autosave = cfg.Autosave && !ingestNoSave
	orch, closeStore, err := open(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	results, err := orch.IngestBatch(context.Background(), frames)
	if err != nil {
		return fmt.Errorf("ingested %d of %d frames: %w", len(results), len(frames), err)
	}

	out := cmd.OutOrStdout()
	commits, evicted := 0, 0
	for _, r := range results {
		commits += len(r.Report.Commits)
		evicted += r.Report.Evicted
	}
	fmt.Fprintf(out, "ingested %d frames: %d commits, %d evicted\n", len(results), commits, evicted)
	if v := orch.Version(); v != "" && cfg.Autosave {
		fmt.Fprintf(out, "snapshot %s\n", v)
	}
	return nil
}

// readFrames decodes one FrameInput per non-empty line.
func readFrames(r io.Reader) ([]orchestrator.FrameInput, error) {
	var frames []orchestrator.FrameInput
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var f orchestrator.FrameInput
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return frames, nil
}
