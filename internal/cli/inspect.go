package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect stored snapshots, memories and the commit log",
}

var inspectSnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List recent snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, closeStore, err := open(loadConfig())
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := orch.Snapshots(inspectLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range list {
			marker := " "
			if s.VersionID == orch.Version() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s  nodes=%d frames=%d\n",
				marker, s.VersionID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.NodeCount, s.FrameCount)
		}
		return nil
	},
}

var inspectMemoryCmd = &cobra.Command{
	Use:   "memory [label]",
	Short: "Show one memory, or list every label",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, closeStore, err := open(loadConfig())
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		mem := orch.Memory()
		if len(args) == 0 {
			for _, n := range mem.Nodes() {
				fmt.Fprintf(out, "%s  edges=%s\n", n.Label(), strings.Join(n.Edges().Targets(), ","))
			}
			return nil
		}

		node := mem.GetMemory(args[0])
		if node == nil {
			return fmt.Errorf("memory %q not found", args[0])
		}
		b, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	},
}

var inspectCommitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Show the most recent commit log entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, closeStore, err := open(loadConfig())
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := orch.RecentCommits(inspectLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range list {
			fmt.Fprintf(out, "#%d %-6s %s %s\n", c.FrameSeq, c.Kind, c.Label, strings.Join(c.Members, ","))
		}
		return nil
	},
}

func init() {
	inspectCmd.PersistentFlags().IntVar(&inspectLimit, "limit", 20, "maximum rows to show")
	inspectCmd.AddCommand(inspectSnapshotsCmd, inspectMemoryCmd, inspectCommitsCmd)
}
