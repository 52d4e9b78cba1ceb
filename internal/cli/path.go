package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	pathMode string
	pathSave bool
)

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Query a path between two memories in the active snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runPath,
}

func init() {
	pathCmd.Flags().StringVar(&pathMode, "mode", "weighted", "weighted (cheapest by edge cost) or reinforce (fewest hops, reinforces nodes)")
	pathCmd.Flags().BoolVar(&pathSave, "save", false, "checkpoint after a reinforce query")
}

func runPath(cmd *cobra.Command, args []string) error {
	orch, closeStore, err := open(loadConfig())
	if err != nil {
		return err
	}
	defer closeStore()

	from, to := args[0], args[1]
	mem := orch.Memory()
	out := cmd.OutOrStdout()

	switch pathMode {
	case "weighted":
		path, cost := mem.ShortestAssociationCost(from, to)
		if path == nil {
			fmt.Fprintf(out, "no path from %s to %s\n", from, to)
			return nil
		}
		fmt.Fprintf(out, "%s  cost=%g\n", strings.Join(path, " -> "), cost)
	case "reinforce":
		path := mem.ReinforcePath(from, to)
		if path == nil {
			fmt.Fprintf(out, "no path from %s to %s\n", from, to)
			return nil
		}
		fmt.Fprintf(out, "%s  hops=%d\n", strings.Join(path, " -> "), len(path)-1)
		if pathSave {
			info, err := orch.Checkpoint()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "snapshot %s\n", info.VersionID)
		}
	default:
		return fmt.Errorf("unknown mode %q", pathMode)
	}
	return nil
}
