package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scene-memory/internal/config"
	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
	"github.com/danielpatrickdp/scene-memory/internal/store"
)

var dbFlag string

var rootCmd = &cobra.Command{
	Use:   "memoryd",
	Short: "Scene-based working memory daemon",
	Long: "memoryd clusters streamed frames of weighted observations into a labelled working-memory graph, " +
		"persists versioned snapshots in SQLite and serves the graph over gRPC and HTTP.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite database path (overrides MEMORY_DB)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(pathCmd)
}

// loadConfig reads the environment and applies global flags.
func loadConfig() config.Config {
	cfg := config.FromEnv()
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	return cfg
}

// open builds an orchestrator over the configured store. The returned
// function closes the store.
func open(cfg config.Config) (*orchestrator.Orchestrator, func(), error) {
	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	orch, err := orchestrator.New(cfg, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return orch, func() { st.Close() }, nil
}
