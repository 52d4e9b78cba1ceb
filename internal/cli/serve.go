package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scene-memory/internal/rpc"
	"github.com/danielpatrickdp/scene-memory/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gRPC ingest API and the HTTP inspection API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	orch, closeStore, err := open(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	gs := rpc.NewGRPCServer(orch)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(orch, VersionString()),
	}

	errc := make(chan error, 2)
	go func() {
		fmt.Fprintf(os.Stderr, "memoryd grpc on %s\n", cfg.GRPCAddr)
		if err := gs.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		fmt.Fprintf(os.Stderr, "memoryd http on %s\n", cfg.HTTPAddr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-done:
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	case serveErr = <-errc:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "http shutdown: %v\n", err)
	}
	gs.GracefulStop()

	if info, err := orch.Checkpoint(); err != nil {
		fmt.Fprintf(os.Stderr, "final checkpoint failed: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "  checkpoint: %s (%d memories)\n", info.VersionID, info.NodeCount)
	}
	return serveErr
}
