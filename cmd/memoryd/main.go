package main

import (
	"os"

	"github.com/danielpatrickdp/scene-memory/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
