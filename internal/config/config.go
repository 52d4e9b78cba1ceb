// Package config collects the runtime settings of memoryd from defaults and
// environment variables.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

// #region config
// Config holds everything the daemon and CLI need to build a Scene, open the
// store and bind the transports.
type Config struct {
	DBPath            string
	GRPCAddr          string
	HTTPAddr          string
	BufferSize        int
	VarianceTolerance float64
	EdgeDecayRate     float64 // per second
	LegacyHash        bool
	Autosave          bool // checkpoint after every ingested batch
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:            "scene_memory.db",
		GRPCAddr:          "localhost:50061",
		HTTPAddr:          "127.0.0.1:37778",
		BufferSize:        scene.DefaultBufferSize,
		VarianceTolerance: scene.DefaultVarianceTolerance,
		EdgeDecayRate:     scene.DefaultEdgeDecayRate,
		LegacyHash:        false,
		Autosave:          true,
	}
}

// FromEnv overlays environment variables on Default. Unparseable values keep
// the default and are logged.
func FromEnv() Config {
	c := Default()
	c.DBPath = envOr("MEMORY_DB", c.DBPath)
	c.GRPCAddr = envOr("MEMORY_GRPC_ADDR", c.GRPCAddr)
	c.HTTPAddr = envOr("MEMORY_HTTP_ADDR", c.HTTPAddr)
	c.BufferSize = envInt("SCENE_BUFFER_SIZE", c.BufferSize)
	c.VarianceTolerance = envFloat("SCENE_VARIANCE_TOLERANCE", c.VarianceTolerance)
	c.EdgeDecayRate = envFloat("SCENE_EDGE_DECAY_RATE", c.EdgeDecayRate)
	c.LegacyHash = envBool("SCENE_LEGACY_HASH", c.LegacyHash)
	c.Autosave = envBool("MEMORY_AUTOSAVE", c.Autosave)
	return c
}

// SceneOptions converts the scene settings into scene options.
func (c Config) SceneOptions() []scene.Option {
	return []scene.Option{
		scene.WithBufferSize(c.BufferSize),
		scene.WithVarianceTolerance(c.VarianceTolerance),
		scene.WithEdgeDecayRate(c.EdgeDecayRate),
	}
}

// FrameOptions returns the options every new Frame should be built with.
func (c Config) FrameOptions() []scene.FrameOption {
	if c.LegacyHash {
		return []scene.FrameOption{scene.WithLegacyHashLayout()}
	}
	return nil
}
// #endregion config

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("[CONFIG] ignoring %s=%q: want a positive integer", key, v)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[CONFIG] ignoring %s=%q: want a non-negative number", key, v)
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[CONFIG] ignoring %s=%q: want a boolean", key, v)
		return fallback
	}
	return b
}
// #endregion helpers
