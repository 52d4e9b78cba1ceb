package config

import "testing"

func TestDefault(t *testing.T) {
	c := Default()
	if c.DBPath != "scene_memory.db" || c.GRPCAddr != "localhost:50061" || c.HTTPAddr != "127.0.0.1:37778" {
		t.Errorf("unexpected addresses %+v", c)
	}
	if c.BufferSize != 10 || c.VarianceTolerance != 0.7 || c.EdgeDecayRate != 0.001 {
		t.Errorf("unexpected scene defaults %+v", c)
	}
	if c.LegacyHash || !c.Autosave {
		t.Errorf("unexpected flags %+v", c)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MEMORY_DB", "/tmp/x.db")
	t.Setenv("SCENE_BUFFER_SIZE", "3")
	t.Setenv("SCENE_VARIANCE_TOLERANCE", "0.9")
	t.Setenv("SCENE_LEGACY_HASH", "true")
	t.Setenv("MEMORY_AUTOSAVE", "false")

	c := FromEnv()
	if c.DBPath != "/tmp/x.db" {
		t.Errorf("expected db override, got %s", c.DBPath)
	}
	if c.BufferSize != 3 || c.VarianceTolerance != 0.9 {
		t.Errorf("unexpected numeric overrides %+v", c)
	}
	if !c.LegacyHash || c.Autosave {
		t.Errorf("unexpected bool overrides %+v", c)
	}
	if len(c.FrameOptions()) != 1 {
		t.Error("expected legacy frame option")
	}
}

func TestFromEnvInvalidFallsBack(t *testing.T) {
	t.Setenv("SCENE_BUFFER_SIZE", "zero")
	t.Setenv("SCENE_EDGE_DECAY_RATE", "-1")
	t.Setenv("MEMORY_AUTOSAVE", "maybe")

	c := FromEnv()
	d := Default()
	if c.BufferSize != d.BufferSize || c.EdgeDecayRate != d.EdgeDecayRate || c.Autosave != d.Autosave {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestSceneOptions(t *testing.T) {
	if n := len(Default().SceneOptions()); n != 3 {
		t.Errorf("expected 3 options, got %d", n)
	}
	if Default().FrameOptions() != nil {
		t.Error("expected no frame options by default")
	}
}
