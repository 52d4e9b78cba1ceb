package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielpatrickdp/scene-memory/internal/config"
	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
	"github.com/danielpatrickdp/scene-memory/internal/scene"
)

func testServer(t *testing.T) (*Server, *orchestrator.Orchestrator) {
	t.Helper()
	orch, err := orchestrator.New(config.Default(), nil)
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	mem := orch.Memory()
	for _, l := range []string{"X", "Y", "Z"} {
		if err := mem.AddMemory(l, memory.NewContext().Set("label", l), nil); err != nil {
			t.Fatalf("AddMemory: %v", err)
		}
	}
	if err := mem.Associate("X", "Y", 1.0); err != nil {
		t.Fatal(err)
	}
	if err := mem.Associate("Y", "Z", 5.0); err != nil {
		t.Fatal(err)
	}
	return New(orch, "test-version"), orch
}

func get(t *testing.T, srv *Server, path string) (int, map[string]any) {
	t.Helper()
	return do(t, srv, "GET", path)
}

func do(t *testing.T, srv *Server, method, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body of %s: %v", path, err)
	}
	return w.Code, body
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	code, body := get(t, srv, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if body["status"] != "ok" || body["version"] != "test-version" {
		t.Errorf("unexpected body %v", body)
	}
	if body["memories"] != 3.0 {
		t.Errorf("memories = %v, want 3", body["memories"])
	}
}

func TestMemoriesEndpoints(t *testing.T) {
	srv, _ := testServer(t)

	code, body := get(t, srv, "/memories")
	if code != http.StatusOK || body["count"] != 3.0 {
		t.Fatalf("list: status=%d body=%v", code, body)
	}

	code, body = get(t, srv, "/memories/Y")
	if code != http.StatusOK || body["label"] != "Y" {
		t.Fatalf("get: status=%d body=%v", code, body)
	}

	code, _ = get(t, srv, "/memories/nope")
	if code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", code)
	}

	code, body = get(t, srv, "/memories/Y/associations?max=1")
	if code != http.StatusOK {
		t.Fatalf("associations: status=%d", code)
	}
	assoc, _ := body["associations"].([]any)
	if len(assoc) != 1 {
		t.Errorf("expected 1 association, got %v", body["associations"])
	}

	code, _ = get(t, srv, "/memories/Y/associations?max=x")
	if code != http.StatusBadRequest {
		t.Errorf("bad max: status = %d, want 400", code)
	}
}

func TestPathEndpoint(t *testing.T) {
	srv, orch := testServer(t)

	code, body := get(t, srv, "/path?from=X&to=Z")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["cost"] != 6.0 || body["found"] != true {
		t.Errorf("unexpected weighted path %v", body)
	}

	code, _ = get(t, srv, "/path?from=X&to=Z&mode=reinforce")
	if code != http.StatusMethodNotAllowed {
		t.Errorf("GET reinforce: status = %d, want 405", code)
	}
	if got := orch.Memory().GetMemory("Z").Reinforcement(); got != 0 {
		t.Errorf("GET must not reinforce, got %v", got)
	}

	code, body = do(t, srv, "POST", "/path/reinforce?from=X&to=Z")
	if code != http.StatusOK || body["cost"] != 2.0 {
		t.Fatalf("reinforce: status=%d body=%v", code, body)
	}
	if got := orch.Memory().GetMemory("Z").Reinforcement(); got != 1.0 {
		t.Errorf("expected Z reinforced, got %v", got)
	}
	if code, _ := do(t, srv, "POST", "/path/reinforce?from=X"); code != http.StatusBadRequest {
		t.Errorf("reinforce missing to: status = %d, want 400", code)
	}

	code, body = get(t, srv, "/path?from=X&to=nope")
	if code != http.StatusOK || body["found"] != false {
		t.Errorf("unreachable: status=%d body=%v", code, body)
	}

	if code, _ := get(t, srv, "/path?from=X"); code != http.StatusBadRequest {
		t.Errorf("missing to: status = %d, want 400", code)
	}
	if code, _ := get(t, srv, "/path?from=X&to=Z&mode=teleport"); code != http.StatusBadRequest {
		t.Errorf("bad mode: status = %d, want 400", code)
	}
}

func TestGroupsAndFrames(t *testing.T) {
	srv, orch := testServer(t)
	_, err := orch.Ingest(context.Background(), orchestrator.FrameInput{Experiences: []orchestrator.ExperienceInput{{
		Source: "eyes",
		Entries: []scene.Entry{
			{Label: "a", Value: 1, Weight: 1},
			{Label: "b", Value: 1, Weight: 1},
		},
	}}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	group := scene.GroupLabel([]string{"a", "b"})

	code, body := get(t, srv, "/groups")
	if code != http.StatusOK || body["count"] != 1.0 || body["edges"] != 1.0 {
		t.Fatalf("groups: status=%d body=%v", code, body)
	}

	code, body = get(t, srv, "/groups/"+group+"/recall?tolerance=0.9&strategy=cosine")
	if code != http.StatusOK {
		t.Fatalf("recall: status=%d body=%v", code, body)
	}
	if matches, _ := body["matches"].([]any); len(matches) != 2 {
		t.Errorf("expected 2 matches, got %v", body["matches"])
	}

	if code, _ := get(t, srv, "/groups/"+group+"/recall?strategy=nope"); code != http.StatusBadRequest {
		t.Errorf("bad strategy: status = %d, want 400", code)
	}
	if code, _ := get(t, srv, "/groups/group_missing/recall"); code != http.StatusNotFound {
		t.Errorf("missing group: status = %d, want 404", code)
	}

	code, body = get(t, srv, "/frames")
	if code != http.StatusOK || body["count"] != 1.0 {
		t.Fatalf("frames: status=%d body=%v", code, body)
	}
	if clusters, _ := body["clusters"].([]any); len(clusters) != 1 {
		t.Errorf("expected 1 frame cluster, got %v", body["clusters"])
	}
}
