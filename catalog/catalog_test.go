package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow/studio/backend"
)

func newBootstrapServer(t *testing.T, nodeStatus, toolStatus, configStatus int) *backend.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/node-catalog", func(w http.ResponseWriter, r *http.Request) {
		if nodeStatus != http.StatusOK {
			http.Error(w, "node catalog down", nodeStatus)
			return
		}
		json.NewEncoder(w).Encode([]backend.NodeCatalogItem{
			{Type: NodeTypeManualTrigger, Description: "Starts a workflow."},
			{Type: NodeTypeAgent, Description: "Runs agents in sequence."},
		})
	})
	mux.HandleFunc("/tool-catalog", func(w http.ResponseWriter, r *http.Request) {
		if toolStatus != http.StatusOK {
			http.Error(w, "tool catalog down", toolStatus)
			return
		}
		json.NewEncoder(w).Encode([]backend.ToolCatalogItem{
			{Name: "calculator", Description: "Evaluate a simple math expression."},
		})
	})
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		if configStatus != http.StatusOK {
			http.Error(w, "config down", configStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"agent_defaults": map[string]any{
				"model":       "qwen2.5:7b",
				"input_field": "question",
				"num_ctx":     2048,
			},
			"multi_agent_defaults": map[string]any{
				"agents": []any{
					map[string]any{"name": "planner", "system_prompt": "Plan.", "tools": []any{}},
				},
			},
			"profile_8gb": map[string]any{"model": "qwen2.5:7b"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cfg := backend.DefaultClientConfig()
	cfg.BaseURL = srv.URL
	return backend.NewClient(cfg, nil)
}

func TestLoad(t *testing.T) {
	client := newBootstrapServer(t, http.StatusOK, http.StatusOK, http.StatusOK)

	snap, err := Load(context.Background(), client, BuiltinFallbacks(), nil)
	require.NoError(t, err)

	assert.Len(t, snap.NodeTypes(), 2)
	assert.Len(t, snap.Tools(), 1)
	assert.Equal(t, "question", snap.InputField())

	params := snap.DefaultParams(NodeTypeAgent)
	assert.Equal(t, "qwen2.5:7b", params["model"])
	agents := params["agents"].([]any)
	require.Len(t, agents, 1)
	assert.Equal(t, "planner", agents[0].(map[string]any)["name"])
}

func TestLoad_NodeCatalogFailureIsFatal(t *testing.T) {
	client := newBootstrapServer(t, http.StatusInternalServerError, http.StatusOK, http.StatusOK)

	_, err := Load(context.Background(), client, BuiltinFallbacks(), nil)
	assert.Error(t, err)
}

func TestLoad_ConfigAndToolFailuresFallBack(t *testing.T) {
	client := newBootstrapServer(t, http.StatusOK, http.StatusInternalServerError, http.StatusInternalServerError)

	snap, err := Load(context.Background(), client, BuiltinFallbacks(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultInputField, snap.InputField())
	assert.Len(t, snap.Tools(), 4)

	params := snap.DefaultParams(NodeTypeAgent)
	assert.Equal(t, "qwen2.5:1.5b", params["model"])
	agents := params["agents"].([]any)
	require.Len(t, agents, 2)
	assert.Equal(t, "researcher", agents[0].(map[string]any)["name"])
}

func TestSnapshot_DefaultParamsPerType(t *testing.T) {
	snap := NewSnapshot(nil, BuiltinFallbacks())

	assert.Empty(t, snap.DefaultParams(NodeTypeManualTrigger))
	assert.Equal(t, map[string]any{}, snap.DefaultParams(NodeTypeSetFields)["fields"])
	assert.Equal(t, "{{json}}", snap.DefaultParams(NodeTypeTemplate)["template"])
	assert.Empty(t, snap.DefaultParams("exotic_type"))
	assert.NotEmpty(t, snap.DefaultParams(NodeTypeMultiAgent)["agents"])
}

func TestSnapshot_DefaultParamsIsAFreshCopy(t *testing.T) {
	snap := NewSnapshot(nil, BuiltinFallbacks())

	first := snap.DefaultParams(NodeTypeAgent)
	first["model"] = "mutated"
	first["agents"].([]any)[0].(map[string]any)["name"] = "mutated"

	second := snap.DefaultParams(NodeTypeAgent)
	assert.Equal(t, "qwen2.5:1.5b", second["model"])
	assert.Equal(t, "researcher", second["agents"].([]any)[0].(map[string]any)["name"])
}

func TestSnapshot_IsAgentType(t *testing.T) {
	snap := NewSnapshot(nil, BuiltinFallbacks())

	assert.True(t, snap.IsAgentType(NodeTypeAgent))
	assert.True(t, snap.IsAgentType(NodeTypeMultiAgent))
	assert.False(t, snap.IsAgentType(NodeTypeTemplate))
}

func TestLoadFallbacks_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallbacks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: llama3:8b
input_field: question
agents:
  - name: solo
    system_prompt: Answer directly.
    tools: [calculator]
`), 0o644))

	fb, err := LoadFallbacks(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3:8b", fb.Model)
	assert.Equal(t, "question", fb.InputField)
	require.Len(t, fb.Agents, 1)
	assert.Equal(t, "solo", fb.Agents[0].Name)
	// Untouched fields keep the builtin values.
	assert.Equal(t, BuiltinFallbacks().SystemPrompt, fb.SystemPrompt)
	assert.Equal(t, BuiltinFallbacks().ToolCatalog, fb.ToolCatalog)
}

func TestLoadFallbacks_MalformedFileKeepsBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))

	fb, err := LoadFallbacks(path)
	assert.Error(t, err)
	assert.Equal(t, BuiltinFallbacks(), fb)
}
