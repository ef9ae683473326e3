package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openflow/studio/backend"
)

// AgentSeed is one pre-configured step of the default agent chain.
type AgentSeed struct {
	Name         string   `yaml:"name"`
	SystemPrompt string   `yaml:"system_prompt"`
	Tools        []string `yaml:"tools"`
}

// Fallbacks are the built-in defaults used when the backend's /config or
// /tool-catalog endpoints are unavailable. They mirror the backend's own
// shipped configuration so a degraded bootstrap still produces usable nodes.
type Fallbacks struct {
	Model        string                    `yaml:"model"`
	SystemPrompt string                    `yaml:"system_prompt"`
	InputField   string                    `yaml:"input_field"`
	Tools        []string                  `yaml:"tools"`
	Agents       []AgentSeed               `yaml:"agents"`
	ToolCatalog  []backend.ToolCatalogItem `yaml:"tool_catalog"`
}

// BuiltinFallbacks returns the compiled-in defaults.
func BuiltinFallbacks() Fallbacks {
	return Fallbacks{
		Model:        "qwen2.5:1.5b",
		SystemPrompt: "You are a helpful workflow agent.",
		InputField:   DefaultInputField,
		Tools:        []string{"calculator", "utc_time"},
		Agents: []AgentSeed{
			{
				Name:         "researcher",
				SystemPrompt: "Find facts and references. Prefer tool usage.",
				Tools:        []string{"tavily_search"},
			},
			{
				Name:         "synthesizer",
				SystemPrompt: "Create a concise final answer from prior agent outputs.",
				Tools:        []string{"calculator", "utc_time"},
			},
		},
		ToolCatalog: []backend.ToolCatalogItem{
			{Name: "calculator", Description: "Evaluate a simple math expression."},
			{Name: "utc_time", Description: "Get current UTC timestamp."},
			{Name: "http_get", Description: "Fetch URL content from allowlisted domains only."},
			{Name: "tavily_search", Description: "Search the web via Tavily API."},
		},
	}
}

// LoadFallbacks layers a YAML override file on top of the built-in defaults.
// Empty fields keep the built-in value. A missing or malformed file is an
// error; callers that want builtins-only pass an empty path.
func LoadFallbacks(path string) (Fallbacks, error) {
	fb := BuiltinFallbacks()
	if path == "" {
		return fb, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fb, fmt.Errorf("failed to read fallback file: %w", err)
	}

	var override Fallbacks
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fb, fmt.Errorf("failed to parse fallback file %s: %w", path, err)
	}

	if override.Model != "" {
		fb.Model = override.Model
	}
	if override.SystemPrompt != "" {
		fb.SystemPrompt = override.SystemPrompt
	}
	if override.InputField != "" {
		fb.InputField = override.InputField
	}
	if len(override.Tools) > 0 {
		fb.Tools = override.Tools
	}
	if len(override.Agents) > 0 {
		fb.Agents = override.Agents
	}
	if len(override.ToolCatalog) > 0 {
		fb.ToolCatalog = override.ToolCatalog
	}
	return fb, nil
}
