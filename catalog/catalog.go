// Package catalog bootstraps the read-only reference data the builder needs:
// the node-type catalog, the tool catalog, and the backend's default agent
// configuration. The result is an immutable Snapshot that seeds every new
// node's parameters; nothing mutates it after Load returns.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openflow/studio/backend"
)

// Node types served by the backend's builtin registry.
const (
	NodeTypeManualTrigger = "manual_trigger"
	NodeTypeSetFields     = "set_fields"
	NodeTypeTemplate      = "template"
	NodeTypeAgent         = "langgraph_agent"
	NodeTypeMultiAgent    = "multi_agent"
)

// DefaultInputField is the run-input field name used when the backend config
// does not declare one.
const DefaultInputField = "message"

// Snapshot is the immutable bootstrap state. It is safe to share across
// components because no accessor exposes internal mutable references.
type Snapshot struct {
	nodeTypes  []backend.NodeCatalogItem
	tools      []backend.ToolCatalogItem
	inputField string

	agentDefaults map[string]any
	seedAgents    []any
}

// Load fetches the node catalog, tool catalog, and config concurrently.
// The node catalog is required; tool-catalog or config failures fall back to
// the given built-in defaults and only produce a warning.
func Load(ctx context.Context, client *backend.Client, fb Fallbacks, logger *zap.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "catalog"))

	var (
		nodeTypes []backend.NodeCatalogItem
		tools     []backend.ToolCatalogItem
		cfg       *backend.Config
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := client.NodeCatalog(gctx)
		if err != nil {
			return fmt.Errorf("node catalog unavailable: %w", err)
		}
		nodeTypes = items
		return nil
	})
	g.Go(func() error {
		items, err := client.ToolCatalog(gctx)
		if err != nil {
			logger.Warn("tool catalog unavailable, using fallback", zap.Error(err))
			return nil
		}
		tools = items
		return nil
	})
	g.Go(func() error {
		c, err := client.Config(gctx)
		if err != nil {
			logger.Warn("config unavailable, using fallback defaults", zap.Error(err))
			return nil
		}
		cfg = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{nodeTypes: nodeTypes}
	snap.applyFallbacks(fb)
	snap.applyConfig(cfg)
	if len(tools) > 0 {
		snap.tools = tools
	}

	logger.Info("bootstrap complete",
		zap.Int("node_types", len(snap.nodeTypes)),
		zap.Int("tools", len(snap.tools)),
		zap.Bool("config_fetched", cfg != nil))
	return snap, nil
}

// NewSnapshot builds a snapshot from fallbacks alone, without a backend.
// Used by tests and offline tooling.
func NewSnapshot(nodeTypes []backend.NodeCatalogItem, fb Fallbacks) *Snapshot {
	snap := &Snapshot{nodeTypes: nodeTypes}
	snap.applyFallbacks(fb)
	return snap
}

func (s *Snapshot) applyFallbacks(fb Fallbacks) {
	s.tools = fb.ToolCatalog
	s.inputField = fb.InputField
	if s.inputField == "" {
		s.inputField = DefaultInputField
	}
	s.agentDefaults = map[string]any{
		"model":         fb.Model,
		"system_prompt": fb.SystemPrompt,
		"input_field":   s.inputField,
		"tools":         toAnySlice(fb.Tools),
	}
	s.seedAgents = make([]any, 0, len(fb.Agents))
	for _, a := range fb.Agents {
		s.seedAgents = append(s.seedAgents, map[string]any{
			"name":          a.Name,
			"system_prompt": a.SystemPrompt,
			"tools":         toAnySlice(a.Tools),
		})
	}
}

func (s *Snapshot) applyConfig(cfg *backend.Config) {
	if cfg == nil {
		return
	}
	if len(cfg.AgentDefaults) > 0 {
		for k, v := range cfg.AgentDefaults {
			s.agentDefaults[k] = v
		}
		if field, ok := cfg.AgentDefaults["input_field"].(string); ok && field != "" {
			s.inputField = field
		}
	}
	if agents, ok := cfg.MultiAgentDefaults["agents"].([]any); ok && len(agents) > 0 {
		s.seedAgents = agents
	}
	if field, ok := cfg.MultiAgentDefaults["input_field"].(string); ok && field != "" {
		s.inputField = field
	}
}

// NodeTypes lists the catalog of installable node types.
func (s *Snapshot) NodeTypes() []backend.NodeCatalogItem {
	out := make([]backend.NodeCatalogItem, len(s.nodeTypes))
	copy(out, s.nodeTypes)
	return out
}

// Tools lists the tool catalog.
func (s *Snapshot) Tools() []backend.ToolCatalogItem {
	out := make([]backend.ToolCatalogItem, len(s.tools))
	copy(out, s.tools)
	return out
}

// InputField is the field name run input is wrapped under.
func (s *Snapshot) InputField() string {
	if s.inputField == "" {
		return DefaultInputField
	}
	return s.inputField
}

// IsAgentType reports whether nodes of this type carry an agent chain.
func (s *Snapshot) IsAgentType(nodeType string) bool {
	return nodeType == NodeTypeAgent || nodeType == NodeTypeMultiAgent
}

// Describe returns the catalog description for a node type, or "".
func (s *Snapshot) Describe(nodeType string) string {
	for _, item := range s.nodeTypes {
		if item.Type == nodeType {
			return item.Description
		}
	}
	return ""
}

// DefaultParams builds the parameter template a freshly added node of the
// given type starts with. The returned map is a fresh deep copy on every
// call; editing it never leaks back into the snapshot.
func (s *Snapshot) DefaultParams(nodeType string) map[string]any {
	switch nodeType {
	case NodeTypeManualTrigger:
		return map[string]any{}
	case NodeTypeSetFields:
		return map[string]any{"fields": map[string]any{}}
	case NodeTypeTemplate:
		return map[string]any{"template": "{{json}}"}
	case NodeTypeAgent, NodeTypeMultiAgent:
		params := cloneValue(s.agentDefaults).(map[string]any)
		if len(s.seedAgents) > 0 {
			params["agents"] = cloneValue(s.seedAgents)
		}
		return params
	default:
		return map[string]any{}
	}
}

// cloneValue deep-copies JSON-shaped data (maps, slices, scalars).
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
