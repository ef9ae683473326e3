// Package chain edits the ordered list of agent steps inside one agent
// node's parameters. Every operation decodes params["agents"], applies a pure
// transformation, and writes the whole list back through the graph's single
// parameter entry point, so each edit is atomic at the list level.
package chain

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openflow/studio/canvas"
)

const (
	paramAgents = "agents"

	// defaultPrompt seeds freshly added steps.
	defaultPrompt = "You are a helpful workflow agent."
)

var (
	// ErrLastStep indicates a removal that would leave the chain empty. An
	// agent chain always keeps at least one step.
	ErrLastStep = errors.New("an agent chain needs at least one step")

	// ErrStepOutOfRange indicates a step index outside the current list.
	ErrStepOutOfRange = errors.New("step index out of range")
)

// Step is one specialist in the chain: a name, a system prompt, the tools it
// may call, and an optional per-step model override.
type Step struct {
	Name         string   `json:"name"`
	SystemPrompt string   `json:"system_prompt"`
	Tools        []string `json:"tools"`
	Model        string   `json:"model,omitempty"`
}

// Editor binds chain operations to one node of a graph.
type Editor struct {
	graph  *canvas.Graph
	nodeID string
	logger *zap.Logger
}

// NewEditor creates an editor for the given node. The node is expected to be
// agent-typed; operations on a missing node fail with the graph's error.
func NewEditor(graph *canvas.Graph, nodeID string, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		graph:  graph,
		nodeID: nodeID,
		logger: logger.With(zap.String("component", "chain"), zap.String("node", nodeID)),
	}
}

// Steps decodes the node's current agent chain. Entries that are not objects
// are skipped rather than failing the whole decode, matching the backend's
// lenient normalization.
func (e *Editor) Steps() []Step {
	node := e.graph.Node(e.nodeID)
	if node == nil {
		return nil
	}
	raw, _ := node.Params[paramAgents].([]any)
	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		step := Step{}
		step.Name, _ = m["name"].(string)
		step.SystemPrompt, _ = m["system_prompt"].(string)
		step.Model, _ = m["model"].(string)
		if tools, ok := m["tools"].([]any); ok {
			for _, t := range tools {
				if name, ok := t.(string); ok {
					step.Tools = append(step.Tools, name)
				}
			}
		}
		steps = append(steps, step)
	}
	return steps
}

// UpdateName replaces the name of the step at index i.
func (e *Editor) UpdateName(i int, name string) error {
	return e.updateStep(i, func(s *Step) { s.Name = name })
}

// UpdatePrompt replaces the system prompt of the step at index i.
func (e *Editor) UpdatePrompt(i int, prompt string) error {
	return e.updateStep(i, func(s *Step) { s.SystemPrompt = prompt })
}

// SetModel sets or clears the per-step model override of the step at index i.
func (e *Editor) SetModel(i int, model string) error {
	return e.updateStep(i, func(s *Step) { s.Model = model })
}

// ToggleTool grants or revokes a tool on the step at index i. Granting is
// idempotent; revoking preserves the order of the remaining tools.
func (e *Editor) ToggleTool(i int, tool string, enabled bool) error {
	return e.updateStep(i, func(s *Step) {
		if enabled {
			for _, t := range s.Tools {
				if t == tool {
					return
				}
			}
			s.Tools = append(s.Tools, tool)
			return
		}
		kept := s.Tools[:0]
		for _, t := range s.Tools {
			if t != tool {
				kept = append(kept, t)
			}
		}
		s.Tools = kept
	})
}

// AddStep appends a new step with an auto-numbered name, the default prompt,
// and no tools.
func (e *Editor) AddStep() error {
	steps := e.Steps()
	steps = append(steps, Step{
		Name:         fmt.Sprintf("agent-%d", len(steps)+1),
		SystemPrompt: defaultPrompt,
		Tools:        []string{},
	})
	return e.write(steps)
}

// RemoveStep deletes the step at index i, closing the gap. Removing the last
// remaining step is rejected with ErrLastStep and the list is left unchanged.
func (e *Editor) RemoveStep(i int) error {
	steps := e.Steps()
	if i < 0 || i >= len(steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	if len(steps) <= 1 {
		e.logger.Debug("rejected removal of last remaining step")
		return ErrLastStep
	}
	steps = append(steps[:i], steps[i+1:]...)
	return e.write(steps)
}

// MoveStep swaps the step at index i with its neighbor in the given direction
// (-1 up, +1 down). Moves past either end are silent no-ops.
func (e *Editor) MoveStep(i, direction int) error {
	steps := e.Steps()
	if i < 0 || i >= len(steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	j := i + direction
	if j < 0 || j >= len(steps) {
		return nil
	}
	steps[i], steps[j] = steps[j], steps[i]
	return e.write(steps)
}

func (e *Editor) updateStep(i int, apply func(*Step)) error {
	steps := e.Steps()
	if i < 0 || i >= len(steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	apply(&steps[i])
	return e.write(steps)
}

// write encodes the whole list back into the node's params. Steps are stored
// as plain JSON-shaped maps so the raw parameter panel and the wire payload
// see the same representation the backend expects.
func (e *Editor) write(steps []Step) error {
	node := e.graph.Node(e.nodeID)
	if node == nil {
		return fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, e.nodeID)
	}

	encoded := make([]any, 0, len(steps))
	for _, s := range steps {
		m := map[string]any{
			"name":          s.Name,
			"system_prompt": s.SystemPrompt,
			"tools":         toAnySlice(s.Tools),
		}
		if s.Model != "" {
			m["model"] = s.Model
		}
		encoded = append(encoded, m)
	}

	params := make(map[string]any, len(node.Params))
	for k, v := range node.Params {
		params[k] = v
	}
	params[paramAgents] = encoded
	return e.graph.SetParams(e.nodeID, params)
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
