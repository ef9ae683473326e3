package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound indicates an operation addressed a node id that is not
	// in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidParams indicates raw parameter text that does not parse as a
	// JSON object. The node's params are left untouched.
	ErrInvalidParams = errors.New("invalid parameter JSON")
)

// RawParams renders a node's parameters as indented JSON for the raw editing
// panel.
func (g *Graph) RawParams(id string) (string, error) {
	node := g.node(id)
	if node == nil {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	data, err := json.MarshalIndent(node.Params, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render params for %s: %w", id, err)
	}
	return string(data), nil
}

// CommitRawParams parses raw editor text and, only when it is a valid JSON
// object, replaces the node's parameters wholesale. Malformed text never
// reaches the graph: the node's params stay byte-for-byte unchanged and the
// returned error wraps ErrInvalidParams.
func (g *Graph) CommitRawParams(id, text string) error {
	node := g.node(id)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(text), &params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if params == nil {
		// "null" decodes without error but is not an object.
		return fmt.Errorf("%w: params must be a JSON object", ErrInvalidParams)
	}
	return g.SetParams(id, params)
}
