package backend

import "time"

// Workflow is the wire form of a canvas graph, as persisted and executed by
// the OpenFlow backend. It is a projection: the client rebuilds it from the
// graph model on every save, it is never the source of truth.
type Workflow struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Nodes  []Node              `json:"nodes"`
	Edges  map[string][]string `json:"edges"`
	Active bool                `json:"active"`
}

// Node is the wire form of a workflow node. Label and canvas position are
// client-side presentation state and are not sent to the backend.
type Node struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// RunRequest wraps the user input for a workflow run.
type RunRequest struct {
	InputData map[string]any `json:"input_data"`
}

// ExecutionStatus is the backend-reported state of one run.
type ExecutionStatus string

const (
	ExecutionQueued  ExecutionStatus = "queued"
	ExecutionRunning ExecutionStatus = "running"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// ExecutionRecord is the backend's report of one workflow run. Immutable once
// received; the client keeps at most the latest record.
type ExecutionRecord struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	Status     ExecutionStatus `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Result     map[string]any  `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NodeCatalogItem describes one installable node type.
type NodeCatalogItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ToolCatalogItem describes one tool an agent step may be granted.
type ToolCatalogItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config is the /config response. Sections stay loosely typed maps because the
// backend owns their schema; the catalog package extracts the handful of
// fields the client relies on.
type Config struct {
	AgentDefaults      map[string]any `json:"agent_defaults"`
	MultiAgentDefaults map[string]any `json:"multi_agent_defaults,omitempty"`
	Profile8GB         map[string]any `json:"profile_8gb"`
	AgentTools         map[string]any `json:"agent_tools,omitempty"`
}
