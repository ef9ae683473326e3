package canvas

// ViewMode is what the inspector panel shows for the selected node.
type ViewMode string

const (
	// ViewExecution shows the latest run transcript.
	ViewExecution ViewMode = "execution"
	// ViewNode shows the node's structured parameter editor.
	ViewNode ViewMode = "node"
)

// Event is a user action that can move the inspector between view modes.
type Event string

const (
	EventAddNode       Event = "add_node"
	EventSelectNode    Event = "select_node"
	EventConnectTarget Event = "connect_target"
)

// NextView is the inspector's transition function. Adding or selecting a node
// lands on the node editor for agent-type nodes and on the execution view for
// everything else. Connecting only moves the view when the target is an agent
// node; otherwise the current mode is kept.
func NextView(current ViewMode, event Event, agentType bool) ViewMode {
	switch event {
	case EventAddNode, EventSelectNode:
		if agentType {
			return ViewNode
		}
		return ViewExecution
	case EventConnectTarget:
		if agentType {
			return ViewNode
		}
		return current
	default:
		return current
	}
}
