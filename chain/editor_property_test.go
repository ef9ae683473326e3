package chain

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/openflow/studio/backend"
	"github.com/openflow/studio/canvas"
	"github.com/openflow/studio/catalog"
)

// Whatever sequence of edits is applied, the chain keeps at least one step
// and no step ever lists the same tool twice.
func TestEditor_InvariantsUnderRandomOps(t *testing.T) {
	tools := []string{"calculator", "utc_time", "http_get", "tavily_search"}

	rapid.Check(t, func(t *rapid.T) {
		snap := catalog.NewSnapshot([]backend.NodeCatalogItem{
			{Type: catalog.NodeTypeAgent},
		}, catalog.BuiltinFallbacks())
		g := canvas.NewGraph(snap, nil)
		node := g.AddNode(catalog.NodeTypeAgent)
		e := NewEditor(g, node.ID, nil)

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			steps := e.Steps()
			idx := rapid.IntRange(0, len(steps)-1).Draw(t, "idx")

			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				_ = e.AddStep()
			case 1:
				// May be rejected on the last step; rejection must not mutate.
				_ = e.RemoveStep(idx)
			case 2:
				_ = e.MoveStep(idx, rapid.SampledFrom([]int{-1, +1}).Draw(t, "dir"))
			case 3:
				tool := rapid.SampledFrom(tools).Draw(t, "tool")
				_ = e.ToggleTool(idx, tool, rapid.Bool().Draw(t, "enabled"))
			case 4:
				_ = e.UpdateName(idx, rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "name"))
			case 5:
				_ = e.UpdatePrompt(idx, rapid.StringMatching(`[a-z ]{0,30}`).Draw(t, "prompt"))
			}
		}

		steps := e.Steps()
		if len(steps) < 1 {
			t.Fatalf("chain dropped to %d steps", len(steps))
		}
		for si, step := range steps {
			seen := make(map[string]bool)
			for _, tool := range step.Tools {
				if seen[tool] {
					t.Fatalf("step %d lists tool %q twice", si, tool)
				}
				seen[tool] = true
			}
		}
	})
}
