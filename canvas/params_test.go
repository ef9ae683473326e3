package canvas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow/studio/catalog"
)

func TestGraph_RawParams(t *testing.T) {
	g := NewGraph(testSnapshot(), nil)
	n := g.AddNode(catalog.NodeTypeTemplate)

	raw, err := g.RawParams(n.ID)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "{{json}}", decoded["template"])

	_, err = g.RawParams("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_CommitRawParams(t *testing.T) {
	g := NewGraph(testSnapshot(), nil)
	n := g.AddNode(catalog.NodeTypeTemplate)

	require.NoError(t, g.CommitRawParams(n.ID, `{"template": "hi {{json}}", "extra": 3}`))
	assert.Equal(t, "hi {{json}}", g.Node(n.ID).Params["template"])
	assert.Equal(t, 3.0, g.Node(n.ID).Params["extra"])
}

func TestGraph_CommitRawParams_InvalidTextLeavesParamsUntouched(t *testing.T) {
	g := NewGraph(testSnapshot(), nil)
	n := g.AddNode(catalog.NodeTypeSetFields)

	before, err := json.Marshal(g.Node(n.ID).Params)
	require.NoError(t, err)

	err = g.CommitRawParams(n.ID, `{"fields": `)
	assert.ErrorIs(t, err, ErrInvalidParams)

	after, err := json.Marshal(g.Node(n.ID).Params)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGraph_CommitRawParams_NonObjectRejected(t *testing.T) {
	g := NewGraph(testSnapshot(), nil)
	n := g.AddNode(catalog.NodeTypeSetFields)

	assert.ErrorIs(t, g.CommitRawParams(n.ID, `null`), ErrInvalidParams)
	assert.ErrorIs(t, g.CommitRawParams(n.ID, `[1, 2]`), ErrInvalidParams)
	assert.NotNil(t, g.Node(n.ID).Params["fields"])
}
