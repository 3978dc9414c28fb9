package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireflow/wireflow/pkg/models"
)

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory()

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.ErrorIs(t, h.Undo(), ErrNothingToUndo)
	assert.ErrorIs(t, h.Redo(), ErrNothingToRedo)
}

func TestHistoryPeek(t *testing.T) {
	g := New("test")

	_, err := g.CreateNode("Produce", produceCode)
	require.NoError(t, err)

	name, ok := g.History().PeekUndo()
	require.True(t, ok)
	assert.Contains(t, name, "Produce")

	require.NoError(t, g.Undo())

	_, ok = g.History().PeekUndo()
	assert.False(t, ok)

	name, ok = g.History().PeekRedo()
	require.True(t, ok)
	assert.Contains(t, name, "Produce")
}

func TestUndoRedoCreateNodeKeepsIdentity(t *testing.T) {
	g := New("test")

	node, err := g.CreateNode("Produce", produceCode)
	require.NoError(t, err)

	require.NoError(t, g.Undo())
	assert.Empty(t, g.Nodes())

	require.NoError(t, g.Redo())
	require.Len(t, g.Nodes(), 1)
	assert.Equal(t, node.ID, g.Nodes()[0].ID, "redo restores the same identifier")
}

func TestExecuteClearsRedoStack(t *testing.T) {
	g := New("test")

	_, err := g.CreateNode("A", produceCode)
	require.NoError(t, err)

	_, err = g.CreateNode("B", produceCode)
	require.NoError(t, err)

	require.NoError(t, g.Undo())
	require.True(t, g.History().CanRedo())

	_, err = g.CreateNode("C", produceCode)
	require.NoError(t, err)

	assert.False(t, g.History().CanRedo(), "a new mutation invalidates the undone future")
	assert.ErrorIs(t, g.Redo(), ErrNothingToRedo)
}

func TestFailedExecuteLeavesStacksUntouched(t *testing.T) {
	g := New("test")

	_, err := g.CreateNode("A", produceCode)
	require.NoError(t, err)
	require.NoError(t, g.Undo())

	require.True(t, g.History().CanRedo())

	// A failing mutation must neither enter the past stack nor clear the
	// future stack.
	require.Error(t, g.RemoveNode("ghost"))

	assert.False(t, g.History().CanUndo())
	assert.True(t, g.History().CanRedo())
}

func TestRepeatedUndoRedoOfNodeDeletion(t *testing.T) {
	g := New("test")

	producer, err := g.CreateNode("Produce", produceCode)
	require.NoError(t, err)

	consumer, err := g.CreateNode("Consume", consumeCode)
	require.NoError(t, err)

	_, err = g.CreateConnection(
		models.MakePinID(producer.ID, "output"),
		models.MakePinID(consumer.ID, "value"),
	)
	require.NoError(t, err)

	_, err = g.CreateConnection(
		models.MakePinID(producer.ID, models.PinNameExecOut),
		models.MakePinID(consumer.ID, models.PinNameExecIn),
	)
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode(producer.ID))

	// Ten full undo/redo cycles: the restoration must be exactly-once, so
	// collection and per-pin list sizes never grow.
	for range 10 {
		require.NoError(t, g.Undo())

		require.Len(t, g.Nodes(), 2)
		require.Len(t, g.Connections(), 2)

		restored, ok := g.NodeByID(producer.ID)
		require.True(t, ok)

		require.Len(t, restored.FindPin("output").Connections, 1)
		require.Len(t, restored.FindPin(models.PinNameExecOut).Connections, 1)

		surviving, ok := g.NodeByID(consumer.ID)
		require.True(t, ok)
		require.Len(t, surviving.FindPin("value").Connections, 1)
		require.Len(t, surviving.FindPin(models.PinNameExecIn).Connections, 1)

		require.NoError(t, g.Redo())

		require.Len(t, g.Nodes(), 1)
		require.Empty(t, g.Connections())
		require.Empty(t, consumer.FindPin("value").Connections)
	}
}

func TestUndoRestoresNodeKindAndValues(t *testing.T) {
	g := New("test")

	reroute, err := g.CreateRerouteNode()
	require.NoError(t, err)

	reroute.FindPin(models.PinNameRerouteIn).Value = 42

	require.NoError(t, g.RemoveNode(reroute.ID))
	require.NoError(t, g.Undo())

	restored, ok := g.NodeByID(reroute.ID)
	require.True(t, ok)
	assert.Equal(t, models.NodeKindReroute, restored.Kind)
	assert.Equal(t, 42, restored.FindPin(models.PinNameRerouteIn).Value)
}

func TestUndoRedoConnection(t *testing.T) {
	g := New("test")

	producer, err := g.CreateNode("Produce", produceCode)
	require.NoError(t, err)

	consumer, err := g.CreateNode("Consume", consumeCode)
	require.NoError(t, err)

	conn, err := g.CreateConnection(
		models.MakePinID(producer.ID, "output"),
		models.MakePinID(consumer.ID, "value"),
	)
	require.NoError(t, err)

	connID := conn.ID

	require.NoError(t, g.Undo())
	assert.Empty(t, g.Connections())
	assert.Empty(t, producer.FindPin("output").Connections)

	require.NoError(t, g.Redo())
	require.Len(t, g.Connections(), 1)
	assert.Equal(t, connID, g.Connections()[0].ID, "redo restores the same edge identifier")
}

func TestUndoStackOrdering(t *testing.T) {
	g := New("test")

	a, err := g.CreateNode("A", produceCode)
	require.NoError(t, err)

	b, err := g.CreateNode("B", produceCode)
	require.NoError(t, err)

	// Undo is strictly LIFO: B disappears first, then A.
	require.NoError(t, g.Undo())
	_, ok := g.NodeByID(b.ID)
	assert.False(t, ok)
	_, ok = g.NodeByID(a.ID)
	assert.True(t, ok)

	require.NoError(t, g.Undo())
	assert.Empty(t, g.Nodes())
}
