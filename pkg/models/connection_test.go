package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionRegistersWithBothPins(t *testing.T) {
	out := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "int")
	in := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "int")

	conn := NewConnection(out, in)

	require.NotEmpty(t, conn.ID)
	assert.True(t, conn.IsComplete())
	assert.Contains(t, out.Connections, conn)
	assert.Contains(t, in.Connections, conn)
}

func TestTemporaryConnection(t *testing.T) {
	out := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "str")
	in := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "str")

	conn := NewConnection(out, nil)

	assert.False(t, conn.IsComplete())
	assert.False(t, conn.IsData(), "a dangling wire carries no data")
	assert.Empty(t, out.Connections, "registration waits for the end pin")

	conn.SetEndPin(in)

	assert.True(t, conn.IsComplete())
	assert.True(t, conn.IsData())
	assert.Contains(t, out.Connections, conn)
	assert.Contains(t, in.Connections, conn)
}

func TestConnectionColorFollowsStartPinType(t *testing.T) {
	out := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "int")
	in := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "int")

	conn := NewConnection(out, in)

	assert.Equal(t, ColorForType("int"), conn.Color)
	assert.Equal(t, ColorForType(PinTypeAny), ColorForType("some_custom_type"))
}

func TestConnectionDestroyIsIdempotent(t *testing.T) {
	out := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "int")
	in := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "int")

	conn := NewConnection(out, in)

	conn.Destroy()
	conn.Destroy()

	assert.Empty(t, out.Connections)
	assert.Empty(t, in.Connections)
}

func TestConnectionKindPredicates(t *testing.T) {
	dataOut := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "int")
	dataIn := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "int")
	execOut := NewPin("n1", "exec_out", PinDirectionOutput, PinCategoryExecution, PinTypeExec)
	execIn := NewPin("n2", "exec_in", PinDirectionInput, PinCategoryExecution, PinTypeExec)

	data := NewConnection(dataOut, dataIn)
	exec := NewConnection(execOut, execIn)

	assert.True(t, data.IsData())
	assert.False(t, data.IsExecution())
	assert.True(t, exec.IsExecution())
	assert.False(t, exec.IsData())
}

func TestConnectionSerialize(t *testing.T) {
	out := NewPin("n1", "out", PinDirectionOutput, PinCategoryData, "int")
	in := NewPin("n2", "in", PinDirectionInput, PinCategoryData, "int")

	record := NewConnection(out, in).Serialize()

	assert.Equal(t, "n1:out", record.StartPinID)
	assert.Equal(t, "n2:in", record.EndPinID)
	assert.Equal(t, "n1", record.StartNodeID)
	assert.Equal(t, "n2", record.EndNodeID)

	partial := NewConnection(out, nil).Serialize()

	assert.Equal(t, "n1:out", partial.StartPinID)
	assert.Empty(t, partial.EndPinID)
	assert.Empty(t, partial.EndNodeID)
}
