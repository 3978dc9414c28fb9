package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinNames(pins []*Pin) []string {
	names := make([]string, 0, len(pins))
	for _, pin := range pins {
		names = append(names, pin.Name)
	}

	return names
}

func TestNewNodeHasExecutionPinsOnly(t *testing.T) {
	node := NewNode("", "Empty")

	require.NotEmpty(t, node.ID)
	assert.Equal(t, NodeKindStandard, node.Kind)
	assert.Equal(t, []string{PinNameExecIn, PinNameExecOut}, pinNames(node.Pins))
	assert.Empty(t, node.DataInputs())
	assert.Empty(t, node.DataOutputs())
}

func TestSetCodeDerivesPins(t *testing.T) {
	node := NewNode("n1", "Add")

	err := node.SetCode("def add(a: int, b: int) -> int:\n    return a + b\n")
	require.NoError(t, err)

	assert.Equal(t, "add", node.FunctionName)
	assert.Equal(t, []string{PinNameExecIn, "a", "b", PinNameExecOut, "output"}, pinNames(node.Pins))

	a := node.FindPin("a")
	require.NotNil(t, a)
	assert.Equal(t, "int", a.Type)
	assert.Equal(t, PinCategoryData, a.Category)
	assert.Equal(t, PinDirectionInput, a.Direction)

	out := node.FindPin("output")
	require.NotNil(t, out)
	assert.Equal(t, "int", out.Type)
	assert.Equal(t, PinDirectionOutput, out.Direction)
}

func TestSetCodeTupleReturnsAreNumbered(t *testing.T) {
	node := NewNode("n1", "Split")

	err := node.SetCode("def split(value: str) -> Tuple[str, str, int]:\n    return a, b, 1\n")
	require.NoError(t, err)

	outputs := node.DataOutputs()
	require.Len(t, outputs, 3)
	assert.Equal(t, []string{"output_1", "output_2", "output_3"}, pinNames(outputs))
	assert.Equal(t, "str", outputs[0].Type)
	assert.Equal(t, "str", outputs[1].Type)
	assert.Equal(t, "int", outputs[2].Type)
}

func TestSetCodeUntypedParamsBecomeWildcards(t *testing.T) {
	node := NewNode("n1", "Passthrough")

	err := node.SetCode("def identity(value):\n    return value\n")
	require.NoError(t, err)

	in := node.FindPin("value")
	require.NotNil(t, in)
	assert.Equal(t, PinTypeAny, in.Type)
	assert.Empty(t, node.DataOutputs(), "no return annotation means no output pins")
}

func TestSetCodeNoneReturnHasNoOutputs(t *testing.T) {
	node := NewNode("n1", "Print")

	err := node.SetCode("def show(value: str) -> None:\n    print(value)\n")
	require.NoError(t, err)

	assert.Empty(t, node.DataOutputs())
	assert.NotNil(t, node.ExecInput())
	assert.NotNil(t, node.ExecOutput())
}

func TestSetCodeParseFailureKeepsLastGoodPins(t *testing.T) {
	node := NewNode("n1", "Add")
	require.NoError(t, node.SetCode("def add(a: int, b: int) -> int:\n    return a + b\n"))

	before := pinNames(node.Pins)

	err := node.SetCode("this is not a function")
	require.Error(t, err)

	assert.Equal(t, "this is not a function", node.Code, "code is stored even when unparseable")
	assert.Empty(t, node.FunctionName)
	assert.Equal(t, before, pinNames(node.Pins))
}

func TestRerouteNodeShape(t *testing.T) {
	node := NewRerouteNode("")

	assert.Equal(t, NodeKindReroute, node.Kind)
	assert.Equal(t, []string{PinNameRerouteIn, PinNameRerouteOut}, pinNames(node.Pins))
	assert.Nil(t, node.ExecInput())
	assert.Nil(t, node.ExecOutput())

	in := node.FindPin(PinNameRerouteIn)
	require.NotNil(t, in)
	assert.Equal(t, PinTypeAny, in.Type)
	assert.Equal(t, PinCategoryData, in.Category)
}

func TestRerouteNodeNeverRegeneratesPins(t *testing.T) {
	node := NewRerouteNode("r1")

	err := node.SetCode("def add(a: int, b: int) -> int:\n    return a + b\n")
	require.NoError(t, err)

	assert.Equal(t, []string{PinNameRerouteIn, PinNameRerouteOut}, pinNames(node.Pins))
}

func TestNodeSerializeRoundTripFields(t *testing.T) {
	node := NewNode("n1", "Add")
	require.NoError(t, node.SetCode("def add(a: int) -> int:\n    return a\n"))

	node.PosX, node.PosY = 120, -35.5
	node.Width, node.Height = 200, 80
	node.GUICode = "layout.addWidget(spin)"
	node.ColorTitle = "#123456"

	record := node.Serialize()

	assert.Equal(t, "n1", record.ID)
	assert.Equal(t, NodeKindStandard, record.Kind)
	assert.Equal(t, node.Code, record.Code)
	assert.Equal(t, 120.0, record.PosX)
	assert.Equal(t, -35.5, record.PosY)
	assert.Equal(t, "layout.addWidget(spin)", record.GUICode)
	assert.Equal(t, "#123456", record.ColorTitle)
}
