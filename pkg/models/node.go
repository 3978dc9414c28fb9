package models

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/wireflow/wireflow/pkg/codehost"
)

// NodeKind is the concrete subtype of a node. Undo must restore a node
// with its original kind; a reroute restored as a standard node would lose
// its single-pin shape.
type NodeKind string

const (
	NodeKindStandard NodeKind = "standard"
	NodeKindReroute  NodeKind = "reroute"
)

// Names of the implicit execution pins every standard node carries.
const (
	PinNameExecIn  = "exec_in"
	PinNameExecOut = "exec_out"
)

// Names of the two pins of a reroute node.
const (
	PinNameRerouteIn  = "input"
	PinNameRerouteOut = "output"
)

// Node wraps a user-authored function. Its pins are derived from the
// entry-function signature; position, size, colors, and the GUI-binding
// code snippets are stored opaquely for the host UI and never interpreted
// by the core.
type Node struct {
	ID    string
	Title string
	Kind  NodeKind

	PosX   float64
	PosY   float64
	Width  float64
	Height float64

	Code             string
	GUICode          string
	GUIGetValuesCode string

	// FunctionName is parsed from Code; empty when parsing failed.
	FunctionName string

	ColorTitle string
	ColorBody  string

	Pins []*Pin
}

// NewNode creates a standard node with the implicit execution pins and no
// data pins (the shape of a node whose entry function takes no parameters
// and returns nothing).
func NewNode(id, title string) *Node {
	if id == "" {
		id = uuid.New().String()
	}

	n := &Node{
		ID:    id,
		Title: title,
		Kind:  NodeKindStandard,
	}
	n.buildPins(codehost.Signature{})

	return n
}

// NewRerouteNode creates a reroute node: one input and one output data pin
// of the wildcard type, no execution pins.
func NewRerouteNode(id string) *Node {
	if id == "" {
		id = uuid.New().String()
	}

	return &Node{
		ID:    id,
		Title: "Reroute",
		Kind:  NodeKindReroute,
		Pins: []*Pin{
			NewPin(id, PinNameRerouteIn, PinDirectionInput, PinCategoryData, PinTypeAny),
			NewPin(id, PinNameRerouteOut, PinDirectionOutput, PinCategoryData, PinTypeAny),
		},
	}
}

// SetCode stores the code verbatim and regenerates pins from the parsed
// entry-function signature. On parse failure the code is still stored,
// FunctionName is cleared, and the existing pins are left unchanged (the
// node keeps its last good shape); the parse error is returned so callers
// can surface it. Reroute nodes store code but never regenerate pins.
func (n *Node) SetCode(code string) error {
	n.Code = code

	if n.Kind == NodeKindReroute {
		return nil
	}

	sig, err := codehost.ParseSignature(code)
	if err != nil {
		n.FunctionName = ""

		return err
	}

	n.FunctionName = sig.Name
	n.buildPins(sig)

	return nil
}

// UpdatePinsFromCode is the explicit re-derivation entry point; it
// re-parses the stored code and rebuilds pins with the same policy as
// SetCode.
func (n *Node) UpdatePinsFromCode() error {
	return n.SetCode(n.Code)
}

// buildPins derives the pin list from a signature: one input data pin per
// parameter in declaration order, output data pins from the return types
// (a single return is named "output", multiple are numbered output_1..N),
// plus the implicit execution pins.
func (n *Node) buildPins(sig codehost.Signature) {
	pins := make([]*Pin, 0, len(sig.Params)+len(sig.Returns)+2)

	pins = append(pins, NewPin(n.ID, PinNameExecIn, PinDirectionInput, PinCategoryExecution, PinTypeExec))

	for _, param := range sig.Params {
		pins = append(pins, NewPin(n.ID, param.Name, PinDirectionInput, PinCategoryData, param.Type))
	}

	pins = append(pins, NewPin(n.ID, PinNameExecOut, PinDirectionOutput, PinCategoryExecution, PinTypeExec))

	switch len(sig.Returns) {
	case 0:
	case 1:
		pins = append(pins, NewPin(n.ID, "output", PinDirectionOutput, PinCategoryData, sig.Returns[0]))
	default:
		for i, typeTag := range sig.Returns {
			name := "output_" + strconv.Itoa(i+1)
			pins = append(pins, NewPin(n.ID, name, PinDirectionOutput, PinCategoryData, typeTag))
		}
	}

	n.Pins = pins
}

// FindPin returns the pin with the given name, or nil.
func (n *Node) FindPin(name string) *Pin {
	for _, pin := range n.Pins {
		if pin.Name == name {
			return pin
		}
	}

	return nil
}

// InputPins returns all input pins in declaration order.
func (n *Node) InputPins() []*Pin {
	return n.pinsBy(PinDirectionInput, "")
}

// OutputPins returns all output pins in declaration order.
func (n *Node) OutputPins() []*Pin {
	return n.pinsBy(PinDirectionOutput, "")
}

// DataInputs returns the input pins carrying data.
func (n *Node) DataInputs() []*Pin {
	return n.pinsBy(PinDirectionInput, PinCategoryData)
}

// DataOutputs returns the output pins carrying data.
func (n *Node) DataOutputs() []*Pin {
	return n.pinsBy(PinDirectionOutput, PinCategoryData)
}

// ExecInput returns the inbound execution pin, or nil for reroutes.
func (n *Node) ExecInput() *Pin {
	pins := n.pinsBy(PinDirectionInput, PinCategoryExecution)
	if len(pins) == 0 {
		return nil
	}

	return pins[0]
}

// ExecOutput returns the outbound execution pin, or nil for reroutes.
func (n *Node) ExecOutput() *Pin {
	pins := n.pinsBy(PinDirectionOutput, PinCategoryExecution)
	if len(pins) == 0 {
		return nil
	}

	return pins[0]
}

func (n *Node) pinsBy(direction PinDirection, category PinCategory) []*Pin {
	pins := make([]*Pin, 0, len(n.Pins))

	for _, pin := range n.Pins {
		if pin.Direction != direction {
			continue
		}

		if category != "" && pin.Category != category {
			continue
		}

		pins = append(pins, pin)
	}

	return pins
}

// Serialize captures everything the persistence layer needs to rebuild the
// node: identity, layout, code, and colors.
func (n *Node) Serialize() NodeRecord {
	return NodeRecord{
		ID:               n.ID,
		Title:            n.Title,
		Kind:             n.Kind,
		PosX:             n.PosX,
		PosY:             n.PosY,
		Width:            n.Width,
		Height:           n.Height,
		Code:             n.Code,
		GUICode:          n.GUICode,
		GUIGetValuesCode: n.GUIGetValuesCode,
		ColorTitle:       n.ColorTitle,
		ColorBody:        n.ColorBody,
	}
}
