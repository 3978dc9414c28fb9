// Package models defines the core data model for node-based visual scripts:
// pins, connections between pins, and the nodes that own them.
package models

// PinDirection represents the direction of data flow for a pin.
type PinDirection string

const (
	PinDirectionInput  PinDirection = "input"
	PinDirectionOutput PinDirection = "output"
)

// PinCategory distinguishes value-carrying pins from control-flow pins.
type PinCategory string

const (
	PinCategoryData      PinCategory = "data"
	PinCategoryExecution PinCategory = "execution"
)

// PinTypeAny is the wildcard type tag used by reroute pins and untyped
// parameters. It is connectable to any data pin.
const PinTypeAny = "any"

// PinTypeExec is the type tag carried by execution pins.
const PinTypeExec = "exec"

// Pin is a typed endpoint on a node. Pins are owned by their node; the
// NodeID field is a back-reference, not ownership.
type Pin struct {
	ID          string        `json:"id"` // Globally unique: "{nodeID}:{pinName}"
	NodeID      string        `json:"node_id"`
	Name        string        `json:"name"`
	Direction   PinDirection  `json:"direction"`
	Category    PinCategory   `json:"category"`
	Type        string        `json:"type"`
	Value       any           `json:"-"` // Last value written or read, opaque to the core
	Connections []*Connection `json:"-"`
}

// NewPin creates a pin owned by the given node.
func NewPin(nodeID, name string, direction PinDirection, category PinCategory, typeTag string) *Pin {
	return &Pin{
		ID:          MakePinID(nodeID, name),
		NodeID:      nodeID,
		Name:        name,
		Direction:   direction,
		Category:    category,
		Type:        typeTag,
		Connections: make([]*Connection, 0),
	}
}

// AddConnection registers a connection with this pin. Adding a connection
// that is already registered is a no-op, so undo paths that re-register
// cannot duplicate entries.
func (p *Pin) AddConnection(c *Connection) {
	for _, existing := range p.Connections {
		if existing == c {
			return
		}
	}

	p.Connections = append(p.Connections, c)
}

// RemoveConnection deregisters a connection. Removing a connection that is
// not registered is a no-op; redundant cleanup during undo must not error.
func (p *Pin) RemoveConnection(c *Connection) {
	for i, existing := range p.Connections {
		if existing == c {
			p.Connections = append(p.Connections[:i], p.Connections[i+1:]...)

			return
		}
	}
}

// CanConnectTo reports whether a connection from this pin to other is
// meaningful: directions must be opposite, and either both pins carry data
// of the same type (the "any" wildcard matches everything) or both are
// execution pins. Type compatibility is advisory for the data model; the
// graph mutation layer is the enforcing boundary.
func (p *Pin) CanConnectTo(other *Pin) bool {
	if other == nil || p.Direction == other.Direction {
		return false
	}

	if p.Category == PinCategoryExecution && other.Category == PinCategoryExecution {
		return true
	}

	if p.Category != PinCategoryData || other.Category != PinCategoryData {
		return false
	}

	return p.Type == other.Type || p.Type == PinTypeAny || other.Type == PinTypeAny
}

// ParsePinID parses a pin ID in format "{node_id}:{pin_name}" into components.
func ParsePinID(pinID string) (string, string, bool) {
	for i := range len(pinID) {
		if pinID[i] == ':' {
			return pinID[:i], pinID[i+1:], true
		}
	}

	return "", "", false
}

// MakePinID creates a pin ID from node ID and pin name.
func MakePinID(nodeID, pinName string) string {
	return nodeID + ":" + pinName
}
