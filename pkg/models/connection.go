package models

import "github.com/google/uuid"

// Colors assigned to connections based on the start pin's data type. The
// core stores these opaquely for the host UI; unknown types fall back to
// the wildcard color.
var pinTypeColors = map[string]string{
	"int":       "#2a9d8f",
	"float":     "#8ab17d",
	"str":       "#e9c46a",
	"bool":      "#f4a261",
	"list":      "#e76f51",
	"dict":      "#b5838d",
	PinTypeAny:  "#9a8c98",
	PinTypeExec: "#ffffff",
}

// ColorForType returns the display color associated with a pin type tag.
func ColorForType(typeTag string) string {
	if color, ok := pinTypeColors[typeTag]; ok {
		return color
	}

	return pinTypeColors[PinTypeAny]
}

// Connection is a directed edge between two pins. StartPin owns the value
// flowing out; EndPin consumes it. EndPin may be nil while the user is
// dragging a new wire ("temporary" state); such a connection is not part
// of meaningful data flow until completed.
type Connection struct {
	ID       string
	StartPin *Pin
	EndPin   *Pin
	Color    string // Derived from the start pin's type at creation time
}

// NewConnection creates a connection from a start pin to a nullable end
// pin. When both endpoints are present the connection registers itself
// with both pins' connection lists.
func NewConnection(start, end *Pin) *Connection {
	c := &Connection{
		ID:       uuid.New().String(),
		StartPin: start,
		EndPin:   end,
		Color:    ColorForType(start.Type),
	}

	if end != nil {
		start.AddConnection(c)
		end.AddConnection(c)
	}

	return c
}

// SetEndPin completes a temporary connection and registers it with both
// endpoint pins.
func (c *Connection) SetEndPin(end *Pin) {
	c.EndPin = end
	if end == nil {
		return
	}

	c.StartPin.AddConnection(c)
	end.AddConnection(c)
}

// IsComplete reports whether both endpoints are set.
func (c *Connection) IsComplete() bool {
	return c.StartPin != nil && c.EndPin != nil
}

// IsData reports whether the connection carries data (as opposed to
// execution flow). Temporary connections are not data flow.
func (c *Connection) IsData() bool {
	return c.IsComplete() &&
		c.StartPin.Category == PinCategoryData &&
		c.EndPin.Category == PinCategoryData
}

// IsExecution reports whether the connection carries control flow.
func (c *Connection) IsExecution() bool {
	return c.IsComplete() &&
		c.StartPin.Category == PinCategoryExecution &&
		c.EndPin.Category == PinCategoryExecution
}

// Destroy deregisters the connection from both pins. Safe to call more
// than once; pin removal tolerates missing membership.
func (c *Connection) Destroy() {
	if c.StartPin != nil {
		c.StartPin.RemoveConnection(c)
	}

	if c.EndPin != nil {
		c.EndPin.RemoveConnection(c)
	}
}

// Serialize yields the four identifiers needed to reconstruct the edge.
// Incomplete connections serialize with an empty end pin and end node.
func (c *Connection) Serialize() ConnectionRecord {
	record := ConnectionRecord{
		ID:          c.ID,
		StartPinID:  c.StartPin.ID,
		StartNodeID: c.StartPin.NodeID,
	}

	if c.EndPin != nil {
		record.EndPinID = c.EndPin.ID
		record.EndNodeID = c.EndPin.NodeID
	}

	return record
}
