// Package graph owns the node and connection collections of a visual
// script and exposes the mutation operations on them. Every structural
// mutation goes through a Command so it is reversible; the command history
// lives with the graph.
package graph

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wireflow/wireflow/pkg/models"
)

// Graph holds ordered node and connection collections and the active
// command history. Ordering is insertion order; the executor relies on it
// for deterministic tie-breaking.
type Graph struct {
	ID   string
	Name string

	nodes       []*models.Node
	connections []*models.Connection
	nodesByID   map[string]*models.Node
	connsByID   map[string]*models.Connection

	history *History
	logger  *log.Entry
}

// New creates an empty graph with a fresh command history.
func New(name string) *Graph {
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		nodes:     make([]*models.Node, 0),
		nodesByID: make(map[string]*models.Node),
		connsByID: make(map[string]*models.Connection),
		history:   NewHistory(),
		logger:    log.WithFields(log.Fields{"module": "graph", "graph_name": name}),
	}
}

// History returns the graph's command history.
func (g *Graph) History() *History {
	return g.history
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*models.Node {
	return g.nodes
}

// Connections returns the connections in insertion order.
func (g *Graph) Connections() []*models.Connection {
	return g.connections
}

// NodeByID looks a node up by identifier.
func (g *Graph) NodeByID(id string) (*models.Node, bool) {
	n, ok := g.nodesByID[id]

	return n, ok
}

// ConnectionByID looks a connection up by identifier.
func (g *Graph) ConnectionByID(id string) (*models.Connection, bool) {
	c, ok := g.connsByID[id]

	return c, ok
}

// PinByID resolves a "{node_id}:{pin_name}" identifier to a live pin.
func (g *Graph) PinByID(pinID string) (*models.Pin, bool) {
	nodeID, pinName, ok := models.ParsePinID(pinID)
	if !ok {
		return nil, false
	}

	node, ok := g.nodesByID[nodeID]
	if !ok {
		return nil, false
	}

	pin := node.FindPin(pinName)
	if pin == nil {
		return nil, false
	}

	return pin, true
}

// CreateNode adds a standard node with the given title and code, wrapped
// in an undoable command. A code parse failure is not fatal: the node is
// created with the code stored and no entry function.
func (g *Graph) CreateNode(title, code string) (*models.Node, error) {
	cmd := newCreateNodeCommand(g, title, code, models.NodeKindStandard)
	if err := g.history.Execute(cmd); err != nil {
		return nil, err
	}

	return cmd.node, nil
}

// CreateRerouteNode adds a reroute node, wrapped in an undoable command.
func (g *Graph) CreateRerouteNode() (*models.Node, error) {
	cmd := newCreateNodeCommand(g, "Reroute", "", models.NodeKindReroute)
	if err := g.history.Execute(cmd); err != nil {
		return nil, err
	}

	return cmd.node, nil
}

// RemoveNode deletes a node and every connection incident to any of its
// pins, wrapped in an undoable command.
func (g *Graph) RemoveNode(nodeID string) error {
	return g.history.Execute(newDeleteNodeCommand(g, nodeID))
}

// CreateConnection links two pins, wrapped in an undoable command. This is
// the validation boundary: pairs failing CanConnectTo are rejected here.
// The pins may be given in either order; the stored connection always
// starts at the output pin.
func (g *Graph) CreateConnection(pinA, pinB string) (*models.Connection, error) {
	cmd := newCreateConnectionCommand(g, pinA, pinB)
	if err := g.history.Execute(cmd); err != nil {
		return nil, err
	}

	return cmd.conn, nil
}

// RemoveConnection deletes a connection, wrapped in an undoable command.
func (g *Graph) RemoveConnection(connID string) error {
	return g.history.Execute(newDeleteConnectionCommand(g, connID))
}

// MoveNode updates a node's layout position, wrapped in an undoable
// command.
func (g *Graph) MoveNode(nodeID string, x, y float64) error {
	return g.history.Execute(newMoveNodeCommand(g, nodeID, x, y))
}

// SetNodeTitle renames a node, wrapped in an undoable command.
func (g *Graph) SetNodeTitle(nodeID, title string) error {
	return g.history.Execute(newSetTitleCommand(g, nodeID, title))
}

// SetNodeCode replaces a node's code and regenerates its pins, wrapped in
// an undoable command. Pins whose name, type, and direction match a prior
// pin keep their connections; pins that disappear take their connections
// down with them.
func (g *Graph) SetNodeCode(nodeID, code string) error {
	return g.history.Execute(newSetCodeCommand(g, nodeID, code))
}

// Undo reverses the most recent command.
func (g *Graph) Undo() error {
	return g.history.Undo()
}

// Redo re-applies the most recently undone command.
func (g *Graph) Redo() error {
	return g.history.Redo()
}

// Clear tears down all nodes and connections and resets the history. A
// hard reset, not undoable.
func (g *Graph) Clear() {
	for _, c := range g.connections {
		c.Destroy()
	}

	g.nodes = g.nodes[:0]
	g.connections = g.connections[:0]
	g.nodesByID = make(map[string]*models.Node)
	g.connsByID = make(map[string]*models.Connection)
	g.history.Clear()

	g.logger.Info("Graph cleared")
}

// attachNode adds a node to the collections without command wrapping.
func (g *Graph) attachNode(n *models.Node) error {
	if _, exists := g.nodesByID[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}

	g.nodes = append(g.nodes, n)
	g.nodesByID[n.ID] = n

	return nil
}

// detachNode removes a node from the collections. Incident connections
// must already have been removed; callers own that ordering because
// connection removal needs the node's pins to still exist.
func (g *Graph) detachNode(nodeID string) error {
	if _, exists := g.nodesByID[nodeID]; !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	delete(g.nodesByID, nodeID)

	for i, n := range g.nodes {
		if n.ID == nodeID {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)

			break
		}
	}

	return nil
}

func (g *Graph) attachConnection(c *models.Connection) error {
	if _, exists := g.connsByID[c.ID]; exists {
		return fmt.Errorf("connection %s already present", c.ID)
	}

	g.connections = append(g.connections, c)
	g.connsByID[c.ID] = c

	return nil
}

func (g *Graph) detachConnection(connID string) (*models.Connection, error) {
	c, exists := g.connsByID[connID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, connID)
	}

	delete(g.connsByID, connID)

	for i, existing := range g.connections {
		if existing.ID == connID {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)

			break
		}
	}

	return c, nil
}

// incidentConnections returns every connection touching any pin of the
// node, in insertion order.
func (g *Graph) incidentConnections(n *models.Node) []*models.Connection {
	incident := make([]*models.Connection, 0)

	for _, c := range g.connections {
		if c.StartPin != nil && c.StartPin.NodeID == n.ID {
			incident = append(incident, c)

			continue
		}

		if c.EndPin != nil && c.EndPin.NodeID == n.ID {
			incident = append(incident, c)
		}
	}

	return incident
}

// connectionBetween finds an existing complete connection with the given
// endpoints, used to guarantee exactly-once restoration during undo.
func (g *Graph) connectionBetween(start, end *models.Pin) *models.Connection {
	for _, c := range g.connections {
		if c.StartPin == start && c.EndPin == end {
			return c
		}
	}

	return nil
}

// regenerateNodePins re-derives a node's pins from code and reconciles
// connections: matching pins (same name, type, and direction) adopt the
// old pin's connections and value, all others drop theirs through the
// graph so both endpoint lists stay consistent. Returns the records of the
// dropped connections so the caller can restore them on undo.
func (g *Graph) regenerateNodePins(n *models.Node, code string) ([]models.ConnectionRecord, error) {
	oldPins := n.Pins

	if err := n.SetCode(code); err != nil {
		// Parse failure keeps the last good pins; nothing dropped.
		g.logger.WithFields(log.Fields{"node_id": n.ID}).Warnf("Code parse failed, pins unchanged: %v", err)

		return nil, nil
	}

	dropped := make([]models.ConnectionRecord, 0)

	for _, oldPin := range oldPins {
		newPin := n.FindPin(oldPin.Name)

		if newPin != nil && newPin.Type == oldPin.Type && newPin.Direction == oldPin.Direction {
			newPin.Value = oldPin.Value

			for _, c := range oldPin.Connections {
				if c.StartPin == oldPin {
					c.StartPin = newPin
				}

				if c.EndPin == oldPin {
					c.EndPin = newPin
				}

				newPin.AddConnection(c)
			}

			continue
		}

		for _, c := range append([]*models.Connection(nil), oldPin.Connections...) {
			dropped = append(dropped, c.Serialize())

			if _, err := g.detachConnection(c.ID); err == nil {
				c.Destroy()
			}
		}
	}

	return dropped, nil
}

// restoreConnection rebuilds a connection from its serialized record. If
// an equivalent connection already exists it is returned unchanged, so
// repeated undo cleanup cannot duplicate entries in either pin's list.
func (g *Graph) restoreConnection(record models.ConnectionRecord) (*models.Connection, error) {
	start, ok := g.PinByID(record.StartPinID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, record.StartPinID)
	}

	end, ok := g.PinByID(record.EndPinID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, record.EndPinID)
	}

	if existing := g.connectionBetween(start, end); existing != nil {
		return existing, nil
	}

	c := models.NewConnection(start, end)
	if record.ID != "" {
		c.ID = record.ID
	}

	if err := g.attachConnection(c); err != nil {
		c.Destroy()

		return nil, err
	}

	return c, nil
}
