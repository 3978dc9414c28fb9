package graph

import (
	"fmt"

	"github.com/wireflow/wireflow/pkg/models"
)

// Command is one reversible graph mutation. A command captures enough
// state at execute time to fully reconstruct what it removed when undone;
// payloads are plain identifiers and data, never live UI objects.
type Command interface {
	// Name labels the command for the host UI's undo menu.
	Name() string
	Execute() error
	Undo() error
}

// commandState guards the created -> executed <-> undone state machine
// shared by every command.
type commandState struct {
	applied bool
}

func (s *commandState) markExecute() error {
	if s.applied {
		return ErrAlreadyExecuted
	}

	s.applied = true

	return nil
}

func (s *commandState) markUndo() error {
	if !s.applied {
		return ErrNotExecuted
	}

	s.applied = false

	return nil
}

// createNodeCommand adds a node. The node identity is fixed at command
// construction so redo restores the same identifier.
type createNodeCommand struct {
	commandState

	g    *Graph
	node *models.Node
}

func newCreateNodeCommand(g *Graph, title, code string, kind models.NodeKind) *createNodeCommand {
	var node *models.Node

	if kind == models.NodeKindReroute {
		node = models.NewRerouteNode("")
	} else {
		node = models.NewNode("", title)
		// Parse failure still stores the code; the node starts shapeless.
		_ = node.SetCode(code)
	}

	return &createNodeCommand{g: g, node: node}
}

func (c *createNodeCommand) Name() string {
	return fmt.Sprintf("Create Node %q", c.node.Title)
}

func (c *createNodeCommand) Execute() error {
	if err := c.g.attachNode(c.node); err != nil {
		return err
	}

	return c.markExecute()
}

func (c *createNodeCommand) Undo() error {
	if !c.applied {
		return ErrNotExecuted
	}

	// Stack discipline means no connections remain at this point, but
	// tolerate them: remove incident edges before the node.
	for _, conn := range c.g.incidentConnections(c.node) {
		if _, err := c.g.detachConnection(conn.ID); err == nil {
			conn.Destroy()
		}
	}

	if err := c.g.detachNode(c.node.ID); err != nil {
		return err
	}

	return c.markUndo()
}

// deleteNodeCommand removes a node and every incident connection. The
// snapshot keeps the node record (including its concrete subtype), the
// per-pin values, and the endpoint identifiers of every removed
// connection, so undo restores an equivalent node and each connection
// exactly once.
type deleteNodeCommand struct {
	commandState

	g      *Graph
	nodeID string

	record    models.NodeRecord
	pinValues map[string]any
	conns     []models.ConnectionRecord
}

func newDeleteNodeCommand(g *Graph, nodeID string) *deleteNodeCommand {
	return &deleteNodeCommand{g: g, nodeID: nodeID}
}

func (c *deleteNodeCommand) Name() string {
	return fmt.Sprintf("Delete Node %s", c.nodeID)
}

func (c *deleteNodeCommand) Execute() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	c.record = node.Serialize()

	c.pinValues = make(map[string]any)
	for _, pin := range node.Pins {
		if pin.Value != nil {
			c.pinValues[pin.Name] = pin.Value
		}
	}

	// Connections first: their removal depends on the node's pins still
	// existing.
	incident := c.g.incidentConnections(node)
	c.conns = make([]models.ConnectionRecord, 0, len(incident))

	for _, conn := range incident {
		c.conns = append(c.conns, conn.Serialize())

		if _, err := c.g.detachConnection(conn.ID); err != nil {
			return err
		}

		conn.Destroy()
	}

	if err := c.g.detachNode(c.nodeID); err != nil {
		return err
	}

	return c.markExecute()
}

func (c *deleteNodeCommand) Undo() error {
	if !c.applied {
		return ErrNotExecuted
	}

	node := nodeFromRecord(c.record)

	for name, value := range c.pinValues {
		if pin := node.FindPin(name); pin != nil {
			pin.Value = value
		}
	}

	if err := c.g.attachNode(node); err != nil {
		return err
	}

	for _, record := range c.conns {
		if _, err := c.g.restoreConnection(record); err != nil {
			return fmt.Errorf("restoring connection %s: %w", record.ID, err)
		}
	}

	return c.markUndo()
}

// nodeFromRecord reconstructs a node preserving its concrete subtype.
func nodeFromRecord(record models.NodeRecord) *models.Node {
	var node *models.Node

	if record.Kind == models.NodeKindReroute {
		node = models.NewRerouteNode(record.ID)
		node.Title = record.Title
		node.Code = record.Code
	} else {
		node = models.NewNode(record.ID, record.Title)
		_ = node.SetCode(record.Code)
	}

	node.PosX = record.PosX
	node.PosY = record.PosY
	node.Width = record.Width
	node.Height = record.Height
	node.GUICode = record.GUICode
	node.GUIGetValuesCode = record.GUIGetValuesCode
	node.ColorTitle = record.ColorTitle
	node.ColorBody = record.ColorBody

	return node
}

// createConnectionCommand links two pins. Orientation is normalized so the
// stored connection starts at the output pin; the connection identifier is
// fixed after the first execute so redo restores the same edge.
type createConnectionCommand struct {
	commandState

	g          *Graph
	startPinID string
	endPinID   string
	connID     string
	conn       *models.Connection
}

func newCreateConnectionCommand(g *Graph, pinA, pinB string) *createConnectionCommand {
	return &createConnectionCommand{g: g, startPinID: pinA, endPinID: pinB}
}

func (c *createConnectionCommand) Name() string {
	return fmt.Sprintf("Connect %s -> %s", c.startPinID, c.endPinID)
}

func (c *createConnectionCommand) Execute() error {
	start, ok := c.g.PinByID(c.startPinID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPinNotFound, c.startPinID)
	}

	end, ok := c.g.PinByID(c.endPinID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPinNotFound, c.endPinID)
	}

	if start.Direction == models.PinDirectionInput {
		start, end = end, start
	}

	if !start.CanConnectTo(end) {
		return fmt.Errorf("%w: %s -> %s", ErrIncompatiblePins, start.ID, end.ID)
	}

	conn := models.NewConnection(start, end)
	if c.connID != "" {
		conn.ID = c.connID
	}

	if err := c.g.attachConnection(conn); err != nil {
		conn.Destroy()

		return err
	}

	c.conn = conn
	c.connID = conn.ID
	c.startPinID = start.ID
	c.endPinID = end.ID

	return c.markExecute()
}

func (c *createConnectionCommand) Undo() error {
	if !c.applied {
		return ErrNotExecuted
	}

	conn, err := c.g.detachConnection(c.connID)
	if err != nil {
		return err
	}

	conn.Destroy()
	c.conn = nil

	return c.markUndo()
}

// deleteConnectionCommand removes a connection, capturing its endpoint
// identifiers for restoration.
type deleteConnectionCommand struct {
	commandState

	g      *Graph
	connID string
	record models.ConnectionRecord
}

func newDeleteConnectionCommand(g *Graph, connID string) *deleteConnectionCommand {
	return &deleteConnectionCommand{g: g, connID: connID}
}

func (c *deleteConnectionCommand) Name() string {
	return fmt.Sprintf("Delete Connection %s", c.connID)
}

func (c *deleteConnectionCommand) Execute() error {
	conn, ok := c.g.ConnectionByID(c.connID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, c.connID)
	}

	c.record = conn.Serialize()

	if _, err := c.g.detachConnection(c.connID); err != nil {
		return err
	}

	conn.Destroy()

	return c.markExecute()
}

func (c *deleteConnectionCommand) Undo() error {
	if !c.applied {
		return ErrNotExecuted
	}

	if _, err := c.g.restoreConnection(c.record); err != nil {
		return err
	}

	return c.markUndo()
}

// moveNodeCommand updates layout position. The core stores positions
// opaquely; moving is still undoable because the host UI expects it in the
// history.
type moveNodeCommand struct {
	commandState

	g      *Graph
	nodeID string
	toX    float64
	toY    float64
	fromX  float64
	fromY  float64
}

func newMoveNodeCommand(g *Graph, nodeID string, x, y float64) *moveNodeCommand {
	return &moveNodeCommand{g: g, nodeID: nodeID, toX: x, toY: y}
}

func (c *moveNodeCommand) Name() string {
	return fmt.Sprintf("Move Node %s", c.nodeID)
}

func (c *moveNodeCommand) Execute() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	c.fromX, c.fromY = node.PosX, node.PosY
	node.PosX, node.PosY = c.toX, c.toY

	return c.markExecute()
}

func (c *moveNodeCommand) Undo() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	if err := c.markUndo(); err != nil {
		return err
	}

	node.PosX, node.PosY = c.fromX, c.fromY

	return nil
}

// setTitleCommand renames a node.
type setTitleCommand struct {
	commandState

	g        *Graph
	nodeID   string
	newTitle string
	oldTitle string
}

func newSetTitleCommand(g *Graph, nodeID, title string) *setTitleCommand {
	return &setTitleCommand{g: g, nodeID: nodeID, newTitle: title}
}

func (c *setTitleCommand) Name() string {
	return fmt.Sprintf("Rename Node %s", c.nodeID)
}

func (c *setTitleCommand) Execute() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	c.oldTitle = node.Title
	node.Title = c.newTitle

	return c.markExecute()
}

func (c *setTitleCommand) Undo() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	if err := c.markUndo(); err != nil {
		return err
	}

	node.Title = c.oldTitle

	return nil
}

// setCodeCommand replaces a node's code, regenerating pins. Connections
// dropped by the regeneration are captured so undo restores them after
// reverting the code.
type setCodeCommand struct {
	commandState

	g       *Graph
	nodeID  string
	newCode string
	oldCode string
	dropped []models.ConnectionRecord
}

func newSetCodeCommand(g *Graph, nodeID, code string) *setCodeCommand {
	return &setCodeCommand{g: g, nodeID: nodeID, newCode: code}
}

func (c *setCodeCommand) Name() string {
	return fmt.Sprintf("Edit Code of %s", c.nodeID)
}

func (c *setCodeCommand) Execute() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	c.oldCode = node.Code

	dropped, err := c.g.regenerateNodePins(node, c.newCode)
	if err != nil {
		return err
	}

	c.dropped = dropped

	return c.markExecute()
}

func (c *setCodeCommand) Undo() error {
	node, ok := c.g.NodeByID(c.nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, c.nodeID)
	}

	if err := c.markUndo(); err != nil {
		return err
	}

	if _, err := c.g.regenerateNodePins(node, c.oldCode); err != nil {
		return err
	}

	for _, record := range c.dropped {
		if _, err := c.g.restoreConnection(record); err != nil {
			return fmt.Errorf("restoring connection %s: %w", record.ID, err)
		}
	}

	return nil
}
