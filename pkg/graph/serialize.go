package graph

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wireflow/wireflow/pkg/models"
)

// Serialize captures the whole graph in the persistence shape. Only
// complete connections are persisted; a transient drag wire is UI state.
func (g *Graph) Serialize() *models.GraphRecord {
	record := &models.GraphRecord{
		SchemaVersion: models.SchemaVersion,
		ID:            g.ID,
		Name:          g.Name,
		Nodes:         make([]models.NodeRecord, 0, len(g.nodes)),
		Connections:   make([]models.ConnectionRecord, 0, len(g.connections)),
	}

	for _, n := range g.nodes {
		record.Nodes = append(record.Nodes, n.Serialize())
	}

	for _, c := range g.connections {
		if c.IsComplete() {
			record.Connections = append(record.Connections, c.Serialize())
		}
	}

	return record
}

// Load rebuilds a graph from a persisted record. Records are validated
// before anything is built; a connection referencing a missing node or pin
// fails the load with the graph left unbuilt. Loading is not undoable: the
// history starts empty.
func Load(record *models.GraphRecord) (*Graph, error) {
	validate := validator.New()
	if err := validate.Struct(record); err != nil {
		return nil, fmt.Errorf("invalid graph record: %w", err)
	}

	if record.SchemaVersion != models.SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %q, expected %q", record.SchemaVersion, models.SchemaVersion)
	}

	g := New(record.Name)
	if record.ID != "" {
		g.ID = record.ID
	}

	for _, nodeRecord := range record.Nodes {
		node := nodeFromRecord(nodeRecord)
		if err := g.attachNode(node); err != nil {
			return nil, err
		}
	}

	for _, connRecord := range record.Connections {
		if _, err := g.restoreConnection(connRecord); err != nil {
			return nil, fmt.Errorf("connection %s: %w", connRecord.ID, err)
		}
	}

	return g, nil
}
