// Package persistence defines the port through which graphs are saved and
// loaded. The core hands the serialized GraphRecord shape across this
// boundary and never sees file formats.
package persistence

import "github.com/wireflow/wireflow/pkg/models"

type Persistence interface {
	Graphs() ([]*models.GraphRecord, error)
	GraphByID(graphID string) (*models.GraphRecord, error)
	SaveGraph(record *models.GraphRecord) error
	DeleteGraph(graphID string) error
}
