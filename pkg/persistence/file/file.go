// Package file stores graphs as JSON documents, one per graph, under a
// root directory. Documents are checked against the graph schema before
// decoding so a malformed file is rejected with a useful message instead
// of a half-built graph.
package file

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wireflow/wireflow/pkg/models"
)

type FilePersistence struct {
	root string
}

func NewFilePersistence(root string) *FilePersistence {
	return &FilePersistence{
		root: root,
	}
}

func (fp *FilePersistence) graphsDir() string {
	return path.Join(fp.root, "graphs")
}

func (fp *FilePersistence) Graphs() ([]*models.GraphRecord, error) {
	root := os.DirFS(fp.graphsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, err
	}

	graphs := make([]*models.GraphRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := fp.GraphByID(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		graphs = append(graphs, record)
	}

	return graphs, nil
}

func (fp *FilePersistence) GraphByID(graphID string) (*models.GraphRecord, error) {
	filePath := path.Join(fp.graphsDir(), graphID+".json")

	body, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	if err := validateDocument(body); err != nil {
		return nil, fmt.Errorf("graph file %s: %w", filePath, err)
	}

	var record models.GraphRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (fp *FilePersistence) SaveGraph(record *models.GraphRecord) error {
	if record.ID == "" {
		return fmt.Errorf("graph record has no ID")
	}

	if err := os.MkdirAll(fp.graphsDir(), 0o755); err != nil {
		return err
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path.Join(fp.graphsDir(), record.ID+".json"), body, 0o644)
}

func (fp *FilePersistence) DeleteGraph(graphID string) error {
	return os.Remove(path.Join(fp.graphsDir(), graphID+".json"))
}

// graphSchema is the document shape of a persisted graph: node records
// carry identity, layout, code, and colors; connection records carry the
// four endpoint identifiers.
const graphSchema = `{
  "type": "object",
  "required": ["schema_version", "nodes", "connections"],
  "properties": {
    "schema_version": {"type": "string"},
    "id": {"type": "string"},
    "name": {"type": "string"},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "kind"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "kind": {"type": "string", "enum": ["standard", "reroute"]},
          "pos_x": {"type": "number"},
          "pos_y": {"type": "number"},
          "width": {"type": "number"},
          "height": {"type": "number"},
          "code": {"type": "string"},
          "gui_code": {"type": "string"},
          "gui_get_values_code": {"type": "string"},
          "color_title": {"type": "string"},
          "color_body": {"type": "string"}
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["start_pin_id", "end_pin_id", "start_node_id", "end_node_id"],
        "properties": {
          "id": {"type": "string"},
          "start_pin_id": {"type": "string", "minLength": 1},
          "end_pin_id": {"type": "string", "minLength": 1},
          "start_node_id": {"type": "string", "minLength": 1},
          "end_node_id": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

func validateDocument(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(graphSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Errorf("schema validation failed: %s", strings.Join(messages, "; "))
}
