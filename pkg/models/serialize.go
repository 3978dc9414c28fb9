package models

// SchemaVersion is the graph-file schema version this package reads and
// writes.
const SchemaVersion = "1.0.0"

// NodeRecord is the serialized shape of a node: identity, layout, code,
// and colors. Layout and colors are presentation state the core stores but
// never interprets.
type NodeRecord struct {
	ID               string   `json:"id"                           validate:"required"`
	Title            string   `json:"title"`
	Kind             NodeKind `json:"kind"                         validate:"required,oneof=standard reroute"`
	PosX             float64  `json:"pos_x"`
	PosY             float64  `json:"pos_y"`
	Width            float64  `json:"width"`
	Height           float64  `json:"height"`
	Code             string   `json:"code"`
	GUICode          string   `json:"gui_code,omitempty"`
	GUIGetValuesCode string   `json:"gui_get_values_code,omitempty"`
	ColorTitle       string   `json:"color_title,omitempty"`
	ColorBody        string   `json:"color_body,omitempty"`
}

// ConnectionRecord is the serialized shape of an edge: the four
// identifiers needed to reconstruct it, no positional or visual data.
type ConnectionRecord struct {
	ID          string `json:"id"`
	StartPinID  string `json:"start_pin_id"  validate:"required"`
	EndPinID    string `json:"end_pin_id"    validate:"required"`
	StartNodeID string `json:"start_node_id" validate:"required"`
	EndNodeID   string `json:"end_node_id"   validate:"required"`
}

// GraphRecord is the serialized shape of a whole graph. The dive tags make
// validation descend into every element; without them the per-record
// required tags would never run.
type GraphRecord struct {
	SchemaVersion string             `json:"schema_version" validate:"required"`
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Nodes         []NodeRecord       `json:"nodes"          validate:"dive"`
	Connections   []ConnectionRecord `json:"connections"    validate:"dive"`
}
