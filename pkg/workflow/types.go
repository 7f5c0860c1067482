package workflow

import "time"

// Node types supported by the workflow engine.
const (
	NodeStart     = "start"
	NodeLLM       = "llm"
	NodeKnowledge = "knowledge"
	NodeCondition = "condition"
	NodeSkill     = "skill"
	NodeHTTP      = "http"
	NodeCode      = "code"
	NodeEnd       = "end"
)

// Position places a node on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one step of a workflow graph. Data holds the per-type
// configuration (prompt, expression, knowledge base, ...).
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Label    string         `json:"label,omitempty"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// Edge connects two nodes. Condition nodes use SourceHandle to mark the
// true/false branch.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is the serialized node/edge structure of a workflow.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Workflow is a stored workflow definition.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Graph       Graph     `json:"graph_data"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}
