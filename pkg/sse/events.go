package sse

import "encoding/json"

// Event types framed by the AgentFlow streaming endpoints.
const (
	// EventMessage is the default type for frames without an event: field
	EventMessage = "message"

	// EventThought carries transient backend progress status
	EventThought = "thought"

	// EventToken carries one increment of generated text
	EventToken = "token"

	// EventCitation carries retrieval sources grounding the answer
	EventCitation = "citation"

	// EventDone marks successful stream completion
	EventDone = "done"

	// EventError reports a backend failure mid-stream
	EventError = "error"
)

// Workflow-execution log event types, emitted alongside the common set.
const (
	EventWorkflowStart    = "workflow_start"
	EventWorkflowComplete = "workflow_complete"
	EventWorkflowError    = "workflow_error"
	EventNodeStart        = "node_start"
	EventNodeComplete     = "node_complete"
	EventNodeError        = "node_error"
)

// TokenData is the payload of a token event.
type TokenData struct {
	Content string `json:"content"`
}

// ThoughtData is the payload of a thought event. Type selects the
// specialized sub-case; the remaining fields are populated per sub-case.
type ThoughtData struct {
	Type         string `json:"type"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	WorkflowName string `json:"workflow_name"`
	NodeType     string `json:"node_type"`
	NodeID       string `json:"node_id"`
	Expression   string `json:"expression"`
	Branch       string `json:"branch"`
	ResultsCount int    `json:"results_count"`
	Error        string `json:"error"`
}

// Source is one retrieval source inside a citation event.
type Source struct {
	DocID      string  `json:"doc_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// CitationData is the payload of a citation event. Either Sources or the
// legacy Content form is populated.
type CitationData struct {
	Sources []Source `json:"sources"`
	Content string   `json:"content"`
}

// DoneData is the payload of a done event.
type DoneData struct {
	Status string `json:"status"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Content string `json:"content"`
	Message string `json:"message"`
}

// WorkflowData is the payload of the workflow_* and node_* log events.
type WorkflowData struct {
	WorkflowName string `json:"workflow_name"`
	NodeType     string `json:"node_type"`
	NodeID       string `json:"node_id"`
	FinalOutput  any    `json:"final_output"`
	Error        string `json:"error"`
	Status       string `json:"status"`
}

// Token decodes the event payload as token data. Unknown fields are
// ignored; missing fields stay zero.
func (e Event) Token() TokenData {
	var d TokenData
	json.Unmarshal(e.Raw, &d)
	return d
}

// Thought decodes the event payload as thought data.
func (e Event) Thought() ThoughtData {
	var d ThoughtData
	json.Unmarshal(e.Raw, &d)
	return d
}

// Citation decodes the event payload as citation data.
func (e Event) Citation() CitationData {
	var d CitationData
	json.Unmarshal(e.Raw, &d)
	return d
}

// Done decodes the event payload as done data.
func (e Event) Done() DoneData {
	var d DoneData
	json.Unmarshal(e.Raw, &d)
	return d
}

// Error decodes the event payload as error data.
func (e Event) Error() ErrorData {
	var d ErrorData
	json.Unmarshal(e.Raw, &d)
	return d
}

// Workflow decodes the event payload as workflow log data.
func (e Event) Workflow() WorkflowData {
	var d WorkflowData
	json.Unmarshal(e.Raw, &d)
	return d
}
