package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// workingText is the fallback log line for thought events without text.
const workingText = "处理中"

// Executor runs workflows and collects the generated output plus a
// human-readable execution log.
type Executor struct {
	client *client.Client
	log    *logx.Logger

	mu      sync.Mutex
	output  strings.Builder
	lines   []string
	running bool

	// OnLog receives each appended execution-log line
	OnLog func(line string)

	// OnToken receives each appended output increment
	OnToken func(delta string)
}

// NewExecutor creates a workflow executor bound to c.
func NewExecutor(c *client.Client) *Executor {
	return &Executor{
		client: c,
		log:    logx.WithField("component", "workflow"),
	}
}

// Output returns the generated output collected so far. A final_output in
// the completion event replaces any streamed tokens.
func (e *Executor) Output() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.output.String()
}

// Logs returns a copy of the execution-log lines.
func (e *Executor) Logs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// IsRunning reports whether an execution is in flight.
func (e *Executor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Executor) appendLog(line string) {
	e.mu.Lock()
	e.lines = append(e.lines, line)
	e.mu.Unlock()
	if e.OnLog != nil {
		e.OnLog(line)
	}
}

func (e *Executor) appendOutput(text string) {
	if text == "" {
		return
	}
	e.mu.Lock()
	e.output.WriteString(text)
	e.mu.Unlock()
	if e.OnToken != nil {
		e.OnToken(text)
	}
}

func (e *Executor) setOutput(text string) {
	e.mu.Lock()
	e.output.Reset()
	e.output.WriteString(text)
	e.mu.Unlock()
	if e.OnToken != nil {
		e.OnToken(text)
	}
}

type executePayload struct {
	Input string `json:"input"`
}

// Execute runs the workflow with the given test input, streaming log
// events into the execution log and token events into the output.
// Workflows run longer than chats, so the idle allowance is wider.
func (e *Executor) Execute(ctx context.Context, id, input string) error {
	if strings.TrimSpace(input) == "" {
		return errorRegistry.New(ErrInputRequired)
	}
	if e.IsRunning() {
		return errorRegistry.New(ErrRunInProgress)
	}

	e.mu.Lock()
	e.output.Reset()
	e.lines = nil
	e.running = true
	e.mu.Unlock()

	err := stream.Run(ctx, e.client, stream.Options{
		Path:        "/workflows/" + id + "/execute",
		Body:        executePayload{Input: input},
		IdleTimeout: stream.WorkflowIdleTimeout,
		OnEvent:     e.applyEvent,
		OnDone: func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		},
	})

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	if err != nil {
		e.log.WithError(err).WithField("workflow", id).Warn("workflow execution failed")
	}
	return err
}

// applyEvent folds one stream event into the output and the log.
func (e *Executor) applyEvent(ev sse.Event) {
	switch ev.Type {
	case sse.EventToken:
		e.appendOutput(ev.Token().Content)

	case sse.EventWorkflowStart:
		e.appendLog("开始工作流: " + ev.Workflow().WorkflowName)

	case sse.EventNodeStart:
		e.appendLog("执行节点: " + ev.Workflow().NodeType)

	case sse.EventNodeComplete:
		e.appendLog("节点完成: " + ev.Workflow().NodeID)

	case sse.EventThought:
		data := ev.Thought()
		switch {
		case data.Message != "":
			e.appendLog(data.Message)
		case data.Status != "":
			e.appendLog(data.Status)
		default:
			e.appendLog(workingText)
		}

	case sse.EventWorkflowComplete:
		e.appendLog("工作流执行完成")
		data := ev.Workflow()
		if data.FinalOutput != nil {
			e.setOutput(fmt.Sprint(data.FinalOutput))
		}

	case sse.EventWorkflowError, sse.EventNodeError:
		reason := ev.Workflow().Error
		if reason == "" {
			reason = stream.UnknownErrorText
		}
		e.appendLog("错误: " + reason)

	case sse.EventDone:
		status := ev.Done().Status
		if status == "" {
			status = "complete"
		}
		e.appendLog("状态: " + status)
	}
}
