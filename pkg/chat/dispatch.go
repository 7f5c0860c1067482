package chat

import (
	"fmt"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// retrievalThoughtTTL is how long the "retrieval complete" status lingers
// before clearing itself, absent a later update.
const retrievalThoughtTTL = 2 * time.Second

// Localized status lines rendered for thought events.
var nodeTypeLabels = map[string]string{
	"start":     "开始",
	"llm":       "大语言模型",
	"knowledge": "知识库",
	"condition": "条件",
	"end":       "结束",
}

// EventContext carries the per-run hooks the dispatcher updates besides the
// message itself.
type EventContext struct {
	// Thought receives transient progress status
	Thought *stream.Thought

	// Scroll fires after every token append so a UI can follow the tail
	Scroll func()

	// SetStreaming toggles the run-level streaming flag on terminal events
	SetStreaming func(bool)
}

// ApplyEvent applies one decoded stream event to the current assistant
// message. It is a no-op for a nil message or a non-assistant message, and
// never panics regardless of payload shape.
func ApplyEvent(ev sse.Event, msg *Message, ctx EventContext) {
	if msg == nil || msg.Role != RoleAssistant {
		return
	}

	switch ev.Type {
	case sse.EventThought:
		applyThought(ev.Thought(), ctx)

	case sse.EventToken:
		msg.Content += ev.Token().Content
		if ctx.Scroll != nil {
			ctx.Scroll()
		}

	case sse.EventCitation:
		applyCitation(ev.Citation(), msg)

	case sse.EventDone:
		finishRun(msg, ctx)

	case sse.EventError:
		data := ev.Error()
		msg.Content += stream.ErrorMarker(stream.ErrorText(data.Content, data.Message))
		finishRun(msg, ctx)
	}
}

func finishRun(msg *Message, ctx EventContext) {
	msg.IsStreaming = false
	if ctx.SetStreaming != nil {
		ctx.SetStreaming(false)
	}
	if ctx.Thought != nil {
		ctx.Thought.Clear()
	}
}

// applyThought renders the status line for each thought sub-case. The
// generic branch reads message then status only; the payload's content
// field is intentionally not consulted.
func applyThought(data sse.ThoughtData, ctx EventContext) {
	if ctx.Thought == nil {
		return
	}

	switch data.Type {
	case "workflow":
		if data.Status == "start" {
			ctx.Thought.Set("开始执行工作流: " + data.WorkflowName)
		}

	case "node":
		switch data.Status {
		case "start":
			label := nodeTypeLabels[data.NodeType]
			if label == "" {
				label = data.NodeType
			}
			ctx.Thought.Set("执行节点: " + label)
		case "complete":
			ctx.Thought.Set("节点完成: " + data.NodeID)
		}

	case "condition":
		ctx.Thought.Set(fmt.Sprintf("条件判断: %s → %s", data.Expression, data.Branch))

	case "retrieval":
		applyRetrievalThought(data, ctx)

	default:
		switch {
		case data.Message != "":
			ctx.Thought.Set(data.Message)
		case data.Status != "":
			ctx.Thought.Set(data.Status)
		default:
			ctx.Thought.Set("")
		}
	}
}

func applyRetrievalThought(data sse.ThoughtData, ctx EventContext) {
	switch data.Status {
	case "start":
		ctx.Thought.Set("正在检索知识库...")
	case "searching":
		ctx.Thought.Set("正在搜索相关文档...")
	case "complete":
		status := fmt.Sprintf("检索完成，找到 %d 个相关片段", data.ResultsCount)
		ctx.Thought.SetTransient(status, retrievalThoughtTTL)
	case "error":
		reason := data.Error
		if reason == "" {
			reason = stream.UnknownErrorText
		}
		ctx.Thought.Set("检索出错: " + reason)
	}
}

// applyCitation replaces the message's citation list wholesale; the latest
// citation event wins. A bare content payload becomes a single synthetic
// citation; an empty sources list is a no-op.
func applyCitation(data sse.CitationData, msg *Message) {
	if data.Sources != nil {
		if len(data.Sources) == 0 {
			return
		}
		citations := make([]CitationSource, len(data.Sources))
		for i, s := range data.Sources {
			citations[i] = CitationSource{
				DocID:      s.DocID,
				ChunkIndex: s.ChunkIndex,
				Score:      s.Score,
				Text:       s.Text,
			}
		}
		msg.Citations = citations
		return
	}
	if data.Content != "" {
		msg.Citations = []CitationSource{{Text: data.Content}}
	}
}
