package chat_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/chat"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

func event(t *testing.T, typ, payload string) sse.Event {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("bad test payload %q: %v", payload, err)
	}
	return sse.Event{Type: typ, Raw: json.RawMessage(payload), Data: data}
}

func assistant() *chat.Message {
	return &chat.Message{Role: chat.RoleAssistant, IsStreaming: true}
}

func TestTokenAppendsAndScrolls(t *testing.T) {
	msg := assistant()
	scrolled := 0
	ctx := chat.EventContext{Scroll: func() { scrolled++ }}

	chat.ApplyEvent(event(t, sse.EventToken, `{"content": "Hello"}`), msg, ctx)
	chat.ApplyEvent(event(t, sse.EventToken, `{"content": " World"}`), msg, ctx)

	if msg.Content != "Hello World" {
		t.Fatalf("expected concatenation, got %q", msg.Content)
	}
	if scrolled != 2 {
		t.Fatalf("scroll hook should fire per token, got %d", scrolled)
	}
}

func TestTokenMissingContent(t *testing.T) {
	msg := assistant()
	chat.ApplyEvent(event(t, sse.EventToken, `{}`), msg, chat.EventContext{})
	if msg.Content != "" {
		t.Fatalf("absent content appends nothing, got %q", msg.Content)
	}
}

func TestGuardNilAndUserMessages(t *testing.T) {
	// Must not panic on nil target.
	chat.ApplyEvent(event(t, sse.EventToken, `{"content": "x"}`), nil, chat.EventContext{})

	user := &chat.Message{Role: chat.RoleUser, Content: "question"}
	chat.ApplyEvent(event(t, sse.EventToken, `{"content": "x"}`), user, chat.EventContext{})
	if user.Content != "question" {
		t.Fatalf("user messages must never be mutated, got %q", user.Content)
	}
}

func TestCitationStructuredMapping(t *testing.T) {
	msg := assistant()
	chat.ApplyEvent(event(t, sse.EventCitation,
		`{"sources": [{"doc_id": "d1", "chunk_index": 2, "score": 0.9, "text": "snippet"}, {"doc_id": "d2"}]}`),
		msg, chat.EventContext{})

	if len(msg.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(msg.Citations))
	}
	first := msg.Citations[0]
	if first.DocID != "d1" || first.ChunkIndex != 2 || first.Score != 0.9 || first.Text != "snippet" {
		t.Fatalf("field mapping wrong: %+v", first)
	}
	second := msg.Citations[1]
	if second.DocID != "d2" || second.ChunkIndex != 0 || second.Score != 0 {
		t.Fatalf("missing numeric fields must default to zero: %+v", second)
	}
}

func TestCitationLastWriteWins(t *testing.T) {
	msg := assistant()
	ctx := chat.EventContext{}
	chat.ApplyEvent(event(t, sse.EventCitation, `{"sources": [{"doc_id": "old"}]}`), msg, ctx)
	chat.ApplyEvent(event(t, sse.EventCitation, `{"sources": [{"doc_id": "new1"}, {"doc_id": "new2"}]}`), msg, ctx)

	if len(msg.Citations) != 2 || msg.Citations[0].DocID != "new1" {
		t.Fatalf("later citation event must replace wholesale: %+v", msg.Citations)
	}
}

func TestCitationContentFallback(t *testing.T) {
	msg := assistant()
	chat.ApplyEvent(event(t, sse.EventCitation, `{"content": "see manual"}`), msg, chat.EventContext{})

	if len(msg.Citations) != 1 {
		t.Fatalf("expected synthetic citation, got %+v", msg.Citations)
	}
	c := msg.Citations[0]
	if c.DocID != "" || c.Score != 0 || c.Text != "see manual" {
		t.Fatalf("synthetic citation wrong: %+v", c)
	}
}

func TestCitationEmptySourcesNoOp(t *testing.T) {
	msg := assistant()
	chat.ApplyEvent(event(t, sse.EventCitation, `{"sources": [{"doc_id": "keep"}]}`), msg, chat.EventContext{})
	chat.ApplyEvent(event(t, sse.EventCitation, `{"sources": []}`), msg, chat.EventContext{})

	if len(msg.Citations) != 1 || msg.Citations[0].DocID != "keep" {
		t.Fatalf("empty sources must not clear citations: %+v", msg.Citations)
	}
}

func TestDoneTerminates(t *testing.T) {
	msg := assistant()
	streaming := true
	th := stream.NewThought(nil)
	th.Set("busy")

	chat.ApplyEvent(event(t, sse.EventDone, `{"status": "success"}`), msg, chat.EventContext{
		Thought:      th,
		SetStreaming: func(v bool) { streaming = v },
	})

	if msg.IsStreaming || streaming {
		t.Fatal("done must settle streaming flags")
	}
	if th.Get() != "" {
		t.Fatal("done must clear the thought")
	}
}

func TestErrorAppendsMarkerAndTerminates(t *testing.T) {
	msg := assistant()
	msg.Content = "partial"

	chat.ApplyEvent(event(t, sse.EventError, `{"content": "模型超时"}`), msg, chat.EventContext{})
	if msg.Content != "partial\n[错误: 模型超时]" {
		t.Fatalf("unexpected content %q", msg.Content)
	}
	if msg.IsStreaming {
		t.Fatal("error must settle the message")
	}
}

func TestErrorFallbackChain(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`{"content": "c", "message": "m"}`, "\n[错误: c]"},
		{`{"message": "m"}`, "\n[错误: m]"},
		{`{}`, "\n[错误: 未知错误]"},
	}
	for _, tc := range cases {
		msg := assistant()
		chat.ApplyEvent(event(t, sse.EventError, tc.payload), msg, chat.EventContext{})
		if msg.Content != tc.want {
			t.Errorf("payload %s: got %q, want %q", tc.payload, msg.Content, tc.want)
		}
	}
}

// Regression guard: the generic thought branch must never read the payload
// content field. With neither message nor status present the thought
// becomes empty.
func TestThoughtGenericIgnoresContent(t *testing.T) {
	th := stream.NewThought(nil)
	th.Set("previous")

	chat.ApplyEvent(event(t, sse.EventThought, `{"content": "should-be-ignored"}`),
		assistant(), chat.EventContext{Thought: th})

	if got := th.Get(); got != "" {
		t.Fatalf("generic thought must ignore content, got %q", got)
	}
}

func TestThoughtGenericFieldPriority(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`{"message": "msg wins", "status": "status"}`, "msg wins"},
		{`{"status": "status used"}`, "status used"},
		{`{}`, ""},
	}
	for _, tc := range cases {
		th := stream.NewThought(nil)
		th.Set("stale")
		chat.ApplyEvent(event(t, sse.EventThought, tc.payload), assistant(), chat.EventContext{Thought: th})
		if got := th.Get(); got != tc.want {
			t.Errorf("payload %s: got %q, want %q", tc.payload, got, tc.want)
		}
	}
}

func TestThoughtWorkflowStart(t *testing.T) {
	th := stream.NewThought(nil)
	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "workflow", "status": "start", "workflow_name": "客服流程"}`),
		assistant(), chat.EventContext{Thought: th})

	if th.Get() != "开始执行工作流: 客服流程" {
		t.Fatalf("unexpected thought %q", th.Get())
	}

	// Non-start workflow statuses leave the thought untouched.
	chat.ApplyEvent(event(t, sse.EventThought, `{"type": "workflow", "status": "complete"}`),
		assistant(), chat.EventContext{Thought: th})
	if th.Get() != "开始执行工作流: 客服流程" {
		t.Fatalf("workflow complete must not change thought, got %q", th.Get())
	}
}

func TestThoughtNodeCases(t *testing.T) {
	th := stream.NewThought(nil)
	ctx := chat.EventContext{Thought: th}

	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "node", "status": "start", "node_type": "llm"}`), assistant(), ctx)
	if th.Get() != "执行节点: 大语言模型" {
		t.Fatalf("known node type must be localized, got %q", th.Get())
	}

	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "node", "status": "start", "node_type": "custom_thing"}`), assistant(), ctx)
	if th.Get() != "执行节点: custom_thing" {
		t.Fatalf("unknown node type falls back to raw value, got %q", th.Get())
	}

	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "node", "status": "complete", "node_id": "node-7"}`), assistant(), ctx)
	if th.Get() != "节点完成: node-7" {
		t.Fatalf("unexpected thought %q", th.Get())
	}
}

func TestThoughtCondition(t *testing.T) {
	th := stream.NewThought(nil)
	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "condition", "expression": "score > 0.5", "branch": "yes"}`),
		assistant(), chat.EventContext{Thought: th})

	if th.Get() != "条件判断: score > 0.5 → yes" {
		t.Fatalf("unexpected thought %q", th.Get())
	}
}

func TestThoughtRetrievalStates(t *testing.T) {
	th := stream.NewThought(nil)
	ctx := chat.EventContext{Thought: th}

	chat.ApplyEvent(event(t, sse.EventThought, `{"type": "retrieval", "status": "start"}`), assistant(), ctx)
	if th.Get() != "正在检索知识库..." {
		t.Fatalf("unexpected thought %q", th.Get())
	}

	chat.ApplyEvent(event(t, sse.EventThought, `{"type": "retrieval", "status": "searching"}`), assistant(), ctx)
	if th.Get() != "正在搜索相关文档..." {
		t.Fatalf("unexpected thought %q", th.Get())
	}

	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "retrieval", "status": "error", "error": "index offline"}`), assistant(), ctx)
	if th.Get() != "检索出错: index offline" {
		t.Fatalf("unexpected thought %q", th.Get())
	}
}

func TestThoughtRetrievalCompleteAutoClears(t *testing.T) {
	th := stream.NewThought(nil)
	chat.ApplyEvent(event(t, sse.EventThought,
		`{"type": "retrieval", "status": "complete", "results_count": 4}`),
		assistant(), chat.EventContext{Thought: th})

	if th.Get() != "检索完成，找到 4 个相关片段" {
		t.Fatalf("unexpected thought %q", th.Get())
	}

	// The status is superseded before the timer fires and must survive.
	th.Set("执行节点: 结束")
	time.Sleep(2200 * time.Millisecond)
	if th.Get() != "执行节点: 结束" {
		t.Fatalf("auto-clear must not clobber a later status, got %q", th.Get())
	}
}

func TestEventsAfterTerminalDoNotPanic(t *testing.T) {
	msg := assistant()
	ctx := chat.EventContext{Thought: stream.NewThought(nil)}

	chat.ApplyEvent(event(t, sse.EventDone, `{"status": "success"}`), msg, ctx)
	chat.ApplyEvent(event(t, sse.EventToken, `{"content": "late"}`), msg, ctx)
	chat.ApplyEvent(event(t, sse.EventDone, `{"status": "success"}`), msg, ctx)

	if msg.IsStreaming {
		t.Fatal("message must stay settled")
	}
	if msg.Content != "late" {
		t.Fatalf("tokens after done still append, got %q", msg.Content)
	}
}
