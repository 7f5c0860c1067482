package sandbox

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// tokenStreamer produces the text tokens of a streamed reply. The
// scripted implementation fabricates them; the OpenAI one relays a model.
type tokenStreamer interface {
	StreamTokens(ctx context.Context, system, prompt string, emit func(string) error) error
}

// scriptedStreamer fabricates a deterministic reply from the prompt.
type scriptedStreamer struct{}

func (scriptedStreamer) StreamTokens(_ context.Context, _, prompt string, emit func(string) error) error {
	reply := fmt.Sprintf("收到：%s。这是沙盒环境生成的回复，用于本地调试流式消费。", strings.TrimSpace(prompt))
	for _, token := range splitTokens(reply, 6) {
		if err := emit(token); err != nil {
			return err
		}
	}
	return nil
}

// splitTokens slices text into rune groups so even short replies stream
// as multiple token events.
func splitTokens(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// sseWriter frames SSE events onto a buffered body stream.
type sseWriter struct {
	w *bufio.Writer
}

func (sw sseWriter) event(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", eventType, data); err != nil {
		return err
	}
	return sw.w.Flush()
}

func (sw sseWriter) doneSentinel() {
	fmt.Fprint(sw.w, "data: [DONE]\n\n")
	sw.w.Flush()
}

func setSSEHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("Connection", "keep-alive")
}

type chatStreamRequest struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	WorkflowID string `json:"workflow_id"`
	KBID       string `json:"kb_id"`
}

func (s *Server) handleChatStream(c *fiber.Ctx) error {
	var req chatStreamRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid chat payload")
	}
	if req.SessionID != "" {
		s.state.mu.Lock()
		s.state.sessions[req.SessionID] = true
		s.state.mu.Unlock()
	}

	var sources []fiber.Map
	if req.KBID != "" {
		for _, d := range s.state.kbDocuments(req.KBID) {
			sources = append(sources, fiber.Map{
				"doc_id":      d.ID,
				"chunk_index": 0,
				"score":       0.9,
				"text":        snippet(d.content),
			})
		}
	}

	relay := s.relay
	log := s.log
	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sw := sseWriter{w: w}

		if len(sources) > 0 {
			sw.event("thought", fiber.Map{"type": "retrieval", "status": "start"})
			sw.event("thought", fiber.Map{
				"type": "retrieval", "status": "complete", "results_count": len(sources),
			})
			sw.event("citation", fiber.Map{"sources": sources})
		} else {
			sw.event("thought", fiber.Map{"message": "正在思考..."})
		}

		err := relay.StreamTokens(context.Background(), "", req.Message, func(token string) error {
			return sw.event("token", fiber.Map{"content": token})
		})
		if err != nil {
			log.WithError(err).Warn("chat relay failed")
			sw.event("error", fiber.Map{"message": err.Error()})
			sw.doneSentinel()
			return
		}

		sw.event("done", fiber.Map{"status": "success"})
		sw.doneSentinel()
	}))
	return nil
}

type skillRunRequest struct {
	Inputs map[string]string `json:"inputs"`
}

func (s *Server) handleSkillRun(c *fiber.Ctx) error {
	name := c.Params("name")
	s.state.mu.RLock()
	sk := s.state.skills[name]
	s.state.mu.RUnlock()
	if sk == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "skill not found")
	}

	var req skillRunRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid run payload")
	}

	prompt := sk.Prompt
	for k, v := range req.Inputs {
		prompt = strings.ReplaceAll(prompt, "{{"+k+"}}", v)
	}

	relay := s.relay
	log := s.log
	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sw := sseWriter{w: w}
		sw.event("thought", fiber.Map{"message": "正在执行技能: " + name})

		err := relay.StreamTokens(context.Background(), sk.Prompt, prompt, func(token string) error {
			return sw.event("token", fiber.Map{"content": token})
		})
		if err != nil {
			log.WithError(err).Warn("skill relay failed")
			sw.event("error", fiber.Map{"message": err.Error()})
			sw.doneSentinel()
			return
		}

		sw.event("done", fiber.Map{"status": "success"})
		sw.doneSentinel()
	}))
	return nil
}

type workflowExecuteRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleWorkflowExecute(c *fiber.Ctx) error {
	s.state.mu.RLock()
	wf := s.state.workflows[c.Params("id")]
	s.state.mu.RUnlock()
	if wf == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "workflow not found")
	}

	var req workflowExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid execute payload")
	}

	nodes := workflowNodes(wf)
	relay := s.relay
	log := s.log
	setSSEHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sw := sseWriter{w: w}
		sw.event("workflow_start", fiber.Map{"workflow_name": wf.Name})

		var output strings.Builder
		for _, node := range nodes {
			sw.event("node_start", fiber.Map{"node_id": node.id, "node_type": node.typ})

			if node.typ == "llm" {
				err := relay.StreamTokens(context.Background(), "", req.Input, func(token string) error {
					output.WriteString(token)
					return sw.event("token", fiber.Map{"content": token})
				})
				if err != nil {
					log.WithError(err).Warn("workflow relay failed")
					sw.event("node_error", fiber.Map{"node_id": node.id, "error": err.Error()})
					sw.event("done", fiber.Map{"status": "failed"})
					sw.doneSentinel()
					return
				}
			} else {
				// Non-LLM nodes complete instantly in the sandbox.
				time.Sleep(10 * time.Millisecond)
			}

			sw.event("node_complete", fiber.Map{"node_id": node.id, "node_type": node.typ})
		}

		sw.event("workflow_complete", fiber.Map{"final_output": output.String()})
		sw.event("done", fiber.Map{"status": "success"})
		sw.doneSentinel()
	}))
	return nil
}

type graphNode struct {
	id  string
	typ string
}

// workflowNodes extracts an executable node order from the stored graph.
// The sandbox ignores edges and runs nodes in stored order.
func workflowNodes(wf *storedWorkflow) []graphNode {
	var raw []any
	switch v := wf.Graph["nodes"].(type) {
	case []any:
		raw = v
	case []map[string]any:
		for _, m := range v {
			raw = append(raw, m)
		}
	}
	nodes := make([]graphNode, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		typ, _ := m["type"].(string)
		nodes = append(nodes, graphNode{id: id, typ: typ})
	}
	if len(nodes) == 0 {
		nodes = []graphNode{{id: "1", typ: "start"}, {id: "2", typ: "llm"}, {id: "3", typ: "end"}}
	}
	return nodes
}
