package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// sseServer streams the given frames, optionally pausing between them.
func sseServer(t *testing.T, frames []string, pause time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer must support flushing")
		}
		for _, frame := range frames {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(pause):
			}
			w.Write([]byte(frame))
			flusher.Flush()
		}
	}))
}

func TestRunEndToEnd(t *testing.T) {
	srv := sseServer(t, []string{
		"event: token\ndata: {\"content\": \"Hello\"}\n\n",
		"event: token\ndata: {\"content\": \" World\"}\n\n",
		"event: done\ndata: {\"status\": \"success\"}\n\n",
	}, 0)
	defer srv.Close()

	var out strings.Builder
	var last string
	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path: "/chat/completions",
		Body: map[string]string{"message": "hi"},
		OnEvent: func(ev sse.Event) {
			last = ev.Type
			if ev.Type == sse.EventToken {
				out.WriteString(ev.Token().Content)
			}
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "Hello World" {
		t.Fatalf("expected concatenated tokens, got %q", out.String())
	}
	if last != sse.EventDone {
		t.Fatalf("expected done event last, got %s", last)
	}
}

func TestRunDoneSentinel(t *testing.T) {
	srv := sseServer(t, []string{
		"event: token\ndata: {\"content\": \"x\"}\n\n",
		"data: [DONE]\n\n",
	}, 0)
	defer srv.Close()

	doneFired := 0
	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path:   "/skills/summarize/run",
		OnDone: func() { doneFired++ },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doneFired != 1 {
		t.Fatalf("expected done callback once, got %d", doneFired)
	}
}

func TestCancellationIsSilent(t *testing.T) {
	srv := sseServer(t, []string{
		"event: token\ndata: {\"content\": \"partial\"}\n\n",
		"event: token\ndata: {\"content\": \"never\"}\n\n",
	}, 200*time.Millisecond)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var out string

	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	err := stream.Run(ctx, client.New(srv.URL), stream.Options{
		Path: "/chat/completions",
		OnEvent: func(ev sse.Event) {
			mu.Lock()
			out += ev.Token().Content
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("abort must terminate silently, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Contains(out, "[错误:") {
		t.Fatalf("abort must not append an error marker, got %q", out)
	}
}

func TestIdleWatchdogAborts(t *testing.T) {
	srv := sseServer(t, []string{
		"event: token\ndata: {\"content\": \"a\"}\n\n",
		"event: token\ndata: {\"content\": \"never sent in time\"}\n\n",
	}, 5*time.Second)
	defer srv.Close()

	start := time.Now()
	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path:        "/workflows/wf1/execute",
		IdleTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("watchdog abort must be silent, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("watchdog did not abort the stalled stream")
	}
}

func TestCommentsRearmWatchdog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// Keepalive comments arrive faster than the idle window; the one
		// real event lands only after several windows have elapsed.
		for i := 0; i < 6; i++ {
			w.Write([]byte(": keepalive\n"))
			flusher.Flush()
			time.Sleep(60 * time.Millisecond)
		}
		w.Write([]byte("event: token\ndata: {\"content\": \"late\"}\n\n"))
		flusher.Flush()
	}))
	defer srv.Close()

	var out string
	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path:        "/chat/completions",
		IdleTimeout: 150 * time.Millisecond,
		OnEvent:     func(ev sse.Event) { out += ev.Token().Content },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "late" {
		t.Fatalf("keepalive comments must keep the stream alive, got %q", out)
	}
}

func TestDecodeErrorsDoNotAbort(t *testing.T) {
	srv := sseServer(t, []string{
		"event: token\ndata: {broken\n\n",
		"event: token\ndata: {\"content\": \"ok\"}\n\n",
	}, 0)
	defer srv.Close()

	var out string
	var decodeErrs int
	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path:          "/chat/completions",
		OnEvent:       func(ev sse.Event) { out += ev.Token().Content },
		OnDecodeError: func(error) { decodeErrs++ },
	})
	if err != nil {
		t.Fatalf("framing errors must not abort, got %v", err)
	}
	if decodeErrs != 1 || out != "ok" {
		t.Fatalf("expected 1 framing error and the valid event, got %d / %q", decodeErrs, out)
	}
}

func TestNonOKStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "workflow has no start node"}`))
	}))
	defer srv.Close()

	err := stream.Run(context.Background(), client.New(srv.URL), stream.Options{
		Path: "/workflows/bad/execute",
	})
	if err == nil || !strings.Contains(err.Error(), "workflow has no start node") {
		t.Fatalf("expected detail error, got %v", err)
	}
}
