package sse_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/agentflow-ai/agentflow-go/pkg/sse"
)

type recorded struct {
	Type string
	Data map[string]any
}

type recorder struct {
	events   []recorded
	comments []string
	done     int
	errors   []error
}

func (r *recorder) callbacks() sse.Callbacks {
	return sse.Callbacks{
		OnEvent: func(ev sse.Event) {
			r.events = append(r.events, recorded{Type: ev.Type, Data: ev.Data})
		},
		OnComment: func(c string) { r.comments = append(r.comments, c) },
		OnDone:    func() { r.done++ },
		OnError:   func(err error) { r.errors = append(r.errors, err) },
	}
}

func decodeAll(t *testing.T, chunks ...string) *recorder {
	t.Helper()
	rec := &recorder{}
	dec := sse.NewDecoder()
	for _, chunk := range chunks {
		dec.Parse(chunk, rec.callbacks())
	}
	return rec
}

func TestSingleEvent(t *testing.T) {
	rec := decodeAll(t, "event: token\ndata: {\"content\": \"Hello\"}\n\n")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if rec.events[0].Type != sse.EventToken {
		t.Errorf("expected token type, got %s", rec.events[0].Type)
	}
	if rec.events[0].Data["content"] != "Hello" {
		t.Errorf("unexpected payload: %v", rec.events[0].Data)
	}
}

func TestDefaultMessageType(t *testing.T) {
	rec := decodeAll(t, "data: {\"content\": \"hi\"}\n\n")

	if len(rec.events) != 1 || rec.events[0].Type != sse.EventMessage {
		t.Fatalf("frames without event field must default to message, got %+v", rec.events)
	}
}

// Splitting the input at every possible offset must produce the identical
// event sequence as a single Parse call.
func TestChunkBoundaryInvariance(t *testing.T) {
	input := "event: token\ndata: {\"content\": \"Hello\"}\n\nevent: citation\ndata: {\"sources\": [{\"doc_id\": \"d1\"}]}\n\nevent: done\ndata: {\"status\": \"success\"}\n\n"
	want := decodeAll(t, input)

	for i := 0; i <= len(input); i++ {
		got := decodeAll(t, input[:i], input[i:])
		if !reflect.DeepEqual(got.events, want.events) {
			t.Fatalf("split at %d diverged:\n got %+v\nwant %+v", i, got.events, want.events)
		}
		if got.done != want.done {
			t.Fatalf("split at %d: done fired %d times, want %d", i, got.done, want.done)
		}
	}
}

func TestLineEndingInvariance(t *testing.T) {
	base := "event: token\ndata: {\"content\": \"A\"}\n\nevent: done\ndata: {\"status\": \"ok\"}\n\n"
	want := decodeAll(t, base)

	for name, input := range map[string]string{
		"crlf": strings.ReplaceAll(base, "\n", "\r\n"),
		"cr":   strings.ReplaceAll(base, "\n", "\r"),
	} {
		got := decodeAll(t, input)
		if !reflect.DeepEqual(got.events, want.events) {
			t.Errorf("%s: got %+v, want %+v", name, got.events, want.events)
		}
	}
}

// A \r\n terminator split across two chunks is still one line ending.
func TestCRLFSplitAcrossChunks(t *testing.T) {
	input := strings.ReplaceAll("event: token\ndata: {\"content\": \"A\"}\n\n", "\n", "\r\n")
	want := decodeAll(t, input)

	for i := 0; i <= len(input); i++ {
		got := decodeAll(t, input[:i], input[i:])
		if !reflect.DeepEqual(got.events, want.events) {
			t.Fatalf("crlf split at %d: got %+v, want %+v", i, got.events, want.events)
		}
	}
}

func TestResetProducesFreshDecoder(t *testing.T) {
	input := "event: token\ndata: {\"content\": \"X\"}\n\n"

	dec := sse.NewDecoder()
	dirty := &recorder{}
	dec.Parse("event: thought\ndata: {\"status\": \"part", dirty.callbacks())
	dec.Reset()

	after := &recorder{}
	dec.Parse(input, after.callbacks())

	fresh := decodeAll(t, input)
	if !reflect.DeepEqual(after.events, fresh.events) {
		t.Fatalf("reset decoder diverged: got %+v, want %+v", after.events, fresh.events)
	}
}

func TestMalformedJSONIsolated(t *testing.T) {
	rec := decodeAll(t,
		"event: token\ndata: {\"content\": \"ok1\"}\n\n"+
			"event: token\ndata: {not json at all\n\n"+
			"event: token\ndata: {\"content\": \"ok2\"}\n\n")

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 valid events, got %d", len(rec.events))
	}
	if rec.events[0].Data["content"] != "ok1" || rec.events[1].Data["content"] != "ok2" {
		t.Fatalf("wrong events survived: %+v", rec.events)
	}
	if len(rec.errors) != 1 {
		t.Fatalf("expected exactly 1 error callback, got %d", len(rec.errors))
	}
}

func TestDoneSentinel(t *testing.T) {
	rec := decodeAll(t, "data: [DONE]\n\n")

	if rec.done != 1 {
		t.Fatalf("expected done callback once, got %d", rec.done)
	}
	if len(rec.events) != 0 {
		t.Fatalf("sentinel must not emit events, got %+v", rec.events)
	}
	if len(rec.errors) != 0 {
		t.Fatalf("sentinel must not be JSON-parsed, got errors %v", rec.errors)
	}
}

func TestDoneSentinelFlushesPendingFrame(t *testing.T) {
	rec := decodeAll(t, "event: token\ndata: {\"content\": \"tail\"}\ndata: [DONE]\n\n")

	if rec.done != 1 {
		t.Fatalf("expected done callback, got %d", rec.done)
	}
	if len(rec.events) != 1 || rec.events[0].Data["content"] != "tail" {
		t.Fatalf("accumulated frame should flush on sentinel, got %+v", rec.events)
	}
}

func TestCommentLines(t *testing.T) {
	rec := decodeAll(t, ": keepalive\nevent: token\ndata: {\"content\": \"x\"}\n\n")

	if len(rec.comments) != 1 || rec.comments[0] != " keepalive" {
		t.Fatalf("unexpected comments: %q", rec.comments)
	}
	if len(rec.events) != 1 {
		t.Fatalf("comment must not disturb the frame, got %+v", rec.events)
	}
}

func TestEventWithoutDataDropped(t *testing.T) {
	rec := decodeAll(t, "event: thought\n\nevent: token\ndata: {\"content\": \"y\"}\n\n")

	if len(rec.events) != 1 || rec.events[0].Type != sse.EventToken {
		t.Fatalf("data-less frame must be dropped silently, got %+v", rec.events)
	}
	if len(rec.errors) != 0 {
		t.Fatalf("data-less frame is not an error, got %v", rec.errors)
	}
}

func TestMultiLineDataJoinedWithNewline(t *testing.T) {
	rec := decodeAll(t, "event: token\ndata: {\"content\":\ndata: \"joined\"}\n\n")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d (errors %v)", len(rec.events), rec.errors)
	}
	if rec.events[0].Data["content"] != "joined" {
		t.Fatalf("multi-line payload not reassembled: %+v", rec.events[0].Data)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	rec := decodeAll(t, "id: 42\nretry: 1000\nevent: token\ndata: {\"content\": \"z\"}\n\n")

	if len(rec.events) != 1 || rec.events[0].Data["content"] != "z" {
		t.Fatalf("unknown fields must be ignored, got %+v", rec.events)
	}
}

func TestEventTypeOverwrite(t *testing.T) {
	rec := decodeAll(t, "event: thought\nevent: token\ndata: {\"content\": \"w\"}\n\n")

	if len(rec.events) != 1 || rec.events[0].Type != sse.EventToken {
		t.Fatalf("later event field must win, got %+v", rec.events)
	}
}

func TestManyTokensOrdered(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&input, "event: token\ndata: {\"content\": \"t%d\"}\n\n", i)
	}

	// Feed in ragged 7-byte chunks.
	rec := &recorder{}
	dec := sse.NewDecoder()
	s := input.String()
	for len(s) > 0 {
		n := 7
		if n > len(s) {
			n = len(s)
		}
		dec.Parse(s[:n], rec.callbacks())
		s = s[n:]
	}

	if len(rec.events) != 50 {
		t.Fatalf("expected 50 events, got %d", len(rec.events))
	}
	for i, ev := range rec.events {
		if ev.Data["content"] != fmt.Sprintf("t%d", i) {
			t.Fatalf("event %d out of order: %v", i, ev.Data)
		}
	}
}
