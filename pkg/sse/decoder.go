// Package sse implements an incremental Server-Sent-Events decoder for the
// AgentFlow streaming endpoints. The decoder is chunk-safe: lines and whole
// event frames may be split at arbitrary byte offsets across Parse calls and
// the emitted event sequence is identical to single-shot parsing.
package sse

import (
	"encoding/json"
	"strings"
)

// DoneSentinel is the literal data value that terminates a stream.
const DoneSentinel = "[DONE]"

// Event is one decoded SSE frame. Raw holds the JSON payload exactly as
// framed on the wire; Data is its generic decoding.
type Event struct {
	Type string
	Raw  json.RawMessage
	Data map[string]any
}

// Callbacks receive decoder output. All callbacks are optional and are
// invoked synchronously, in wire order, from inside Parse.
type Callbacks struct {
	// OnEvent fires once per complete frame with a valid JSON payload.
	OnEvent func(ev Event)

	// OnComment fires for each comment line, with the text after the colon.
	OnComment func(comment string)

	// OnDone fires when the [DONE] sentinel is seen.
	OnDone func()

	// OnError fires when a frame's payload is not valid JSON. The frame is
	// dropped and decoding continues with clean state.
	OnError func(err error)
}

// Decoder accumulates partial lines and event fields across chunks. One
// decoder serves exactly one stream; it must not be shared between
// concurrent reads.
type Decoder struct {
	line      []byte
	eventType string
	data      []byte
	sawCR     bool
}

// NewDecoder creates a decoder with empty state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset clears the buffered line, pending event type and accumulated data.
func (d *Decoder) Reset() {
	d.line = d.line[:0]
	d.eventType = ""
	d.data = d.data[:0]
	d.sawCR = false
}

// Parse consumes one chunk of stream text. A line is terminated by "\n",
// "\r\n" or a lone "\r"; the three styles may be mixed within one stream,
// and a "\r\n" pair may itself be split across chunks.
func (d *Decoder) Parse(chunk string, cb Callbacks) {
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]

		if d.sawCR {
			d.sawCR = false
			if c == '\n' {
				continue
			}
		}

		switch c {
		case '\r':
			d.sawCR = true
			d.endLine(cb)
		case '\n':
			d.endLine(cb)
		default:
			d.line = append(d.line, c)
		}
	}
}

func (d *Decoder) endLine(cb Callbacks) {
	line := string(d.line)
	d.line = d.line[:0]
	d.processLine(line, cb)
}

func (d *Decoder) processLine(line string, cb Callbacks) {
	trimmed := strings.TrimSpace(line)

	// Blank line is the frame boundary.
	if trimmed == "" {
		d.emit(cb)
		return
	}

	if strings.HasPrefix(trimmed, ":") {
		if cb.OnComment != nil {
			cb.OnComment(trimmed[1:])
		}
		return
	}

	if rest, ok := strings.CutPrefix(trimmed, "event:"); ok {
		d.eventType = strings.TrimSpace(rest)
		return
	}

	if rest, ok := strings.CutPrefix(trimmed, "data:"); ok {
		content := strings.TrimSpace(rest)
		if content == DoneSentinel {
			if cb.OnDone != nil {
				cb.OnDone()
			}
			d.emit(cb)
			return
		}
		if len(d.data) > 0 {
			d.data = append(d.data, '\n')
		}
		d.data = append(d.data, content...)
		return
	}

	// Unknown fields (id:, retry:, ...) are ignored.
}

// emit flushes the accumulated frame. Frames without data lines are dropped
// silently; frames with malformed JSON are reported and dropped. Either way
// the accumulators end up empty.
func (d *Decoder) emit(cb Callbacks) {
	if len(d.data) == 0 {
		d.eventType = ""
		return
	}

	raw := make([]byte, len(d.data))
	copy(raw, d.data)

	eventType := d.eventType
	if eventType == "" {
		eventType = EventMessage
	}

	d.eventType = ""
	d.data = d.data[:0]

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}

	if cb.OnEvent != nil {
		cb.OnEvent(Event{Type: eventType, Raw: raw, Data: payload})
	}
}
