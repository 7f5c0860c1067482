// Package stream runs the SSE consumption loop shared by the chat, skill
// and workflow surfaces: it opens a streamed POST through the base client,
// feeds the response body to the decoder chunk by chunk, and dispatches
// each decoded event to the caller, under an idle-timeout watchdog.
//
// Cancellation — whether from the caller's context or the watchdog — is a
// silent termination, not an error. Only genuine transport failures are
// surfaced.
package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
)

// Idle-timeout defaults observed by the platform clients.
const (
	// DefaultIdleTimeout bounds chat and skill runs
	DefaultIdleTimeout = 180 * time.Second

	// WorkflowIdleTimeout bounds workflow execution, which may sit in
	// long-running nodes between events
	WorkflowIdleTimeout = 300 * time.Second
)

// readBufferSize is the chunk size fed to the decoder.
const readBufferSize = 4096

// Options configures one streaming run.
type Options struct {
	// Path is the API path to POST to
	Path string

	// Body is the JSON request payload
	Body any

	// IdleTimeout aborts the stream when no event or comment arrives
	// within the window. Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration

	// OnEvent receives every decoded event in wire order
	OnEvent func(ev sse.Event)

	// OnDone fires when the [DONE] sentinel arrives
	OnDone func()

	// OnDecodeError receives framing errors (malformed JSON payloads).
	// Framing errors never abort the stream; when nil they are logged.
	OnDecodeError func(err error)
}

// Run executes one streaming request to completion. It returns nil on
// natural EOF and on cancellation (caller abort or watchdog); transport
// failures are returned as errx errors.
func Run(ctx context.Context, c *client.Client, opts Options) error {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logx.WithField("path", opts.Path)

	// The watchdog fires the same abort path as an explicit cancel. Any
	// sign of liveness from the server rearms it.
	watchdog := time.AfterFunc(idle, func() {
		log.Warnf("stream idle for %s, aborting", idle)
		cancel()
	})
	defer watchdog.Stop()

	resp, err := c.OpenStream(ctx, opts.Path, opts.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	dec := sse.NewDecoder()
	cb := sse.Callbacks{
		OnEvent: func(ev sse.Event) {
			watchdog.Reset(idle)
			if opts.OnEvent != nil {
				opts.OnEvent(ev)
			}
		},
		OnComment: func(string) {
			watchdog.Reset(idle)
		},
		OnDone: func() {
			if opts.OnDone != nil {
				opts.OnDone()
			}
		},
		OnError: func(err error) {
			if opts.OnDecodeError != nil {
				opts.OnDecodeError(err)
				return
			}
			log.WithError(err).Warn("dropping malformed stream event")
		},
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			dec.Parse(string(buf[:n]), cb)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// An aborted read is a quiet end, not a failure.
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Debug("stream aborted")
				return nil
			}
			return errorRegistry.WrapWith(ErrRead, err)
		}
	}
}
