package skill

import (
	"context"
	"strings"
	"sync"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
	"github.com/agentflow-ai/agentflow-go/pkg/sse"
	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

// runFailedText is the inline fallback when a run fails without a message.
const runFailedText = "运行失败"

// Runner executes one skill at a time and accumulates its streamed output
// into a plain-text transcript.
type Runner struct {
	client *client.Client
	log    *logx.Logger

	mu      sync.Mutex
	output  strings.Builder
	running bool

	// Thought exposes the transient progress status of the active run
	Thought *stream.Thought

	// OnToken receives each appended transcript increment
	OnToken func(delta string)
}

// NewRunner creates a skill runner bound to c.
func NewRunner(c *client.Client) *Runner {
	return &Runner{
		client:  c,
		log:     logx.WithField("component", "skill"),
		Thought: stream.NewThought(nil),
	}
}

// Output returns the transcript accumulated so far.
func (r *Runner) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output.String()
}

// IsRunning reports whether a run is in flight.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

func (r *Runner) append(text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	r.output.WriteString(text)
	r.mu.Unlock()
	if r.OnToken != nil {
		r.OnToken(text)
	}
}

// PrefillInputs returns an input map seeded with the skill's declared
// defaults.
func PrefillInputs(s *Skill) map[string]string {
	inputs := make(map[string]string)
	for _, in := range s.Inputs {
		if in.Default != "" {
			inputs[in.Name] = in.Default
		}
	}
	return inputs
}

// ValidateInputs checks that every required input has a non-blank value.
func ValidateInputs(s *Skill, inputs map[string]string) error {
	var missing []string
	for _, in := range s.Inputs {
		if in.Required && strings.TrimSpace(inputs[in.Name]) == "" {
			missing = append(missing, in.Name)
		}
	}
	if len(missing) > 0 {
		return errorRegistry.NewWithMessage(ErrMissingInputs,
			"请填写必填项: "+strings.Join(missing, ", "))
	}
	return nil
}

type runPayload struct {
	Inputs map[string]string `json:"inputs"`
}

// Run streams one execution of the skill, resetting the transcript first.
// Transport failures are recorded inline in the transcript and returned;
// cancellation ends the run quietly.
func (r *Runner) Run(ctx context.Context, s *Skill, inputs map[string]string) error {
	if r.IsRunning() {
		return errorRegistry.New(ErrRunInProgress)
	}
	if err := ValidateInputs(s, inputs); err != nil {
		return err
	}

	r.mu.Lock()
	r.output.Reset()
	r.running = true
	r.mu.Unlock()
	r.Thought.Clear()

	err := stream.Run(ctx, r.client, stream.Options{
		Path:        "/skills/" + s.Name + "/run",
		Body:        runPayload{Inputs: inputs},
		IdleTimeout: stream.DefaultIdleTimeout,
		OnEvent:     r.applyEvent,
		OnDone: func() {
			r.setRunning(false)
			r.Thought.Clear()
		},
	})

	if err != nil {
		reason := err.Error()
		if reason == "" {
			reason = runFailedText
		}
		r.append(stream.ErrorMarker(reason))
		r.log.WithError(err).WithField("skill", s.Name).Warn("skill run failed")
	}

	r.setRunning(false)
	r.Thought.Clear()
	return err
}

// applyEvent folds one stream event into the transcript. Citations are
// rendered inline as a source-count marker rather than structured data.
func (r *Runner) applyEvent(ev sse.Event) {
	switch ev.Type {
	case sse.EventThought:
		data := ev.Thought()
		switch {
		case data.Message != "":
			r.Thought.Set(data.Message)
		case data.Status != "":
			r.Thought.Set(data.Status)
		default:
			r.Thought.Set("")
		}

	case sse.EventToken:
		r.append(ev.Token().Content)

	case sse.EventCitation:
		if n := len(ev.Citation().Sources); n > 0 {
			r.append(stream.CitationMarker(n))
		}

	case sse.EventDone:
		r.setRunning(false)
		r.Thought.Clear()

	case sse.EventError:
		data := ev.Error()
		r.append(stream.ErrorMarker(stream.ErrorText(data.Content, data.Message)))
		r.setRunning(false)
		r.Thought.Clear()
	}
}
