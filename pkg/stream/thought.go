package stream

import (
	"sync"
	"time"
)

// Thought holds the transient status line shown while a run is streaming.
// It is safe for concurrent use; transient values expire on a timer unless
// a later update supersedes them, tracked by a generation counter rather
// than value comparison so that two identical statuses in a row cannot
// clear each other.
type Thought struct {
	mu       sync.Mutex
	value    string
	gen      uint64
	onChange func(string)
}

// NewThought creates an empty tracker. onChange, if non-nil, fires after
// every visible change with the new value.
func NewThought(onChange func(string)) *Thought {
	return &Thought{onChange: onChange}
}

// Get returns the current thought text.
func (t *Thought) Get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Set replaces the thought text.
func (t *Thought) Set(value string) {
	t.mu.Lock()
	t.value = value
	t.gen++
	notify := t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(value)
	}
}

// Clear resets the thought text to empty.
func (t *Thought) Clear() {
	t.Set("")
}

// SetTransient sets the thought text and schedules it to clear after ttl,
// unless any later Set/Clear lands first.
func (t *Thought) SetTransient(value string, ttl time.Duration) {
	t.mu.Lock()
	t.value = value
	t.gen++
	gen := t.gen
	notify := t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(value)
	}

	time.AfterFunc(ttl, func() {
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.value = ""
		t.gen++
		notify := t.onChange
		t.mu.Unlock()

		if notify != nil {
			notify("")
		}
	})
}
