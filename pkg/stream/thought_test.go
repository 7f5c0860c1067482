package stream_test

import (
	"testing"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/stream"
)

func TestThoughtSetGet(t *testing.T) {
	th := stream.NewThought(nil)
	th.Set("执行节点: 大语言模型")
	if got := th.Get(); got != "执行节点: 大语言模型" {
		t.Fatalf("unexpected thought %q", got)
	}
	th.Clear()
	if th.Get() != "" {
		t.Fatal("clear must empty the thought")
	}
}

func TestTransientExpires(t *testing.T) {
	th := stream.NewThought(nil)
	th.SetTransient("检索完成，找到 3 个相关片段", 20*time.Millisecond)

	if th.Get() == "" {
		t.Fatal("transient value must be visible immediately")
	}

	time.Sleep(60 * time.Millisecond)
	if got := th.Get(); got != "" {
		t.Fatalf("transient value should have expired, got %q", got)
	}
}

func TestTransientSupersededByLaterSet(t *testing.T) {
	th := stream.NewThought(nil)
	th.SetTransient("old", 20*time.Millisecond)
	th.Set("newer")

	time.Sleep(60 * time.Millisecond)
	if got := th.Get(); got != "newer" {
		t.Fatalf("expired transient must not clear a later value, got %q", got)
	}
}

// Two identical transient values in a row: the first timer firing must not
// clear the second value.
func TestTransientIdenticalValuesUseGenerations(t *testing.T) {
	th := stream.NewThought(nil)
	th.SetTransient("same", 30*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	th.SetTransient("same", 100*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	if got := th.Get(); got != "same" {
		t.Fatalf("first timer cleared the second identical value, got %q", got)
	}
}

func TestOnChangeNotified(t *testing.T) {
	var seen []string
	th := stream.NewThought(func(v string) { seen = append(seen, v) })

	th.Set("a")
	th.Clear()

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "" {
		t.Fatalf("unexpected change notifications %v", seen)
	}
}
