package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  Fields
}

// console renders "2006-01-02 15:04:05 | INFO  | message | k=v k=v\n"
func (e entry) console() []byte {
	var b strings.Builder
	b.WriteString(e.Time.Format("2006-01-02 15:04:05"))
	b.WriteString(" | ")
	b.WriteString(fmt.Sprintf("%-5s", e.Level.String()))
	b.WriteString(" | ")
	b.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
		}
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// json renders one JSON object per line
func (e entry) json() []byte {
	obj := make(map[string]any, len(e.Fields)+3)
	for k, v := range e.Fields {
		obj[k] = v
	}
	obj["time"] = e.Time.Format(time.RFC3339Nano)
	obj["level"] = e.Level.String()
	obj["message"] = e.Message

	line, err := json.Marshal(obj)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":"ERROR","message":"logx: marshal failed: %v"}`, err))
	}
	return append(line, '\n')
}
