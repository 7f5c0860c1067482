package stream

import "fmt"

// User-visible strings shared by the streaming consumers. The platform UI
// is Chinese; these match the markers the web front-end renders.
const (
	// UnknownErrorText is the fallback when an error event has no text
	UnknownErrorText = "未知错误"

	// ConnectionErrorPrefix prefixes transport failures in chat output
	ConnectionErrorPrefix = "连接错误: "
)

// ErrorMarker renders the inline error suffix appended to streamed output.
func ErrorMarker(text string) string {
	if text == "" {
		text = UnknownErrorText
	}
	return fmt.Sprintf("\n[错误: %s]", text)
}

// CitationMarker renders the one-shot citation summary used by consumers
// without structured citation display.
func CitationMarker(n int) string {
	return fmt.Sprintf("\n[引用 %d 个来源]", n)
}

// ErrorText picks the error text from an error event payload: content
// first, then message, then the unknown-error fallback.
func ErrorText(content, message string) string {
	if content != "" {
		return content
	}
	if message != "" {
		return message
	}
	return UnknownErrorText
}
