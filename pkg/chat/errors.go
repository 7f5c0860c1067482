package chat

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("CHAT")

	// ErrHistory covers local history database failures
	ErrHistory = errorRegistry.Register(
		"HISTORY_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"failed to access the chat history store",
	)

	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errorRegistry.Register(
		"SESSION_NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"chat session not found",
	)

	// ErrBusy rejects a send while another run is still streaming
	ErrBusy = errorRegistry.Register(
		"RUN_IN_PROGRESS",
		errx.TypeConflict,
		http.StatusConflict,
		"a message is already streaming in this session",
	)
)
