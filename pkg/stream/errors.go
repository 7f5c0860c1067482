package stream

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("STREAM")

	// ErrRead covers body read failures that are not cancellations
	ErrRead = errorRegistry.Register(
		"READ_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"failed reading the event stream",
	)
)
