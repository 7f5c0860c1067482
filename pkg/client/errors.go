package client

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("CLIENT")

	// ErrRequest covers failures building or sending the HTTP request
	ErrRequest = errorRegistry.Register(
		"REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"failed to reach the AgentFlow API",
	)

	// ErrResponse covers undecodable response bodies
	ErrResponse = errorRegistry.Register(
		"RESPONSE_INVALID",
		errx.TypeExternal,
		http.StatusBadGateway,
		"invalid response from the AgentFlow API",
	)

	// ErrUnauthorized is returned for 401 responses after the credential
	// has been cleared
	ErrUnauthorized = errorRegistry.Register(
		"UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"authentication required",
	)

	// ErrStatus covers all other non-2xx responses
	ErrStatus = errorRegistry.Register(
		"UNEXPECTED_STATUS",
		errx.TypeExternal,
		http.StatusBadGateway,
		"unexpected HTTP status",
	)
)
