package auth

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("AUTH")

	// ErrStore covers token-file read/write failures
	ErrStore = errorRegistry.Register(
		"STORE_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"failed to access the token store",
	)

	// ErrLogin covers rejected login attempts
	ErrLogin = errorRegistry.Register(
		"LOGIN_FAILED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"login rejected by the platform",
	)

	// ErrBadToken covers tokens that cannot be inspected
	ErrBadToken = errorRegistry.Register(
		"TOKEN_INVALID",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"stored token is not a valid JWT",
	)
)
