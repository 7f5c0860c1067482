package sandbox

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("SANDBOX")

	// ErrBadRequest covers malformed payloads
	ErrBadRequest = errorRegistry.Register(
		"BAD_REQUEST",
		errx.TypeValidation,
		http.StatusBadRequest,
		"invalid request",
	)

	// ErrBadCredentials rejects failed logins
	ErrBadCredentials = errorRegistry.Register(
		"BAD_CREDENTIALS",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"邮箱或密码错误",
	)

	// ErrToken covers token signing failures
	ErrToken = errorRegistry.Register(
		"TOKEN_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"failed to issue token",
	)

	// ErrUnauthorized rejects requests without a valid bearer token
	ErrUnauthorized = errorRegistry.Register(
		"UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"Not authenticated",
	)

	// ErrForbidden rejects non-admin access to admin endpoints
	ErrForbidden = errorRegistry.Register(
		"FORBIDDEN",
		errx.TypeAuthorization,
		http.StatusForbidden,
		"Admin access required",
	)

	// ErrNotFound covers missing resources
	ErrNotFound = errorRegistry.Register(
		"NOT_FOUND",
		errx.TypeNotFound,
		http.StatusNotFound,
		"resource not found",
	)

	// ErrConflict covers duplicate names
	ErrConflict = errorRegistry.Register(
		"CONFLICT",
		errx.TypeConflict,
		http.StatusConflict,
		"resource already exists",
	)
)
