package skill

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("SKILL")

	// ErrBadName rejects names outside the lowercase-hyphen format
	ErrBadName = errorRegistry.Register(
		"INVALID_NAME",
		errx.TypeValidation,
		http.StatusBadRequest,
		"invalid skill name",
	)

	// ErrMissingInputs rejects a run that omits required inputs
	ErrMissingInputs = errorRegistry.Register(
		"MISSING_INPUTS",
		errx.TypeValidation,
		http.StatusBadRequest,
		"required inputs are missing",
	)

	// ErrRunInProgress rejects a run while another is still streaming
	ErrRunInProgress = errorRegistry.Register(
		"RUN_IN_PROGRESS",
		errx.TypeConflict,
		http.StatusConflict,
		"a skill run is already in progress",
	)
)
