package knowledge

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("KB")

	// ErrNameRequired rejects creating a knowledge base without a name
	ErrNameRequired = errorRegistry.Register(
		"NAME_REQUIRED",
		errx.TypeValidation,
		http.StatusBadRequest,
		"knowledge base name is required",
	)

	// ErrUnsupportedFile rejects file types the indexer cannot parse
	ErrUnsupportedFile = errorRegistry.Register(
		"UNSUPPORTED_FILE",
		errx.TypeValidation,
		http.StatusBadRequest,
		"unsupported file type",
	)

	// ErrUpload covers local file access failures during upload
	ErrUpload = errorRegistry.Register(
		"UPLOAD_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"failed to upload document",
	)

	// ErrQueryRequired rejects a search without a query
	ErrQueryRequired = errorRegistry.Register(
		"QUERY_REQUIRED",
		errx.TypeValidation,
		http.StatusBadRequest,
		"search query is required",
	)
)
