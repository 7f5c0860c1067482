package workflow

import (
	"net/http"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("WORKFLOW")

	// ErrInputRequired rejects an execution without test input
	ErrInputRequired = errorRegistry.Register(
		"INPUT_REQUIRED",
		errx.TypeValidation,
		http.StatusBadRequest,
		"请输入测试输入",
	)

	// ErrRunInProgress rejects an execution while another is streaming
	ErrRunInProgress = errorRegistry.Register(
		"RUN_IN_PROGRESS",
		errx.TypeConflict,
		http.StatusConflict,
		"a workflow execution is already in progress",
	)
)
