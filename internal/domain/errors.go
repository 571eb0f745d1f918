package domain

import "errors"

// Sentinel errors returned by the orchestration core. Callers classify
// failures with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrValidation indicates a malformed download request.
	ErrValidation = errors.New("invalid request")

	// ErrDuplicateActiveJob indicates a non-terminal job already exists
	// for the requested URL.
	ErrDuplicateActiveJob = errors.New("active job already exists for url")

	// ErrSpawn indicates an external tool is missing or not invocable.
	ErrSpawn = errors.New("failed to spawn process")

	// ErrAlreadyInProgress indicates an installation for the same tool
	// is already running.
	ErrAlreadyInProgress = errors.New("installation already in progress")

	// ErrProcessTerminated indicates the external process died without a
	// normal exit and without a caller-initiated cancel.
	ErrProcessTerminated = errors.New("process terminated unexpectedly")

	// ErrPersistence indicates the configuration record could not be
	// written. The in-memory record stays authoritative.
	ErrPersistence = errors.New("failed to persist configuration")
)
