package llm

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the backend client
var (
	// ErrBackend indicates the backend sent an explicit error sentinel
	// event; it is fatal for the current generation.
	ErrBackend = goerr.New("backend reported error")

	// ErrUnexpectedStatus indicates a non-200 response to the generate call
	ErrUnexpectedStatus = goerr.New("unexpected backend status")
)
