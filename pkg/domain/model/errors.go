package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for domain model validation
var (
	ErrEmptyMessage = goerr.New("prompt message is required")
)
