package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrSessionNotFound = errors.New("session not found")
	ErrItemNotFound    = errors.New("history item not found")
	ErrGroupNotFound   = errors.New("review group not found")
	ErrTargetNotFound  = errors.New("target record not found")

	// Execution errors
	ErrShapeNotAllowed = errors.New("shape type not allowed by palette")
	ErrNotActionItem   = errors.New("history item is not an action")
)

// Context keys for error values
const (
	SessionIDKey  = "session_id"
	ItemIndexKey  = "item_index"
	GroupIndexKey = "group_index"
	TargetIDKey   = "target_id"
)
