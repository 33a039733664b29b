package types

import "fmt"

// ActionKind discriminates the variants of an agent action.
type ActionKind string

// Non-mutating kinds carry text only and never touch the board.
const (
	ActionThink   ActionKind = "think"
	ActionMessage ActionKind = "message"
	ActionReview  ActionKind = "review"
)

// Mutating kinds identify or create board records.
const (
	ActionCreate       ActionKind = "create"
	ActionPen          ActionKind = "pen"
	ActionDelete       ActionKind = "delete"
	ActionUpdate       ActionKind = "update"
	ActionLabel        ActionKind = "label"
	ActionPlace        ActionKind = "place"
	ActionMove         ActionKind = "move"
	ActionResize       ActionKind = "resize"
	ActionRotate       ActionKind = "rotate"
	ActionAlign        ActionKind = "align"
	ActionDistribute   ActionKind = "distribute"
	ActionStack        ActionKind = "stack"
	ActionBringToFront ActionKind = "bringToFront"
	ActionSendToBack   ActionKind = "sendToBack"
	ActionHighlight    ActionKind = "highlight"
)

// AllActionKinds returns all valid action kinds
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionThink,
		ActionMessage,
		ActionReview,
		ActionCreate,
		ActionPen,
		ActionDelete,
		ActionUpdate,
		ActionLabel,
		ActionPlace,
		ActionMove,
		ActionResize,
		ActionRotate,
		ActionAlign,
		ActionDistribute,
		ActionStack,
		ActionBringToFront,
		ActionSendToBack,
		ActionHighlight,
	}
}

// IsValid checks if the action kind is valid
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionThink, ActionMessage, ActionReview,
		ActionCreate, ActionPen, ActionDelete, ActionUpdate, ActionLabel,
		ActionPlace, ActionMove, ActionResize, ActionRotate,
		ActionAlign, ActionDistribute, ActionStack,
		ActionBringToFront, ActionSendToBack, ActionHighlight:
		return true
	default:
		return false
	}
}

// IsMutating reports whether actions of this kind mutate the board.
func (k ActionKind) IsMutating() bool {
	switch k {
	case ActionThink, ActionMessage, ActionReview:
		return false
	default:
		return k.IsValid()
	}
}

// String returns the string representation of the action kind
func (k ActionKind) String() string {
	return string(k)
}

// ParseActionKind parses a string into an ActionKind
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid action kind: %s", s)
	}
	return kind, nil
}
