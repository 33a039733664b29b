package model

import (
	"time"

	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// HistoryItemType discriminates chat history entries
type HistoryItemType string

const (
	HistoryItemPrompt       HistoryItemType = "prompt"
	HistoryItemAction       HistoryItemType = "action"
	HistoryItemContinuation HistoryItemType = "continuation"
)

// Prompt is one user-submitted request. Immutable after creation.
type Prompt struct {
	Message          string           `json:"message"`
	Timestamp        time.Time        `json:"timestamp"`
	ContextItems     []ContextItem    `json:"contextItems,omitempty"`
	SelectedShapeIDs []types.RecordID `json:"selectedShapeIds,omitempty"`
}

// ChatHistoryItem is one entry of the session history. Prompt items are
// immutable; action items are refined in place as later frames of the same
// action arrive, and Diff/Acceptance are set by the executor and the review
// controller. Continuation items join two action runs of the same turn.
type ChatHistoryItem struct {
	Type HistoryItemType `json:"type"`

	Prompt *Prompt `json:"prompt,omitempty"`

	Action     *Action          `json:"action,omitempty"`
	Acceptance types.Acceptance `json:"acceptance,omitempty"`
	Diff       *board.Diff      `json:"-"`

	// FirstSeen is the arrival time of the first frame; it anchors the
	// fallback dedup key for actions without a shape ID or intent.
	FirstSeen time.Time `json:"firstSeen"`
}

// NewPromptItem creates an immutable prompt history item
func NewPromptItem(prompt *Prompt) *ChatHistoryItem {
	return &ChatHistoryItem{
		Type:      HistoryItemPrompt,
		Prompt:    prompt,
		FirstSeen: prompt.Timestamp,
	}
}

// NewActionItem creates an action history item in pending acceptance
func NewActionItem(action *Action, firstSeen time.Time) *ChatHistoryItem {
	return &ChatHistoryItem{
		Type:       HistoryItemAction,
		Action:     action,
		Acceptance: types.AcceptancePending,
		FirstSeen:  firstSeen,
	}
}

// NewContinuationItem creates a marker joining two action runs of one turn
func NewContinuationItem(at time.Time) *ChatHistoryItem {
	return &ChatHistoryItem{
		Type:      HistoryItemContinuation,
		FirstSeen: at,
	}
}

// Clone returns a deep copy of the item. The prompt is shared: prompts are
// immutable after creation.
func (it *ChatHistoryItem) Clone() *ChatHistoryItem {
	if it == nil {
		return nil
	}
	cloned := *it
	cloned.Action = it.Action.Clone()
	cloned.Diff = it.Diff.Clone()
	return &cloned
}

// IsAction reports whether the item holds an agent action.
func (it *ChatHistoryItem) IsAction() bool {
	return it.Type == HistoryItemAction && it.Action != nil
}

// HasCanvasChanges reports whether the item represents a completed board
// mutation.
func (it *ChatHistoryItem) HasCanvasChanges() bool {
	return it.IsAction() && it.Action.IsMutating() && it.Action.Complete
}

// DedupKey returns the stable execution key for the item's action.
func (it *ChatHistoryItem) DedupKey() string {
	if !it.IsAction() {
		return ""
	}
	return it.Action.DedupKey(it.FirstSeen)
}
