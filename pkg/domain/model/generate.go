package model

import (
	"time"

	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// Bounds is the visible viewport of the board at prompt time
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ContextItem is one piece of supplementary document context attached to a
// prompt (e.g. an excerpt of lesson material)
type ContextItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GenerateRequest is the request body sent to the model backend to start a
// generation stream. Screenshot holds a base64 data URL and is redacted from
// logs.
type GenerateRequest struct {
	Message         string           `json:"message"`
	Shapes          []*board.Record  `json:"shapes"`
	SelectedShapes  []types.RecordID `json:"selectedShapes"`
	ViewportBounds  Bounds           `json:"viewportBounds"`
	Screenshot      string           `json:"screenshot,omitempty"`
	Model           string           `json:"model"`
	DocumentContext []ContextItem    `json:"documentContext,omitempty"`
}

// Validate checks if the generate request is valid
func (r *GenerateRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Prompt converts the request into its immutable history entry.
func (r *GenerateRequest) Prompt(at time.Time) *Prompt {
	return &Prompt{
		Message:          r.Message,
		Timestamp:        at,
		ContextItems:     r.DocumentContext,
		SelectedShapeIDs: r.SelectedShapes,
	}
}
