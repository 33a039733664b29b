package board

import (
	"github.com/easel-labs/easel/pkg/domain/types"
)

// RecordType represents the class of a board record
type RecordType string

const (
	RecordShape     RecordType = "shape"
	RecordStroke    RecordType = "stroke"
	RecordHighlight RecordType = "highlight"
)

// IsValid checks if the record type is valid
func (t RecordType) IsValid() bool {
	switch t {
	case RecordShape, RecordStroke, RecordHighlight:
		return true
	default:
		return false
	}
}

// Well-known property keys. Records are an open property bag so that partial
// updates from the agent can merge arbitrary keys; geometry and styling used
// by the executor go through these.
const (
	PropX        = "x"
	PropY        = "y"
	PropW        = "w"
	PropH        = "h"
	PropRotation = "rotation"
	PropIndex    = "index"
	PropText     = "text"
	PropColor    = "color"
	PropFill     = "fill"
	PropShape    = "shape"
	PropPoints   = "points"
	PropTarget   = "target"
)

// Point is a single coordinate of a freehand stroke
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is one entry of the board scene graph
type Record struct {
	ID    types.RecordID `json:"id"`
	Type  RecordType     `json:"type"`
	Props map[string]any `json:"props"`
}

// NewRecord creates a record with an empty property bag
func NewRecord(id types.RecordID, typ RecordType) *Record {
	return &Record{
		ID:    id,
		Type:  typ,
		Props: map[string]any{},
	}
}

// Clone creates a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		ID:    r.ID,
		Type:  r.Type,
		Props: cloneProps(r.Props),
	}
}

// Float returns a numeric property. JSON decoding yields float64, but the
// executor also writes int z-indexes, so both are accepted.
func (r *Record) Float(key string) (float64, bool) {
	switch v := r.Props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// FloatOr returns a numeric property or the given fallback.
func (r *Record) FloatOr(key string, fallback float64) float64 {
	if v, ok := r.Float(key); ok {
		return v
	}
	return fallback
}

// Text returns a string property.
func (r *Record) Text(key string) (string, bool) {
	v, ok := r.Props[key].(string)
	return v, ok
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	cloned := make(map[string]any, len(props))
	for k, v := range props {
		cloned[k] = cloneValue(v)
	}
	return cloned
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneProps(val)
	case []any:
		cloned := make([]any, len(val))
		for i, e := range val {
			cloned[i] = cloneValue(e)
		}
		return cloned
	case []Point:
		cloned := make([]Point, len(val))
		copy(cloned, val)
		return cloned
	default:
		return val
	}
}
