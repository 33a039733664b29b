package model

import (
	"fmt"
	"time"

	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// Action is one unit of agent output. It is a tagged union discriminated by
// Kind: think/message/review carry text only, every other kind identifies or
// creates a board record. An action may arrive as several partial frames;
// Complete turns true on the terminal frame.
type Action struct {
	Kind      types.ActionKind `json:"kind"`
	Complete  bool             `json:"complete"`
	ElapsedMs int64            `json:"elapsedMs"`

	// Intent is a short natural-language description of a mutating action,
	// used for deduplication and display.
	Intent string `json:"intent,omitempty"`

	// think / message / review / label
	Text    string        `json:"text,omitempty"`
	Verdict types.Verdict `json:"verdict,omitempty"`

	// create
	ShapeID types.RecordID `json:"shapeId,omitempty"`
	Shape   *Shape         `json:"shape,omitempty"`

	// pen
	Points []board.Point `json:"points,omitempty"`
	Color  string        `json:"color,omitempty"`

	// single-target operations
	TargetID types.RecordID `json:"targetId,omitempty"`
	Props    map[string]any `json:"props,omitempty"`

	// geometry operations; pointers so that a zero coordinate is
	// distinguishable from an absent one
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	W        *float64 `json:"w,omitempty"`
	H        *float64 `json:"h,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	// multi-target operations
	TargetIDs []types.RecordID `json:"targetIds,omitempty"`
	Axis      Axis             `json:"axis,omitempty"`
	Edge      Edge             `json:"edge,omitempty"`
	Gap       float64          `json:"gap,omitempty"`
}

// Axis selects the coordinate an align/distribute/stack operation works along
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Edge selects the alignment reference of an align operation
type Edge string

const (
	EdgeStart  Edge = "start"
	EdgeCenter Edge = "center"
	EdgeEnd    Edge = "end"
)

// Shape is the creation spec carried by a create action
type Shape struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Text  string  `json:"text,omitempty"`
	Color string  `json:"color,omitempty"`
	Fill  string  `json:"fill,omitempty"`
}

// IsMutating reports whether the action mutates the board when executed.
func (a *Action) IsMutating() bool {
	return a.Kind.IsMutating()
}

// DedupKey builds the stable key that guarantees exactly-once execution
// across partial frames of the same logical action. Creates key on the
// generated shape ID, anything carrying an intent keys on it, and the rest
// falls back to the arrival time of the first frame.
func (a *Action) DedupKey(firstSeen time.Time) string {
	switch {
	case a.Kind == types.ActionCreate && a.ShapeID != "":
		return fmt.Sprintf("%s-%s", a.Kind, a.ShapeID)
	case a.Intent != "":
		return fmt.Sprintf("%s-%s", a.Kind, a.Intent)
	default:
		return fmt.Sprintf("%s-%d", a.Kind, firstSeen.UnixNano())
	}
}

// Clone returns a deep copy of the action. Pointer fields and collections
// are duplicated so the copy can be read without coordinating with the
// stream loop.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	cloned := *a
	if a.Shape != nil {
		shape := *a.Shape
		cloned.Shape = &shape
	}
	if a.Points != nil {
		cloned.Points = make([]board.Point, len(a.Points))
		copy(cloned.Points, a.Points)
	}
	if a.Props != nil {
		cloned.Props = make(map[string]any, len(a.Props))
		for k, v := range a.Props {
			cloned.Props[k] = v
		}
	}
	cloned.X = cloneFloat(a.X)
	cloned.Y = cloneFloat(a.Y)
	cloned.W = cloneFloat(a.W)
	cloned.H = cloneFloat(a.H)
	cloned.Rotation = cloneFloat(a.Rotation)
	if a.TargetIDs != nil {
		cloned.TargetIDs = make([]types.RecordID, len(a.TargetIDs))
		copy(cloned.TargetIDs, a.TargetIDs)
	}
	return &cloned
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Targets returns all record IDs the action addresses, in wire order.
func (a *Action) Targets() []types.RecordID {
	if a.TargetID != "" {
		return []types.RecordID{a.TargetID}
	}
	return a.TargetIDs
}

// Validate checks the structural requirements of a complete action. Partial
// frames are exempt: their payload may still be truncated.
func (a *Action) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("invalid action kind: %s", a.Kind)
	}
	if !a.Complete {
		return nil
	}
	switch a.Kind {
	case types.ActionCreate:
		if a.Shape == nil {
			return fmt.Errorf("create action requires a shape spec")
		}
	case types.ActionPen:
		if len(a.Points) == 0 {
			return fmt.Errorf("pen action requires stroke points")
		}
	case types.ActionReview:
		if !a.Verdict.IsValid() {
			return fmt.Errorf("invalid review verdict: %s", a.Verdict)
		}
	case types.ActionAlign, types.ActionDistribute, types.ActionStack:
		if len(a.TargetIDs) < 2 {
			return fmt.Errorf("%s action requires at least two targets", a.Kind)
		}
	case types.ActionThink, types.ActionMessage:
		// free text, nothing to check
	default:
		if len(a.Targets()) == 0 {
			return fmt.Errorf("%s action requires a target", a.Kind)
		}
	}
	return nil
}
