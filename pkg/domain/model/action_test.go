package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

func TestActionDedupKey(t *testing.T) {
	firstSeen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create keys on the generated shape ID", func(t *testing.T) {
		a := &model.Action{
			Kind:    types.ActionCreate,
			ShapeID: "shape-1",
			Intent:  "draw a rectangle",
		}
		gt.Value(t, a.DedupKey(firstSeen)).Equal("create-shape-1")
	})

	t.Run("intent-carrying action keys on the intent", func(t *testing.T) {
		a := &model.Action{
			Kind:   types.ActionMove,
			Intent: "move the title left",
		}
		gt.Value(t, a.DedupKey(firstSeen)).Equal("move-move the title left")
	})

	t.Run("bare action falls back to the first frame time", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionThink}
		gt.Value(t, a.DedupKey(firstSeen)).Equal("think-1748779200000000000")
	})

	t.Run("key is stable across frames of one action", func(t *testing.T) {
		partial := &model.Action{Kind: types.ActionDelete, Intent: "remove the note"}
		complete := &model.Action{Kind: types.ActionDelete, Intent: "remove the note", Complete: true, TargetID: "n1"}
		gt.Value(t, partial.DedupKey(firstSeen)).Equal(complete.DedupKey(firstSeen))
	})
}

func TestActionValidate(t *testing.T) {
	t.Run("partial frames pass regardless of payload", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionCreate, Complete: false}
		gt.NoError(t, a.Validate())
	})

	t.Run("complete create requires a shape spec", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionCreate, Complete: true}
		gt.Error(t, a.Validate())

		a.Shape = &model.Shape{Type: "rectangle", W: 100, H: 50}
		gt.NoError(t, a.Validate())
	})

	t.Run("complete pen requires stroke points", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionPen, Complete: true}
		gt.Error(t, a.Validate())

		a.Points = []board.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
		gt.NoError(t, a.Validate())
	})

	t.Run("complete review requires a valid verdict", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionReview, Complete: true}
		gt.Error(t, a.Validate())

		a.Verdict = types.VerdictCorrect
		gt.NoError(t, a.Validate())
	})

	t.Run("align requires at least two targets", func(t *testing.T) {
		a := &model.Action{
			Kind:      types.ActionAlign,
			Complete:  true,
			TargetIDs: []types.RecordID{"s1"},
		}
		gt.Error(t, a.Validate())

		a.TargetIDs = append(a.TargetIDs, "s2")
		gt.NoError(t, a.Validate())
	})

	t.Run("single-target kinds require a target", func(t *testing.T) {
		a := &model.Action{Kind: types.ActionDelete, Complete: true}
		gt.Error(t, a.Validate())

		a.TargetID = "s1"
		gt.NoError(t, a.Validate())
	})

	t.Run("unknown kind fails", func(t *testing.T) {
		a := &model.Action{Kind: "explode"}
		gt.Error(t, a.Validate())
	})
}

func TestActionTargets(t *testing.T) {
	t.Run("single target wins over target list", func(t *testing.T) {
		a := &model.Action{TargetID: "s1", TargetIDs: []types.RecordID{"s2", "s3"}}
		targets := a.Targets()
		gt.Array(t, targets).Length(1).Required()
		gt.Value(t, targets[0]).Equal(types.RecordID("s1"))
	})

	t.Run("falls back to target list", func(t *testing.T) {
		a := &model.Action{TargetIDs: []types.RecordID{"s2", "s3"}}
		gt.Array(t, a.Targets()).Length(2)
	})
}

func TestActionDecodeWire(t *testing.T) {
	t.Run("create frame", func(t *testing.T) {
		raw := `{
			"kind": "create",
			"complete": true,
			"elapsedMs": 120,
			"intent": "add a title box",
			"shapeId": "shape-42",
			"shape": {"type": "rectangle", "x": 10, "y": 20, "w": 200, "h": 80, "text": "Title", "color": "blue"}
		}`

		var a model.Action
		gt.NoError(t, json.Unmarshal([]byte(raw), &a)).Required()

		gt.Value(t, a.Kind).Equal(types.ActionCreate)
		gt.Bool(t, a.Complete).True()
		gt.Value(t, a.ElapsedMs).Equal(int64(120))
		gt.Value(t, a.ShapeID).Equal(types.RecordID("shape-42"))
		gt.Value(t, a.Shape.Type).Equal("rectangle")
		gt.Value(t, a.Shape.Text).Equal("Title")
	})

	t.Run("zero coordinate survives decoding", func(t *testing.T) {
		raw := `{"kind": "move", "complete": true, "targetId": "s1", "x": 0, "y": 15}`

		var a model.Action
		gt.NoError(t, json.Unmarshal([]byte(raw), &a)).Required()

		gt.Value(t, a.X).NotEqual(nil)
		gt.Value(t, *a.X).Equal(0.0)
		gt.Value(t, *a.Y).Equal(15.0)
	})

	t.Run("absent coordinate stays nil", func(t *testing.T) {
		raw := `{"kind": "move", "complete": true, "targetId": "s1", "x": 30}`

		var a model.Action
		gt.NoError(t, json.Unmarshal([]byte(raw), &a)).Required()

		gt.Value(t, a.Y).Equal(nil)
	})
}
