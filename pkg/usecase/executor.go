package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/model/config"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// Executor translates complete mutating actions into record mutations inside
// the store's change-extracting transaction, so every execution yields the
// forward diff that makes it reversible.
type Executor struct {
	store   interfaces.DocumentStore
	palette *config.Palette
}

// NewExecutor creates an executor against the given store and palette
func NewExecutor(store interfaces.DocumentStore, palette *config.Palette) *Executor {
	return &Executor{
		store:   store,
		palette: palette,
	}
}

// Execute applies one complete mutating action and returns its forward diff.
func (e *Executor) Execute(ctx context.Context, action *model.Action) (*board.Diff, error) {
	if err := action.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid action")
	}

	return e.store.Extract(ctx, func(tx interfaces.BoardTx) error {
		return e.apply(tx, action)
	})
}

func (e *Executor) apply(tx interfaces.BoardTx, action *model.Action) error {
	switch action.Kind {
	case types.ActionCreate:
		return e.create(tx, action)
	case types.ActionPen:
		return e.pen(tx, action)
	case types.ActionDelete:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			tx.Delete(rec.ID)
		})
	case types.ActionUpdate:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			for k, v := range action.Props {
				rec.Props[k] = v
			}
			tx.Put(rec)
		})
	case types.ActionLabel:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			rec.Props[board.PropText] = action.Text
			tx.Put(rec)
		})
	case types.ActionPlace, types.ActionMove:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			if action.X != nil {
				rec.Props[board.PropX] = *action.X
			}
			if action.Y != nil {
				rec.Props[board.PropY] = *action.Y
			}
			tx.Put(rec)
		})
	case types.ActionResize:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			if action.W != nil {
				rec.Props[board.PropW] = *action.W
			}
			if action.H != nil {
				rec.Props[board.PropH] = *action.H
			}
			tx.Put(rec)
		})
	case types.ActionRotate:
		return mutate(tx, action.TargetID, func(rec *board.Record) {
			if action.Rotation != nil {
				rec.Props[board.PropRotation] = *action.Rotation
			}
			tx.Put(rec)
		})
	case types.ActionAlign:
		return e.align(tx, action)
	case types.ActionDistribute:
		return e.distribute(tx, action)
	case types.ActionStack:
		return e.stack(tx, action)
	case types.ActionBringToFront:
		return e.restack(tx, action, true)
	case types.ActionSendToBack:
		return e.restack(tx, action, false)
	case types.ActionHighlight:
		return e.highlight(tx, action)
	default:
		return goerr.New("action kind is not executable", goerr.V("kind", action.Kind))
	}
}

func (e *Executor) create(tx interfaces.BoardTx, action *model.Action) error {
	shape := action.Shape
	if !e.palette.Allows(shape.Type) {
		return goerr.Wrap(ErrShapeNotAllowed, "shape type not in palette",
			goerr.V("shape_type", shape.Type))
	}

	id := action.ShapeID
	if id == "" {
		id = types.NewRecordID()
	}

	rec := board.NewRecord(id, board.RecordShape)
	rec.Props[board.PropShape] = shape.Type
	rec.Props[board.PropX] = shape.X
	rec.Props[board.PropY] = shape.Y
	rec.Props[board.PropW] = shape.W
	rec.Props[board.PropH] = shape.H
	rec.Props[board.PropIndex] = topIndex(tx) + 1

	def, _ := e.palette.Shape(shape.Type)
	if color := firstNonEmpty(shape.Color, def.DefaultColor); color != "" {
		rec.Props[board.PropColor] = color
	}
	if fill := firstNonEmpty(shape.Fill, def.DefaultFill); fill != "" {
		rec.Props[board.PropFill] = fill
	}
	if shape.Text != "" {
		rec.Props[board.PropText] = shape.Text
	}

	tx.Put(rec)
	return nil
}

func (e *Executor) pen(tx interfaces.BoardTx, action *model.Action) error {
	id := action.ShapeID
	if id == "" {
		id = types.NewRecordID()
	}

	rec := board.NewRecord(id, board.RecordStroke)
	points := make([]board.Point, len(action.Points))
	copy(points, action.Points)
	rec.Props[board.PropPoints] = points
	rec.Props[board.PropIndex] = topIndex(tx) + 1
	if action.Color != "" {
		rec.Props[board.PropColor] = action.Color
	}

	tx.Put(rec)
	return nil
}

func (e *Executor) align(tx interfaces.BoardTx, action *model.Action) error {
	recs, err := targets(tx, action.TargetIDs)
	if err != nil {
		return err
	}

	posKey, sizeKey := axisKeys(action.Axis)

	lo, hi := recs[0].FloatOr(posKey, 0), recs[0].FloatOr(posKey, 0)+recs[0].FloatOr(sizeKey, 0)
	for _, rec := range recs[1:] {
		pos := rec.FloatOr(posKey, 0)
		if pos < lo {
			lo = pos
		}
		if end := pos + rec.FloatOr(sizeKey, 0); end > hi {
			hi = end
		}
	}

	for _, rec := range recs {
		size := rec.FloatOr(sizeKey, 0)
		switch action.Edge {
		case model.EdgeEnd:
			rec.Props[posKey] = hi - size
		case model.EdgeCenter:
			rec.Props[posKey] = (lo+hi)/2 - size/2
		default:
			rec.Props[posKey] = lo
		}
		tx.Put(rec)
	}
	return nil
}

func (e *Executor) distribute(tx interfaces.BoardTx, action *model.Action) error {
	recs, err := targets(tx, action.TargetIDs)
	if err != nil {
		return err
	}
	if len(recs) < 3 {
		// Two records are trivially distributed.
		return nil
	}

	posKey, sizeKey := axisKeys(action.Axis)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].FloatOr(posKey, 0) < recs[j].FloatOr(posKey, 0)
	})

	first, last := recs[0], recs[len(recs)-1]
	firstCenter := first.FloatOr(posKey, 0) + first.FloatOr(sizeKey, 0)/2
	lastCenter := last.FloatOr(posKey, 0) + last.FloatOr(sizeKey, 0)/2
	step := (lastCenter - firstCenter) / float64(len(recs)-1)

	for i, rec := range recs[1 : len(recs)-1] {
		center := firstCenter + step*float64(i+1)
		rec.Props[posKey] = center - rec.FloatOr(sizeKey, 0)/2
		tx.Put(rec)
	}
	return nil
}

func (e *Executor) stack(tx interfaces.BoardTx, action *model.Action) error {
	recs, err := targets(tx, action.TargetIDs)
	if err != nil {
		return err
	}

	axis := action.Axis
	if axis == "" {
		axis = model.AxisY
	}
	posKey, sizeKey := axisKeys(axis)

	cursor := recs[0].FloatOr(posKey, 0) + recs[0].FloatOr(sizeKey, 0)
	for _, rec := range recs[1:] {
		cursor += action.Gap
		rec.Props[posKey] = cursor
		cursor += rec.FloatOr(sizeKey, 0)
		tx.Put(rec)
	}
	return nil
}

func (e *Executor) restack(tx interfaces.BoardTx, action *model.Action, front bool) error {
	recs, err := targets(tx, action.Targets())
	if err != nil {
		return err
	}

	if front {
		idx := topIndex(tx)
		for _, rec := range recs {
			idx++
			rec.Props[board.PropIndex] = idx
			tx.Put(rec)
		}
		return nil
	}

	idx := bottomIndex(tx)
	// Walk in reverse so the first target ends up frontmost of the moved run.
	for i := len(recs) - 1; i >= 0; i-- {
		idx--
		recs[i].Props[board.PropIndex] = idx
		tx.Put(recs[i])
	}
	return nil
}

func (e *Executor) highlight(tx interfaces.BoardTx, action *model.Action) error {
	target, ok := tx.Get(action.TargetID)
	if !ok {
		return goerr.Wrap(ErrTargetNotFound, "highlight target not found",
			goerr.V(TargetIDKey, action.TargetID))
	}

	rec := board.NewRecord(types.NewRecordID(), board.RecordHighlight)
	rec.Props[board.PropTarget] = target.ID.String()
	rec.Props[board.PropX] = target.FloatOr(board.PropX, 0)
	rec.Props[board.PropY] = target.FloatOr(board.PropY, 0)
	rec.Props[board.PropW] = target.FloatOr(board.PropW, 0)
	rec.Props[board.PropH] = target.FloatOr(board.PropH, 0)
	rec.Props[board.PropIndex] = topIndex(tx) + 1

	color := action.Color
	if color == "" {
		color = "yellow"
	}
	rec.Props[board.PropColor] = color

	tx.Put(rec)
	return nil
}

// mutate loads one target record and applies fn to it.
func mutate(tx interfaces.BoardTx, id types.RecordID, fn func(rec *board.Record)) error {
	rec, ok := tx.Get(id)
	if !ok {
		return goerr.Wrap(ErrTargetNotFound, "target record not found",
			goerr.V(TargetIDKey, id))
	}
	fn(rec)
	return nil
}

// targets loads every target record, failing on the first dangling reference.
func targets(tx interfaces.BoardTx, ids []types.RecordID) ([]*board.Record, error) {
	recs := make([]*board.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := tx.Get(id)
		if !ok {
			return nil, goerr.Wrap(ErrTargetNotFound, "target record not found",
				goerr.V(TargetIDKey, id))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func axisKeys(axis model.Axis) (posKey, sizeKey string) {
	if axis == model.AxisY {
		return board.PropY, board.PropH
	}
	return board.PropX, board.PropW
}

func topIndex(tx interfaces.BoardTx) float64 {
	top := 0.0
	for _, rec := range tx.List() {
		if idx, ok := rec.Float(board.PropIndex); ok && idx > top {
			top = idx
		}
	}
	return top
}

func bottomIndex(tx interfaces.BoardTx) float64 {
	bottom := 0.0
	for _, rec := range tx.List() {
		if idx, ok := rec.Float(board.PropIndex); ok && idx < bottom {
			bottom = idx
		}
	}
	return bottom
}
