package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/types"
	"github.com/easel-labs/easel/pkg/repository/memory"
	"github.com/easel-labs/easel/pkg/usecase"
)

// scriptStream replays a fixed list of frames, then ends with finalErr
// (io.EOF for a clean stream). When block is set it waits for cancellation
// after the frames run out instead.
type scriptStream struct {
	frames   []*model.Action
	finalErr error
	block    bool
	pos      int
}

func (s *scriptStream) Next(ctx context.Context) (*model.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos < len(s.frames) {
		a := s.frames[s.pos]
		s.pos++
		return a, nil
	}
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return nil, s.finalErr
}

func (s *scriptStream) Close() error { return nil }

type scriptGenerator struct {
	stream *scriptStream
	err    error
}

func (g *scriptGenerator) Generate(ctx context.Context, req *model.GenerateRequest) (interfaces.ActionStream, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.stream, nil
}

func createFrame(shapeID string, complete bool) *model.Action {
	return &model.Action{
		Kind:     types.ActionCreate,
		Complete: complete,
		ShapeID:  types.RecordID(shapeID),
		Shape:    &model.Shape{Type: "rectangle", W: 100, H: 50},
	}
}

func thinkFrame(text string, complete bool) *model.Action {
	return &model.Action{Kind: types.ActionThink, Text: text, Complete: complete}
}

func runSession(t *testing.T, frames []*model.Action) (*usecase.Session, *memory.Board) {
	t.Helper()

	b := memory.New()
	uc := usecase.New(b)
	session := uc.CreateSession()

	gen := &scriptGenerator{stream: &scriptStream{frames: frames, finalErr: io.EOF}}
	req := &model.GenerateRequest{Message: "draw something"}
	gt.NoError(t, session.Run(context.Background(), gen, req, nil)).Required()
	return session, b
}

func TestSessionRun(t *testing.T) {
	ctx := context.Background()

	t.Run("prompt item leads the history", func(t *testing.T) {
		session, _ := runSession(t, nil)

		items := session.History()
		gt.Array(t, items).Length(1).Required()
		gt.Value(t, items[0].Type).Equal(model.HistoryItemPrompt)
		gt.Value(t, items[0].Prompt.Message).Equal("draw something")
	})

	t.Run("partial frames coalesce into one item", func(t *testing.T) {
		session, _ := runSession(t, []*model.Action{
			thinkFrame("pla", false),
			thinkFrame("plan: draw a hou", false),
			thinkFrame("plan: draw a house", true),
		})

		items := session.History()
		gt.Array(t, items).Length(2).Required()
		gt.Value(t, items[1].Action.Text).Equal("plan: draw a house")
		gt.Bool(t, items[1].Action.Complete).True()
	})

	t.Run("kind switch starts a new item", func(t *testing.T) {
		session, _ := runSession(t, []*model.Action{
			thinkFrame("planning", false),
			createFrame("s1", true),
		})

		// The think item never completed; the create still gets its own entry.
		items := session.History()
		gt.Array(t, items).Length(3).Required()
		gt.Value(t, items[1].Action.Kind).Equal(types.ActionThink)
		gt.Value(t, items[2].Action.Kind).Equal(types.ActionCreate)
	})

	t.Run("completed action executes and captures its diff", func(t *testing.T) {
		session, b := runSession(t, []*model.Action{
			createFrame("s1", false),
			createFrame("s1", true),
		})

		items := session.History()
		gt.Array(t, items).Length(2).Required()
		item := items[1]
		gt.Value(t, item.Acceptance).Equal(types.AcceptancePending)
		gt.Value(t, item.Diff).NotEqual(nil)

		rec, err := b.Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Value(t, rec.FloatOr("w", 0)).Equal(100.0)
	})

	t.Run("duplicate complete frames execute once", func(t *testing.T) {
		session, b := runSession(t, []*model.Action{
			createFrame("s1", true),
			createFrame("s1", true),
		})

		records, err := b.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(1)

		// The duplicate got its own history entry but no second diff.
		diffs := 0
		for _, item := range session.History() {
			if item.Diff != nil {
				diffs++
			}
		}
		gt.Value(t, diffs).Equal(1)
	})

	t.Run("execution failure leaves the item diff-less", func(t *testing.T) {
		session, b := runSession(t, []*model.Action{
			{Kind: types.ActionDelete, Complete: true, TargetID: "ghost"},
			createFrame("s1", true),
		})

		items := session.History()
		gt.Array(t, items).Length(3).Required()
		gt.Value(t, items[1].Diff).Equal(nil)
		gt.Value(t, items[2].Diff).NotEqual(nil)

		// The stream survived the failed action.
		records, err := b.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(1)
	})

	t.Run("stream error is returned and history kept", func(t *testing.T) {
		b := memory.New()
		uc := usecase.New(b)
		session := uc.CreateSession()

		boom := errors.New("connection reset")
		gen := &scriptGenerator{stream: &scriptStream{
			frames:   []*model.Action{createFrame("s1", true)},
			finalErr: boom,
		}}

		err := session.Run(ctx, gen, &model.GenerateRequest{Message: "draw"}, nil)
		gt.Error(t, err).Required()
		gt.Bool(t, errors.Is(err, boom)).True()

		gt.Array(t, session.History()).Length(2)
		rec, err := b.Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Value(t, rec.ID).Equal(types.RecordID("s1"))
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New())
		session := uc.CreateSession()

		err := session.Run(ctx, &scriptGenerator{}, &model.GenerateRequest{}, nil)
		gt.Error(t, err)
		gt.Array(t, session.History()).Length(0)
	})

	t.Run("generator failure is wrapped", func(t *testing.T) {
		uc := usecase.New(memory.New())
		session := uc.CreateSession()

		gen := &scriptGenerator{err: errors.New("backend down")}
		err := session.Run(ctx, gen, &model.GenerateRequest{Message: "draw"}, nil)
		gt.Error(t, err)
	})

	t.Run("history returns independent copies", func(t *testing.T) {
		session, _ := runSession(t, []*model.Action{
			thinkFrame("plan", true),
		})

		items := session.History()
		items[1].Action.Text = "tampered"

		fresh := session.History()
		gt.Value(t, fresh[1].Action.Text).Equal("plan")
	})

	t.Run("updates are relayed per frame", func(t *testing.T) {
		b := memory.New()
		uc := usecase.New(b)
		session := uc.CreateSession()

		var seen []types.ActionKind
		gen := &scriptGenerator{stream: &scriptStream{
			frames: []*model.Action{
				thinkFrame("a", false),
				thinkFrame("ab", true),
				createFrame("s1", true),
			},
			finalErr: io.EOF,
		}}

		err := session.Run(ctx, gen, &model.GenerateRequest{Message: "draw"}, func(item *model.ChatHistoryItem) {
			seen = append(seen, item.Action.Kind)
		})
		gt.NoError(t, err).Required()
		gt.Array(t, seen).Length(3).Required()
		gt.Value(t, seen[0]).Equal(types.ActionThink)
		gt.Value(t, seen[1]).Equal(types.ActionThink)
		gt.Value(t, seen[2]).Equal(types.ActionCreate)
	})
}

func TestSessionHistoryDuringRun(t *testing.T) {
	frames := make([]*model.Action, 0, 101)
	for i := 0; i < 100; i++ {
		frames = append(frames, thinkFrame(strings.Repeat("a", i+1), false))
	}
	frames = append(frames, thinkFrame("done", true))

	b := memory.New()
	uc := usecase.New(b)
	session := uc.CreateSession()

	gen := &scriptGenerator{stream: &scriptStream{frames: frames, finalErr: io.EOF}}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background(), gen, &model.GenerateRequest{Message: "draw"}, nil)
	}()

	// Marshal snapshots while the stream loop refines the trailing item.
	for running := true; running; {
		select {
		case err := <-done:
			gt.NoError(t, err).Required()
			running = false
		default:
			for _, item := range session.History() {
				_, err := json.Marshal(item)
				gt.NoError(t, err)
			}
		}
	}

	items := session.History()
	gt.Array(t, items).Length(2).Required()
	gt.Value(t, items[1].Action.Text).Equal("done")
	gt.Bool(t, items[1].Action.Complete).True()
}

func TestSessionCancel(t *testing.T) {
	ctx := context.Background()

	b := memory.New()
	uc := usecase.New(b)
	session := uc.CreateSession()

	gen := &scriptGenerator{stream: &scriptStream{
		frames: []*model.Action{createFrame("s1", true)},
		block:  true,
	}}

	done := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		done <- session.Run(ctx, gen, &model.GenerateRequest{Message: "draw"}, func(item *model.ChatHistoryItem) {
			select {
			case <-started:
			default:
				close(started)
			}
		})
	}()

	<-started
	session.Cancel()

	err := <-done
	gt.Error(t, err).Required()
	gt.Bool(t, errors.Is(err, context.Canceled)).True()

	// Cancellation keeps already-applied mutations in place.
	rec, err := b.Get(ctx, "s1")
	gt.NoError(t, err).Required()
	gt.Value(t, rec.ID).Equal(types.RecordID("s1"))
	gt.Array(t, session.History()).Length(2)
}
