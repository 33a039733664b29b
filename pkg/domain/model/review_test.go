package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/types"
)

func actionItem(kind types.ActionKind, complete bool, acceptance types.Acceptance) *model.ChatHistoryItem {
	item := model.NewActionItem(&model.Action{Kind: kind, Complete: complete}, time.Now())
	item.Acceptance = acceptance
	return item
}

func TestBuildReviewGroups(t *testing.T) {
	t.Run("prompts and continuations are skipped", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			model.NewPromptItem(&model.Prompt{Message: "draw a house", Timestamp: time.Now()}),
			actionItem(types.ActionThink, true, types.AcceptancePending),
			model.NewContinuationItem(time.Now()),
			actionItem(types.ActionThink, true, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(1).Required()
		gt.Array(t, groups[0].Items).Length(2)
	})

	t.Run("mutating and non-mutating runs split", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionMessage, true, types.AcceptancePending),
			actionItem(types.ActionCreate, true, types.AcceptancePending),
			actionItem(types.ActionMove, true, types.AcceptancePending),
			actionItem(types.ActionMessage, true, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(4).Required()

		gt.Bool(t, groups[0].WithCanvasChanges).False()
		gt.Array(t, groups[0].Items).Length(1)
		gt.Bool(t, groups[1].WithCanvasChanges).False()
		gt.Array(t, groups[1].Items).Length(1)
		gt.Bool(t, groups[2].WithCanvasChanges).True()
		gt.Array(t, groups[2].Items).Length(2)
		gt.Bool(t, groups[3].WithCanvasChanges).False()
	})

	t.Run("message closes a think run", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionMessage, true, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(2).Required()
		gt.Array(t, groups[0].Items).Length(4)
		gt.Array(t, groups[1].Items).Length(1)
		gt.Value(t, groups[1].Items[0].Action.Kind).Equal(types.ActionMessage)
	})

	t.Run("streaming think joins the open think run", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			actionItem(types.ActionThink, true, types.AcceptancePending),
			actionItem(types.ActionThink, false, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(1).Required()
		gt.Array(t, groups[0].Items).Length(2)
	})

	t.Run("incomplete non-think action opens its own group", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			actionItem(types.ActionCreate, true, types.AcceptancePending),
			actionItem(types.ActionCreate, false, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(2)
	})

	t.Run("acceptance mismatch splits the run", func(t *testing.T) {
		items := []*model.ChatHistoryItem{
			actionItem(types.ActionCreate, true, types.AcceptanceAccepted),
			actionItem(types.ActionMove, true, types.AcceptancePending),
		}

		groups := model.BuildReviewGroups(items)
		gt.Array(t, groups).Length(2)
	})

	t.Run("empty history yields no groups", func(t *testing.T) {
		gt.Array(t, model.BuildReviewGroups(nil)).Length(0)
	})
}

func TestReviewGroupAcceptance(t *testing.T) {
	t.Run("uniform members report their state", func(t *testing.T) {
		g := &model.ReviewGroup{Items: []*model.ChatHistoryItem{
			actionItem(types.ActionCreate, true, types.AcceptanceAccepted),
			actionItem(types.ActionMove, true, types.AcceptanceAccepted),
		}}
		gt.Value(t, g.Acceptance()).Equal(types.AcceptanceAccepted)
	})

	t.Run("disagreeing members report pending", func(t *testing.T) {
		g := &model.ReviewGroup{Items: []*model.ChatHistoryItem{
			actionItem(types.ActionCreate, true, types.AcceptanceAccepted),
			actionItem(types.ActionMove, true, types.AcceptanceRejected),
		}}
		gt.Value(t, g.Acceptance()).Equal(types.AcceptancePending)
	})

	t.Run("empty group reports pending", func(t *testing.T) {
		g := &model.ReviewGroup{}
		gt.Value(t, g.Acceptance()).Equal(types.AcceptancePending)
	})
}
