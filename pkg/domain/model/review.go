package model

import (
	"github.com/easel-labs/easel/pkg/domain/types"
)

// ReviewGroup is a contiguous run of action items presented to the user as
// one accept/reject unit. Groups are a derived, non-owning view: they are
// recomputed on every history change and never persisted.
type ReviewGroup struct {
	Items             []*ChatHistoryItem `json:"items"`
	WithCanvasChanges bool               `json:"withCanvasChanges"`
}

// Acceptance returns the common acceptance state of the group's items, or
// pending when the members disagree.
func (g *ReviewGroup) Acceptance() types.Acceptance {
	if len(g.Items) == 0 {
		return types.AcceptancePending
	}
	first := g.Items[0].Acceptance
	for _, it := range g.Items[1:] {
		if it.Acceptance != first {
			return types.AcceptancePending
		}
	}
	return first
}

// BuildReviewGroups partitions the action items of a history into contiguous
// review groups. Prompts and continuation markers are rendered separately and
// skipped here. A mutating item joins the open group when it is complete,
// shares the group's canvas-change flag and matches the acceptance of every
// member. Non-mutating items cohere only through the think rule: consecutive
// think items always merge, every other text item stands alone.
func BuildReviewGroups(items []*ChatHistoryItem) []*ReviewGroup {
	var groups []*ReviewGroup

	for _, it := range items {
		if !it.IsAction() {
			continue
		}

		hasChanges := it.HasCanvasChanges()
		if len(groups) > 0 {
			last := groups[len(groups)-1]
			if joinsGroup(last, it, hasChanges) {
				last.Items = append(last.Items, it)
				continue
			}
		}

		groups = append(groups, &ReviewGroup{
			Items:             []*ChatHistoryItem{it},
			WithCanvasChanges: hasChanges,
		})
	}

	return groups
}

func joinsGroup(g *ReviewGroup, it *ChatHistoryItem, hasChanges bool) bool {
	tail := g.Items[len(g.Items)-1]

	// Consecutive think items cohere even while the newest is streaming.
	if it.Action.Kind == types.ActionThink && tail.Action.Kind == types.ActionThink {
		return true
	}

	if !it.Action.Complete {
		return false
	}
	if hasChanges != g.WithCanvasChanges {
		return false
	}
	// A message after a think run closes the run; text items have no
	// cross-variant cohesion.
	if !hasChanges {
		return false
	}
	for _, member := range g.Items {
		if member.Acceptance != it.Acceptance {
			return false
		}
	}
	return true
}
