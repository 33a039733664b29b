package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// Accept marks the history item at index as accepted. A rejected item's
// forward diff is re-applied to the board first; a pending item only flips
// the flag, since actions execute optimistically at arrival time.
func (s *Session) Accept(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.actionItem(index)
	if err != nil {
		return err
	}
	return s.acceptItem(ctx, item)
}

// Reject marks the history item at index as rejected, undoing its captured
// diff on the board.
func (s *Session) Reject(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.actionItem(index)
	if err != nil {
		return err
	}
	return s.rejectItem(ctx, item)
}

// AcceptGroup accepts every item of the review group at index, in their
// original order.
func (s *Session) AcceptGroup(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.group(index)
	if err != nil {
		return err
	}
	for _, item := range group.Items {
		if err := s.acceptItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// RejectGroup rejects every item of the review group at index, in their
// original order.
func (s *Session) RejectGroup(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.group(index)
	if err != nil {
		return err
	}
	for _, item := range group.Items {
		if err := s.rejectItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// acceptItem and rejectItem replay captured diffs; they never re-execute an
// action. Toggling accept/reject any number of times therefore converges to
// the same board state, as long as no later action touched the same records.
func (s *Session) acceptItem(ctx context.Context, item *model.ChatHistoryItem) error {
	if item.Acceptance == types.AcceptanceRejected && item.Diff != nil {
		if err := s.store.Apply(ctx, item.Diff); err != nil {
			return goerr.Wrap(err, "failed to re-apply diff")
		}
	}
	item.Acceptance = types.AcceptanceAccepted
	return nil
}

func (s *Session) rejectItem(ctx context.Context, item *model.ChatHistoryItem) error {
	if item.Acceptance != types.AcceptanceRejected && item.Diff != nil {
		if err := s.store.Apply(ctx, item.Diff.Invert()); err != nil {
			return goerr.Wrap(err, "failed to apply inverse diff")
		}
	}
	item.Acceptance = types.AcceptanceRejected
	return nil
}

// actionItem resolves a history index to an action item. Callers hold s.mu.
func (s *Session) actionItem(index int) (*model.ChatHistoryItem, error) {
	if index < 0 || index >= len(s.history) {
		return nil, goerr.Wrap(ErrItemNotFound, "history index out of range",
			goerr.V(ItemIndexKey, index))
	}
	item := s.history[index]
	if !item.IsAction() {
		return nil, goerr.Wrap(ErrNotActionItem, "only action items are reviewable",
			goerr.V(ItemIndexKey, index))
	}
	return item, nil
}

// group resolves a group index against the current grouping. Callers hold
// s.mu.
func (s *Session) group(index int) (*model.ReviewGroup, error) {
	groups := model.BuildReviewGroups(s.history)
	if index < 0 || index >= len(groups) {
		return nil, goerr.Wrap(ErrGroupNotFound, "group index out of range",
			goerr.V(GroupIndexKey, index))
	}
	return groups[index], nil
}
