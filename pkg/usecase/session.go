package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/model/config"
	"github.com/easel-labs/easel/pkg/domain/types"
	"github.com/easel-labs/easel/pkg/utils/logging"
	"github.com/easel-labs/easel/pkg/utils/safe"
)

// UpdateFunc is called after every ingested frame with a copy of the history
// item it created or refined. Callers use it to relay live updates; it runs
// on the stream loop, so it must not block on the session itself.
type UpdateFunc func(item *model.ChatHistoryItem)

// Session is one chat session: the ordered history of prompts and actions,
// the dedup index guaranteeing exactly-once execution, and at most one
// in-flight generation stream.
type Session struct {
	id       types.SessionID
	store    interfaces.DocumentStore
	executor *Executor

	mu      sync.Mutex
	history []*model.ChatHistoryItem
	// executed indexes history items by dedup key; one lookup answers both
	// "have we executed this logical action" and "which item holds its diff".
	executed map[string]*model.ChatHistoryItem
	cancel   context.CancelFunc
}

// NewSession creates an empty session against the given store
func NewSession(store interfaces.DocumentStore, palette *config.Palette) *Session {
	return &Session{
		id:       types.NewSessionID(),
		store:    store,
		executor: NewExecutor(store, palette),
		executed: make(map[string]*model.ChatHistoryItem),
	}
}

// ID returns the session identifier
func (s *Session) ID() types.SessionID {
	return s.id
}

// Run drives one generation: it starts a stream for the request, folds every
// decoded frame into the history and executes mutating actions as they
// complete. It returns when the stream terminates; transport and protocol
// errors are returned as-is with the history left in place. A concurrent Run
// on the same session first cancels the in-flight stream.
func (s *Session) Run(ctx context.Context, gen interfaces.Generator, req *model.GenerateRequest, onUpdate UpdateFunc) error {
	if err := req.Validate(); err != nil {
		return goerr.Wrap(err, "invalid generate request")
	}

	runCtx, cancel := s.begin(ctx, req)
	defer s.end(cancel)

	stream, err := gen.Generate(runCtx, req)
	if err != nil {
		return goerr.Wrap(err, "failed to start generation stream")
	}
	defer safe.Close(ctx, stream)

	for {
		action, err := stream.Next(runCtx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Transport or protocol failure: stop the loop, keep whatever
			// already executed on the board.
			return goerr.Wrap(err, "generation stream failed")
		}

		item := s.ingest(runCtx, action)
		if onUpdate != nil {
			onUpdate(item)
		}
	}
}

// begin cancels any in-flight generation, opens a fresh run context and
// appends the prompt item.
func (s *Session) begin(ctx context.Context, req *model.GenerateRequest) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.history = append(s.history, model.NewPromptItem(req.Prompt(time.Now())))
	return runCtx, cancel
}

func (s *Session) end(cancel context.CancelFunc) {
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil
}

// Cancel aborts the in-flight generation, if any. Already-applied mutations
// stay on the board; the user rejects unwanted partial results explicitly.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// ingest folds one decoded frame into the history and, when the frame
// completes a mutating action, executes it exactly once. It returns a copy
// of the affected item so the caller can relay it outside the lock.
func (s *Session) ingest(ctx context.Context, action *model.Action) *model.ChatHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.coalesce(action)

	if action.Complete && action.IsMutating() {
		key := item.DedupKey()
		if _, done := s.executed[key]; !done {
			// Mark before executing: a failed execution is not retried.
			s.executed[key] = item

			diff, err := s.executor.Execute(ctx, action)
			if err != nil {
				// Recovered locally: the item stays diff-less and is
				// effectively non-reversible, the stream moves on.
				logging.From(ctx).Warn("action execution failed",
					"kind", action.Kind.String(),
					"key", key,
					"error", err.Error(),
				)
			} else {
				item.Diff = diff
			}
		}
	}

	return item.Clone()
}

// coalesce refines the trailing history item in place when the new frame
// belongs to the same still-streaming action; otherwise it appends a new
// item. A think action's growing text therefore stays a single entry.
func (s *Session) coalesce(action *model.Action) *model.ChatHistoryItem {
	if n := len(s.history); n > 0 {
		tail := s.history[n-1]
		if tail.IsAction() && !tail.Action.Complete && tail.Action.Kind == action.Kind {
			tail.Action = action
			return tail
		}
	}

	item := model.NewActionItem(action, time.Now())
	s.history = append(s.history, item)
	return item
}

// History returns a deep-copied snapshot of the history. The stream loop and
// the review controller mutate the live items under the session lock, so
// callers get copies they can read and marshal without holding it.
func (s *Session) History() []*model.ChatHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Groups recomputes the review groups over a snapshot of the current history
func (s *Session) Groups() []*model.ReviewGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.BuildReviewGroups(s.snapshotLocked())
}

func (s *Session) snapshotLocked() []*model.ChatHistoryItem {
	items := make([]*model.ChatHistoryItem, len(s.history))
	for i, item := range s.history {
		items[i] = item.Clone()
	}
	return items
}
