package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/domain/types"
	"github.com/easel-labs/easel/pkg/usecase"
	"github.com/easel-labs/easel/pkg/utils/errutil"
	"github.com/easel-labs/easel/pkg/utils/logging"
	"github.com/easel-labs/easel/pkg/utils/safe"
)

// historyItemView augments an item with whether its diff can be replayed
type historyItemView struct {
	*model.ChatHistoryItem
	Reversible bool `json:"reversible"`
}

// reviewGroupView references member items by their history index
type reviewGroupView struct {
	ItemIndexes       []int            `json:"itemIndexes"`
	WithCanvasChanges bool             `json:"withCanvasChanges"`
	Acceptance        types.Acceptance `json:"acceptance"`
}

func newItemView(item *model.ChatHistoryItem) historyItemView {
	return historyItemView{
		ChatHistoryItem: item,
		Reversible:      item.Diff != nil,
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session := s.uc.CreateSession()
	writeJSON(r.Context(), w, http.StatusCreated, map[string]string{
		"id": session.ID().String(),
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	items := session.History()
	// Grouping the same snapshot keeps the pointer-based index map valid.
	groups := model.BuildReviewGroups(items)

	indexOf := make(map[*model.ChatHistoryItem]int, len(items))
	itemViews := make([]historyItemView, len(items))
	for i, item := range items {
		indexOf[item] = i
		itemViews[i] = newItemView(item)
	}

	groupViews := make([]reviewGroupView, len(groups))
	for i, g := range groups {
		view := reviewGroupView{
			WithCanvasChanges: g.WithCanvasChanges,
			Acceptance:        g.Acceptance(),
			ItemIndexes:       make([]int, 0, len(g.Items)),
		}
		for _, item := range g.Items {
			view.ItemIndexes = append(view.ItemIndexes, indexOf[item])
		}
		groupViews[i] = view
	}

	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"items":  itemViews,
		"groups": groupViews,
	})
}

// postPrompt starts a generation and relays every history update to the
// caller as an SSE stream, mirroring the backend wire shape.
func (s *Server) postPrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	onUpdate := func(item *model.ChatHistoryItem) {
		payload, err := json.Marshal(newItemView(item))
		if err != nil {
			logging.From(ctx).Error("failed to marshal history update", "error", err.Error())
			return
		}
		safe.Write(ctx, w, []byte(fmt.Sprintf("data: %s\n\n", payload)))
		if canFlush {
			flusher.Flush()
		}
	}

	if err := session.Run(ctx, s.uc.Generator(), &req, onUpdate); err != nil {
		// Headers are already out; surface the failure as an in-stream
		// error sentinel.
		_ = errutil.Handle(ctx, err, "generation failed")
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		safe.Write(ctx, w, []byte(fmt.Sprintf("data: %s\n\n", payload)))
		if canFlush {
			flusher.Flush()
		}
		return
	}

	safe.Write(ctx, w, []byte("data: [DONE]\n\n"))
	if canFlush {
		flusher.Flush()
	}
}

func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	session.Cancel()
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) acceptItem(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, func(session *usecase.Session, index int) error {
		return session.Accept(r.Context(), index)
	})
}

func (s *Server) rejectItem(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, func(session *usecase.Session, index int) error {
		return session.Reject(r.Context(), index)
	})
}

func (s *Server) acceptGroup(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, func(session *usecase.Session, index int) error {
		return session.AcceptGroup(r.Context(), index)
	})
}

func (s *Server) rejectGroup(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, func(session *usecase.Session, index int) error {
		return session.RejectGroup(r.Context(), index)
	})
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.Store().List(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"records": records})
}

// review runs one accept/reject operation with shared index parsing and
// error mapping.
func (s *Server) review(w http.ResponseWriter, r *http.Request, fn func(session *usecase.Session, index int) error) {
	ctx := r.Context()

	session, ok := s.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid index"), http.StatusBadRequest)
		return
	}

	if err := fn(session, index); err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	id := types.SessionID(chi.URLParam(r, "sessionID"))
	session, err := s.uc.Session(id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrItemNotFound),
		errors.Is(err, usecase.ErrGroupNotFound),
		errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotActionItem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("failed to encode response", "error", err.Error())
	}
}
