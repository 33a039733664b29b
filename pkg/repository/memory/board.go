package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// ErrNotFound indicates that the requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Board is an in-memory document store. Records are deep-copied on the way in
// and out so callers can never alias internal state.
type Board struct {
	mu      sync.RWMutex
	records map[types.RecordID]*board.Record
}

var _ interfaces.DocumentStore = &Board{}

// New creates an empty in-memory board
func New() *Board {
	return &Board{
		records: make(map[types.RecordID]*board.Record),
	}
}

func (b *Board) Get(ctx context.Context, id types.RecordID) (*board.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, exists := b.records[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("id", id))
	}
	return rec.Clone(), nil
}

func (b *Board) List(ctx context.Context) ([]*board.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]*board.Record, 0, len(b.records))
	for _, rec := range b.records {
		records = append(records, rec.Clone())
	}
	return records, nil
}

// Extract runs fn inside a transaction and returns the forward diff of
// exactly the records fn touched. An error from fn discards every staged
// write.
func (b *Board) Extract(ctx context.Context, fn func(tx interfaces.BoardTx) error) (*board.Diff, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx := newBoardTx(b.records)
	if err := fn(tx); err != nil {
		return nil, err
	}

	diff := board.NewDiff()
	for id, after := range tx.staged {
		before := b.records[id]
		switch {
		case before == nil && after != nil:
			diff.Added[id] = after.Clone()
			b.records[id] = after
		case before != nil && after == nil:
			diff.Removed[id] = before.Clone()
			delete(b.records, id)
		case before != nil && after != nil:
			diff.Updated[id] = board.Change{
				Before: before.Clone(),
				After:  after.Clone(),
			}
			b.records[id] = after
		}
	}

	return diff, nil
}

// Apply applies a change-set to the store. Removals of absent records and
// re-additions of present ones overwrite silently: the review controller may
// replay diffs over a board that later actions have moved on.
func (b *Board) Apply(ctx context.Context, diff *board.Diff) error {
	if diff.IsEmpty() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range diff.Removed {
		delete(b.records, id)
	}
	for id, rec := range diff.Added {
		b.records[id] = rec.Clone()
	}
	for id, ch := range diff.Updated {
		b.records[id] = ch.After.Clone()
	}
	return nil
}

// boardTx stages writes against a base snapshot. Reads see staged writes
// first; the base map is never touched until commit.
type boardTx struct {
	base   map[types.RecordID]*board.Record
	staged map[types.RecordID]*board.Record // nil value = staged delete
}

var _ interfaces.BoardTx = &boardTx{}

func newBoardTx(base map[types.RecordID]*board.Record) *boardTx {
	return &boardTx{
		base:   base,
		staged: make(map[types.RecordID]*board.Record),
	}
}

func (tx *boardTx) Get(id types.RecordID) (*board.Record, bool) {
	if rec, touched := tx.staged[id]; touched {
		if rec == nil {
			return nil, false
		}
		return rec.Clone(), true
	}
	if rec, exists := tx.base[id]; exists {
		return rec.Clone(), true
	}
	return nil, false
}

func (tx *boardTx) Put(rec *board.Record) {
	tx.staged[rec.ID] = rec.Clone()
}

func (tx *boardTx) Delete(id types.RecordID) {
	tx.staged[id] = nil
}

func (tx *boardTx) List() []*board.Record {
	records := make([]*board.Record, 0, len(tx.base)+len(tx.staged))
	for id, rec := range tx.base {
		if staged, touched := tx.staged[id]; touched {
			if staged != nil {
				records = append(records, staged.Clone())
			}
			continue
		}
		records = append(records, rec.Clone())
	}
	for id, rec := range tx.staged {
		if _, inBase := tx.base[id]; !inBase && rec != nil {
			records = append(records, rec.Clone())
		}
	}
	return records
}
