package interfaces

import (
	"context"

	"github.com/easel-labs/easel/pkg/domain/model/board"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// BoardTx is the mutable view of the board inside a change-extracting
// transaction. Reads see the uncommitted writes of the same transaction.
type BoardTx interface {
	// Get retrieves a record by ID
	Get(id types.RecordID) (*board.Record, bool)

	// Put inserts or replaces a record
	Put(rec *board.Record)

	// Delete removes a record by ID
	Delete(id types.RecordID)

	// List retrieves all records
	List() []*board.Record
}

// DocumentStore is the boundary to the canvas scene graph. The pipeline is
// its only mutator during an active generation; captured diffs are the only
// way mutations are reversed.
type DocumentStore interface {
	// Get retrieves a record by ID
	Get(ctx context.Context, id types.RecordID) (*board.Record, error)

	// List retrieves all records
	List(ctx context.Context) ([]*board.Record, error)

	// Extract runs fn inside a transaction and returns the forward diff of
	// exactly the records fn changed. When fn returns an error nothing is
	// committed and no diff is returned.
	Extract(ctx context.Context, fn func(tx BoardTx) error) (*board.Diff, error)

	// Apply applies a change-set (forward or inverted) to the store
	Apply(ctx context.Context, diff *board.Diff) error
}
