package interfaces

import (
	"context"

	"github.com/easel-labs/easel/pkg/domain/model"
)

// ActionStream is a pull-based sequence of decoded agent actions. Next
// returns io.EOF after the terminal frame of the stream.
type ActionStream interface {
	// Next returns the next decoded action
	Next(ctx context.Context) (*model.Action, error)

	// Close releases the underlying transport
	Close() error
}

// Generator starts a generation stream against the model backend.
type Generator interface {
	Generate(ctx context.Context, req *model.GenerateRequest) (ActionStream, error)
}
