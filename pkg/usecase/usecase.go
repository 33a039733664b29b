package usecase

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/interfaces"
	"github.com/easel-labs/easel/pkg/domain/model/config"
	"github.com/easel-labs/easel/pkg/domain/types"
)

// UseCases wires the document store, the backend generator and the session
// registry together.
type UseCases struct {
	store     interfaces.DocumentStore
	generator interfaces.Generator
	palette   *config.Palette

	mu       sync.RWMutex
	sessions map[types.SessionID]*Session
}

// Option configures UseCases
type Option func(*UseCases)

// WithGenerator sets the model backend client
func WithGenerator(gen interfaces.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = gen
	}
}

// WithPalette sets the shape palette
func WithPalette(palette *config.Palette) Option {
	return func(uc *UseCases) {
		uc.palette = palette
	}
}

// New creates the use case layer
func New(store interfaces.DocumentStore, opts ...Option) *UseCases {
	uc := &UseCases{
		store:    store,
		sessions: make(map[types.SessionID]*Session),
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.palette == nil {
		uc.palette = config.DefaultPalette()
	}
	return uc
}

// Store returns the document store
func (uc *UseCases) Store() interfaces.DocumentStore {
	return uc.store
}

// Generator returns the model backend client
func (uc *UseCases) Generator() interfaces.Generator {
	return uc.generator
}

// CreateSession registers a fresh chat session. Starting a new session is the
// only way history items are destroyed; earlier sessions simply become
// unreachable.
func (uc *UseCases) CreateSession() *Session {
	s := NewSession(uc.store, uc.palette)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sessions[s.ID()] = s
	return s
}

// Session retrieves a session by ID
func (uc *UseCases) Session(id types.SessionID) (*Session, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	s, exists := uc.sessions[id]
	if !exists {
		return nil, goerr.Wrap(ErrSessionNotFound, "session not found", goerr.V(SessionIDKey, id))
	}
	return s, nil
}
