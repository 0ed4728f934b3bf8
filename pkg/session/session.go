// Package session bundles the per-document rendering context.
//
// A [Session] replaces process-wide state: it carries the collection
// configuration, the visual configuration and the text measurers used by a
// layout pass. Sessions are read-only while a pass runs. Changing the
// configuration means deriving a new session with [Session.WithConfig] or
// [Session.WithCollection]; passes already holding the old session keep it.
//
// # Storage
//
// The server keeps named sessions in a [Store]:
//   - [MemoryStore]: in-memory, guarded by a mutex
//   - [FileStore]: JSON files in a directory, for the CLI and restarts
//
// Only the collection, the configuration and the font kind are persisted;
// measurers are rebuilt from the font kind when a session is loaded.
//
// # Usage
//
//	sess, err := session.New(coll, cfg, fonts.KindGo)
//	if err != nil {
//	    return err
//	}
//	store.Put(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // not found
//	}
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/config"
	"github.com/matzehuels/spantower/pkg/fonts"
)

// ErrInvalidID is returned when a session id cannot be used as a storage key.
var ErrInvalidID = errors.New("invalid session id")

// Session is the immutable context of a layout pass.
type Session struct {
	ID         string                 `json:"id"`
	Collection *collection.Collection `json:"collection"`
	Config     config.Config          `json:"config"`
	Font       string                 `json:"font"`
	CreatedAt  time.Time              `json:"created_at"`

	// Fonts is rebuilt from Font and never serialized.
	Fonts fonts.Set `json:"-"`
}

// New creates a session. A nil collection selects [collection.Default];
// font is a kind accepted by [fonts.NewSet].
func New(coll *collection.Collection, cfg config.Config, font string) (*Session, error) {
	s := &Session{
		ID:         uuid.NewString(),
		Collection: coll,
		Config:     cfg,
		Font:       font,
		CreatedAt:  time.Now(),
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns a session with the default collection and configuration
// measured with fixed-width fonts. It cannot fail.
func Default() *Session {
	return &Session{
		ID:         uuid.NewString(),
		Collection: collection.Default(),
		Config:     config.Default(),
		Font:       fonts.KindFixed,
		CreatedAt:  time.Now(),
		Fonts:      fonts.FixedSet(),
	}
}

// init validates the parts and opens the measurers.
func (s *Session) init() error {
	if s.Collection == nil {
		s.Collection = collection.Default()
	}
	if err := s.Collection.Validate(); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	set, err := fonts.NewSet(s.Font)
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	s.Fonts = set
	return nil
}

// WithConfig returns a copy of the session using cfg.
func (s *Session) WithConfig(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	next := *s
	next.Config = cfg
	return &next, nil
}

// WithCollection returns a copy of the session using coll.
func (s *Session) WithCollection(coll *collection.Collection) (*Session, error) {
	if coll == nil {
		coll = collection.Default()
	}
	if err := coll.Validate(); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	next := *s
	next.Collection = coll
	return &next, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores a session under its ID, replacing any previous one.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
