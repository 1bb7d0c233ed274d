// Package session persists the authenticated identity (token + user id)
// across process restarts.
//
// The backing store is a SQLite key-value table: one record holding the
// serialized session, written atomically so the token and the user id are
// never persisted separately.
// Optionally the record is sealed at rest with AES-GCM (see WithSealingKey).
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoSession reports that no (valid) session is stored: the user has never
// signed in, has signed out, or the stored token has expired.
var ErrNoSession = errors.New("no active session")

// Store is the session persistence contract consumed by the synchronizer.
type Store interface {
	// Token returns the auth token of the current session.
	Token(ctx context.Context) (string, error)
	// UserID returns the user id of the current session.
	UserID(ctx context.Context) (uuid.UUID, error)
	// Save persists token and user id together; both are written or neither.
	Save(ctx context.Context, token string, userID uuid.UUID) error
	// Clear destroys the stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
