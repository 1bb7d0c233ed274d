package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/groceryapp/groceryclient/internal/client/models"
	"github.com/groceryapp/groceryclient/internal/cryptox"
	"github.com/groceryapp/groceryclient/internal/dbx"
)

const (
	keySession = "session"
	keyNonce   = "session_nonce"
)

// SQLiteStore keeps the session in a metadata key-value table.
type SQLiteStore struct {
	db  *sql.DB
	key []byte
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithSealingKey enables at-rest sealing of the session record with the
// given AES key (16, 24, or 32 bytes). Without it the record is stored as
// plain JSON.
func WithSealingKey(key []byte) Option {
	return func(s *SQLiteStore) {
		s.key = key
	}
}

// NewSQLiteStore builds a Store on top of an opened database.
// The schema is expected to be migrated already (see Open).
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLiteStore) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// load reads and, if sealing is enabled, opens the stored session.
// Returns ErrNoSession when nothing usable is stored.
func (s *SQLiteStore) load(ctx context.Context) (*models.Session, error) {
	raw, err := s.get(ctx, s.db, keySession)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNoSession
	}

	var sess models.Session
	if s.key != nil {
		nonce, err := s.get(ctx, s.db, keyNonce)
		if err != nil {
			return nil, err
		}
		if nonce == nil {
			return nil, ErrNoSession
		}
		if err := cryptox.OpenJSON(raw, nonce, s.key, &sess); err != nil {
			return nil, fmt.Errorf("failed to open session record: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to decode session record: %w", err)
		}
	}

	if sess.Token == "" || sess.UserID == uuid.Nil {
		return nil, ErrNoSession
	}
	if expired(sess.Token, s.now()) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// expired peeks at the token's JWT expiry claim without verifying the
// signature; the server remains the authority. Opaque (non-JWT) tokens and
// tokens without an exp claim never expire client-side.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Token implements Store.
func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	sess, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// UserID implements Store.
func (s *SQLiteStore) UserID(ctx context.Context) (uuid.UUID, error) {
	sess, err := s.load(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return sess.UserID, nil
}

// Save implements Store. The record and its nonce are written in a single
// transaction so a crash cannot leave a half-written session behind.
func (s *SQLiteStore) Save(ctx context.Context, token string, userID uuid.UUID) error {
	sess := models.Session{Token: token, UserID: userID}

	var value, nonce []byte
	var err error
	if s.key != nil {
		value, nonce, err = cryptox.SealJSON(sess, s.key)
		if err != nil {
			return fmt.Errorf("failed to seal session: %w", err)
		}
	} else {
		value, err = json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.set(ctx, tx, keySession, value); err != nil {
			return err
		}
		if nonce != nil {
			return s.set(ctx, tx, keyNonce, nonce)
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, keyNonce)
		return err
	})
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?)`, keySession, keyNonce)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
