// Package session persists the authenticated session of the catalog
// backend (token, username, expiry) across process restarts. The store
// holds at most one session; clearing a value removes the underlying
// key entirely.
package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"catalogadmin/internal/util"
)

// Keys are namespaced so a shared backend never collides with
// unrelated persisted state.
const (
	keyToken  = "catalogadmin.token"
	keyUser   = "catalogadmin.user"
	keyExpiry = "catalogadmin.expiry"
	keySalt   = "catalogadmin.salt"
)

// kv is the raw backend contract. Absent keys report ok=false; set of
// an existing key overwrites.
type kv interface {
	get(ctx context.Context, key string) (string, bool, error)
	set(ctx context.Context, key, value string) error
	del(ctx context.Context, key string) error
	ping(ctx context.Context) error
}

// Store normalizes session values over any kv backend. When secret is
// non-empty the token is encrypted at rest with a key derived from it.
type Store struct {
	kv     kv
	secret string
}

func newStore(backend kv, secret string) *Store {
	return &Store{kv: backend, secret: strings.TrimSpace(secret)}
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.kv.del(ctx, keyToken)
	}
	if s.secret == "" {
		return s.kv.set(ctx, keyToken, token)
	}
	key, err := s.encryptionKey(ctx)
	if err != nil {
		return err
	}
	enc, err := util.EncryptString(key, token)
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	return s.kv.set(ctx, keyToken, enc)
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, ok, err := s.kv.get(ctx, keyToken)
	if err != nil || !ok {
		return "", err
	}
	if s.secret == "" {
		return v, nil
	}
	key, err := s.encryptionKey(ctx)
	if err != nil {
		return "", err
	}
	plain, err := util.DecryptString(key, v)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return plain, nil
}

func (s *Store) SetUser(ctx context.Context, username string) error {
	if username == "" {
		return s.kv.del(ctx, keyUser)
	}
	return s.kv.set(ctx, keyUser, username)
}

func (s *Store) User(ctx context.Context) (string, error) {
	v, _, err := s.kv.get(ctx, keyUser)
	return v, err
}

func (s *Store) SetExpiry(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		return s.kv.del(ctx, keyExpiry)
	}
	return s.kv.set(ctx, keyExpiry, at.UTC().Format(time.RFC3339))
}

// Expiry returns the stored expiry normalized to a time.Time; the zero
// time means no expiry is stored. Date-only values written by older
// revisions are accepted.
func (s *Store) Expiry(ctx context.Context) (time.Time, error) {
	v, ok, err := s.kv.get(ctx, keyExpiry)
	if err != nil || !ok {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored expiry %q: %w", v, err)
	}
	return t, nil
}

// Clear removes the whole session. The encryption salt stays so a
// later login can reuse it.
func (s *Store) Clear(ctx context.Context) error {
	for _, k := range []string{keyToken, keyUser, keyExpiry} {
		if err := s.kv.del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.kv.ping(ctx)
}

func (s *Store) encryptionKey(ctx context.Context) ([]byte, error) {
	raw, ok, err := s.kv.get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	if ok {
		salt, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored salt: %w", err)
		}
		return util.DeriveKey(s.secret, salt), nil
	}
	salt, err := util.NewSalt()
	if err != nil {
		return nil, err
	}
	if err := s.kv.set(ctx, keySalt, base64.RawURLEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return util.DeriveKey(s.secret, salt), nil
}
