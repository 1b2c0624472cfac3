package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
)

const (
	sessionPrefix       = "session:"
	sessionTokenPrefix  = "idx:sessions:token:"
	sessionByUserPrefix = "idx:sessions:user:"
)

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

func sessionTokenKey(tokenHash string) []byte {
	return []byte(sessionTokenPrefix + tokenHash)
}

func sessionByUserKey(userID, sessionID string) []byte {
	return []byte(sessionByUserPrefix + userID + ":" + sessionID)
}

// CreateSession stores a session and indexes it by refresh token hash and
// by user.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	session.CreateAt = nowMillis()
	session.LastSeenAt = session.CreateAt

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey(session.ID), data); err != nil {
			return err
		}
		if err := txn.Set(sessionTokenKey(session.RefreshTokenHash), []byte(session.ID)); err != nil {
			return err
		}
		return txn.Set(sessionByUserKey(session.UserID, session.ID), nil)
	})
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// GetSession returns a session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &session, nil
}

// GetSessionByRefreshToken returns the session holding the given refresh
// token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionTokenKey(tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("looking up session by token: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// RotateSessionToken swaps a session's refresh token hash and bumps
// LastSeenAt, moving the token index in the same transaction.
func (s *Store) RotateSessionToken(ctx context.Context, sessionID, newTokenHash string, expiresAt int64) (*domain.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	oldHash := session.RefreshTokenHash
	session.RefreshTokenHash = newTokenHash
	session.ExpiresAt = expiresAt
	session.LastSeenAt = nowMillis()

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshaling session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionTokenKey(oldHash)); err != nil {
			return err
		}
		if err := txn.Set(sessionTokenKey(newTokenHash), []byte(session.ID)); err != nil {
			return err
		}
		return txn.Set(sessionKey(session.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("rotating session token: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session and its indexes.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(sessionTokenKey(session.RefreshTokenHash)); err != nil {
			return err
		}
		return txn.Delete(sessionByUserKey(session.UserID, id))
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes every session belonging to a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) error {
	var ids []string
	prefix := []byte(sessionByUserPrefix + userID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	return nil
}
