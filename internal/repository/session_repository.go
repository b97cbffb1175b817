package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

const (
	sessionKeyPrefix    = "enrollment:session:"
	submitLockKeySuffix = ":submitting"
)

type keyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	SetIfPresent(ctx context.Context, key string, value interface{}, ttl time.Duration, guards ...string) (bool, error)
}

// SessionRepository keeps enrollment sessions in Redis until they are submitted, closed or expire.
type SessionRepository struct {
	store keyValueStore
}

// NewSessionRepository constructs the repository on top of a key value store.
func NewSessionRepository(store keyValueStore) *SessionRepository {
	return &SessionRepository{store: store}
}

// Get loads a session. Missing or expired sessions return ErrCacheMiss.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.EnrollmentSession, error) {
	var session models.EnrollmentSession
	if err := r.store.Get(ctx, sessionKey(id), &session); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("load enrollment session %s: %w", id, err)
	}
	return &session, nil
}

// Save writes the session, keeping it alive until its ExpiresAt.
func (r *SessionRepository) Save(ctx context.Context, session *models.EnrollmentSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return appErrors.ErrSessionExpired
	}
	return r.store.Set(ctx, sessionKey(session.ID), session, ttl)
}

// Update rewrites an existing session. It reports false without writing when the session is gone
// or a submission holds it, so a late edit cannot bring back a submitted session.
func (r *SessionRepository) Update(ctx context.Context, session *models.EnrollmentSession) (bool, error) {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return false, appErrors.ErrSessionExpired
	}
	ok, err := r.store.SetIfPresent(ctx, sessionKey(session.ID), session, ttl, submitLockKey(session.ID))
	if err != nil {
		return false, fmt.Errorf("update enrollment session %s: %w", session.ID, err)
	}
	return ok, nil
}

// Delete removes the session and any submit lock it holds.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, sessionKey(id), submitLockKey(id))
}

// LockSubmission marks the session as submitting. It reports false when a submission is already in flight.
func (r *SessionRepository) LockSubmission(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return r.store.Acquire(ctx, submitLockKey(id), ttl)
}

// UnlockSubmission clears the submitting mark.
func (r *SessionRepository) UnlockSubmission(ctx context.Context, id string) error {
	return r.store.Delete(ctx, submitLockKey(id))
}

// IsSubmitting reports whether a submission is in flight for the session.
func (r *SessionRepository) IsSubmitting(ctx context.Context, id string) (bool, error) {
	return r.store.Exists(ctx, submitLockKey(id))
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func submitLockKey(id string) string {
	return sessionKeyPrefix + id + submitLockKeySuffix
}
