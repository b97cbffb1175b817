package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

type fakeKeyValueStore struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newFakeKeyValueStore() *fakeKeyValueStore {
	return &fakeKeyValueStore{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKeyValueStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeKeyValueStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeKeyValueStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = []byte(`"locked"`)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeKeyValueStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeKeyValueStore) SetIfPresent(ctx context.Context, key string, value interface{}, ttl time.Duration, guards ...string) (bool, error) {
	if _, ok := f.values[key]; !ok {
		return false, nil
	}
	for _, g := range guards {
		if _, ok := f.values[g]; ok {
			return false, nil
		}
	}
	return true, f.Set(ctx, key, value, ttl)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	store := newFakeKeyValueStore()
	repo := NewSessionRepository(store)
	ctx := context.Background()

	session := &models.EnrollmentSession{
		ID:        "sess-1",
		CourseID:  "course-1",
		StudentID: "stu-1",
		Selected:  []models.SelectedSlot{{DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"}},
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, repo.Save(ctx, session))
	assert.InDelta(t, (30 * time.Minute).Seconds(), store.ttls["enrollment:session:sess-1"].Seconds(), 5)

	loaded, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.Selected, loaded.Selected)

	require.NoError(t, repo.Delete(ctx, "sess-1"))
	_, err = repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestSessionRepositoryRejectsExpiredSave(t *testing.T) {
	repo := NewSessionRepository(newFakeKeyValueStore())
	err := repo.Save(context.Background(), &models.EnrollmentSession{ID: "sess-1", ExpiresAt: time.Now().Add(-time.Second)})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestSessionRepositorySubmitLock(t *testing.T) {
	store := newFakeKeyValueStore()
	repo := NewSessionRepository(store)
	ctx := context.Background()

	ok, err := repo.LockSubmission(ctx, "sess-1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.LockSubmission(ctx, "sess-1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	submitting, _ := repo.IsSubmitting(ctx, "sess-1")
	assert.True(t, submitting)

	require.NoError(t, repo.UnlockSubmission(ctx, "sess-1"))
	submitting, _ = repo.IsSubmitting(ctx, "sess-1")
	assert.False(t, submitting)
}

func TestSessionRepositoryUpdateRefusesHeldOrMissingSessions(t *testing.T) {
	store := newFakeKeyValueStore()
	repo := NewSessionRepository(store)
	ctx := context.Background()
	session := &models.EnrollmentSession{ID: "sess-1", ExpiresAt: time.Now().Add(time.Minute)}

	ok, err := repo.Update(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok, "deleted sessions are not written back")

	require.NoError(t, repo.Save(ctx, session))
	session.Selected = []models.SelectedSlot{{DayOfWeek: models.Friday, StartTime: "07:00", EndTime: "08:00"}}
	ok, err = repo.Update(ctx, session)
	require.NoError(t, err)
	assert.True(t, ok)

	locked, _ := repo.LockSubmission(ctx, "sess-1", time.Second)
	require.True(t, locked)
	session.Selected = nil
	ok, err = repo.Update(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok)

	loaded, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Selected, 1)

	_, err = repo.Update(ctx, &models.EnrollmentSession{ID: "sess-1", ExpiresAt: time.Now().Add(-time.Second)})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}
