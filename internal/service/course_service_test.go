package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

type mockCourseRepo struct {
	courses    map[string]models.Course
	lastFilter models.CourseFilter
	finds      int
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.lastFilter = filter
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	m.finds++
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func newCourseServiceFixture() (*CourseService, *mockCourseRepo, *memoryCacheRepo) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"course-1": {ID: "course-1", InstructorID: "ins-1", Title: "Freestyle basics", Schedule: types.JSONText(`{"monday": {"ranges": [{"start": "09:00", "end": "10:00", "capacity": 4}]}}`)},
		"course-2": {ID: "course-2", InstructorID: "ins-2", Title: "Open water", Schedule: types.JSONText(`"by appointment"`)},
	}}
	cacheRepo := &memoryCacheRepo{entries: map[string][]byte{}}
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	svc := NewCourseService(repo, nil, cache, metrics, validator.New(), zap.NewNop(), time.Minute)
	return svc, repo, cacheRepo
}

func TestCourseServiceAvailabilityCached(t *testing.T) {
	svc, repo, cacheRepo := newCourseServiceFixture()
	ctx := context.Background()

	first, err := svc.Availability(ctx, "course-1")
	require.NoError(t, err)
	assert.False(t, first.Flexible)
	require.Len(t, first.Slots, 1)
	assert.Equal(t, 4, first.Slots[0].AvailableSpots)
	assert.Contains(t, cacheRepo.entries, "course:availability:course-1")

	second, err := svc.Availability(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second call served from cache")
	assert.Equal(t, first.Slots, second.Slots)

	require.NoError(t, svc.InvalidateAvailability(ctx, "course-1", &models.JWTClaims{UserID: "ins-1", Role: models.RoleInstructor}))
	_, err = svc.Availability(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.finds)
}

func TestCourseServiceAvailabilityFlexible(t *testing.T) {
	svc, _, _ := newCourseServiceFixture()
	availability, err := svc.Availability(context.Background(), "course-2")
	require.NoError(t, err)
	assert.True(t, availability.Flexible)
	assert.Empty(t, availability.Slots)
	assert.Len(t, availability.Days, 7)
}

func TestCourseServiceNotFound(t *testing.T) {
	svc, _, _ := newCourseServiceFixture()
	_, err := svc.Availability(context.Background(), "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceList(t *testing.T) {
	svc, repo, _ := newCourseServiceFixture()
	courses, pagination, err := svc.List(context.Background(), dto.CourseQuery{Level: "beginner", Search: "  free ", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 10, pagination.PageSize)
	assert.Equal(t, models.CourseLevel("BEGINNER"), repo.lastFilter.Level)
	assert.Equal(t, "free", repo.lastFilter.Search)

	_, _, err = svc.List(context.Background(), dto.CourseQuery{Limit: 500})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceInvalidateAvailabilityChecksOwnership(t *testing.T) {
	svc, _, cacheRepo := newCourseServiceFixture()
	ctx := context.Background()
	for _, id := range []string{"course-1", "course-2"} {
		_, err := svc.Availability(ctx, id)
		require.NoError(t, err)
	}

	other := &models.JWTClaims{UserID: "ins-2", Role: models.RoleInstructor}
	err := svc.InvalidateAvailability(ctx, "course-1", other)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Contains(t, cacheRepo.entries, "course:availability:course-1")

	err = svc.InvalidateAvailability(ctx, "*", other)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, cacheRepo.entries, 2, "ids are never treated as patterns")

	assert.ErrorIs(t, svc.InvalidateAvailability(ctx, "course-1", nil), appErrors.ErrUnauthorized)

	admin := &models.JWTClaims{UserID: "root", Role: models.RoleAdmin}
	require.NoError(t, svc.InvalidateAvailability(ctx, "course-1", admin))
	assert.NotContains(t, cacheRepo.entries, "course:availability:course-1")
	assert.Contains(t, cacheRepo.entries, "course:availability:course-2")
}
