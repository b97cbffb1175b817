package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

type memorySessionStore struct {
	sessions map[string]models.EnrollmentSession
	locks    map[string]bool
	deleted  []string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]models.EnrollmentSession{}, locks: map[string]bool{}}
}

func (m *memorySessionStore) Get(ctx context.Context, id string) (*models.EnrollmentSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return &s, nil
}

func (m *memorySessionStore) Save(ctx context.Context, session *models.EnrollmentSession) error {
	m.sessions[session.ID] = *session
	return nil
}

func (m *memorySessionStore) Update(ctx context.Context, session *models.EnrollmentSession) (bool, error) {
	if _, ok := m.sessions[session.ID]; !ok || m.locks[session.ID] {
		return false, nil
	}
	m.sessions[session.ID] = *session
	return true, nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	delete(m.locks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memorySessionStore) LockSubmission(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if m.locks[id] {
		return false, nil
	}
	m.locks[id] = true
	return true, nil
}

func (m *memorySessionStore) UnlockSubmission(ctx context.Context, id string) error {
	delete(m.locks, id)
	return nil
}

func (m *memorySessionStore) IsSubmitting(ctx context.Context, id string) (bool, error) {
	return m.locks[id], nil
}

type stubAvailability struct {
	result *dto.CourseAvailability
	err    error
}

func (s stubAvailability) Availability(ctx context.Context, courseID string) (*dto.CourseAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type recordingSubmitter struct {
	requests []models.EnrollmentRequest
	student  string
	err      error
}

func (r *recordingSubmitter) Submit(ctx context.Context, studentID string, req models.EnrollmentRequest) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.student = studentID
	r.requests = append(r.requests, req)
	return "req-1", nil
}

func poolAvailability() *dto.CourseAvailability {
	week := models.EmptyWeek()
	week[models.Monday] = models.DayAvailability{Selected: true, Ranges: []models.TimeRange{
		{Start: "09:00", End: "10:00", Capacity: 5, Enrolled: 1},
		{Start: "10:00", End: "11:00", Capacity: 5, Enrolled: 0},
		{Start: "11:00", End: "12:00", Capacity: 5, Enrolled: 0},
		{Start: "12:00", End: "13:00", Capacity: 5, Enrolled: 5},
	}}
	week[models.Tuesday] = models.DayAvailability{Selected: true, Ranges: []models.TimeRange{
		{Start: "18:00", End: "19:00", Capacity: 8, Enrolled: 2},
	}}
	a := models.Availability{Days: week}
	return &dto.CourseAvailability{CourseID: "course-1", Days: week, Slots: a.Slots()}
}

type sessionFixture struct {
	svc       *EnrollmentSessionService
	store     *memorySessionStore
	submitter *recordingSubmitter
	student   *models.JWTClaims
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	store := newMemorySessionStore()
	submitter := &recordingSubmitter{}
	builder := NewEnrollmentRequestBuilder(fixedClock("2026-03-02T08:00:00Z"), time.UTC)
	svc := NewEnrollmentSessionService(store, stubAvailability{result: poolAvailability()}, submitter,
		NewSelectionEngine(SelectionLimits{}), builder, NewMetricsService(), validator.New(), zap.NewNop(),
		EnrollmentSessionConfig{SessionTTL: time.Hour})
	return &sessionFixture{
		svc:       svc,
		store:     store,
		submitter: submitter,
		student:   &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent},
	}
}

func toggle(day, start, end string) dto.ToggleSlotRequest {
	return dto.ToggleSlotRequest{DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestEnrollmentSessionStart(t *testing.T) {
	f := newSessionFixture(t)
	view, err := f.svc.Start(context.Background(), "course-1", f.student)
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Empty(t, view.Selected)
	assert.Len(t, view.Slots, 5)
	assert.False(t, view.Slots[3].Bookable, "full range is listed but not bookable")
	assert.Equal(t, 4, view.Remaining)
	assert.Equal(t, dto.SelectionLimitsView{MaxTotal: 4, MaxPerDay: 2}, view.Limits)
	assert.Contains(t, f.store.sessions, view.ID)

	_, err = f.svc.Start(context.Background(), "course-1", nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestEnrollmentSessionStartPropagatesAvailabilityErrors(t *testing.T) {
	f := newSessionFixture(t)
	f.svc.availability = stubAvailability{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")}
	_, err := f.svc.Start(context.Background(), "missing", f.student)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEnrollmentSessionToggleAndDailyCap(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, err := f.svc.Start(ctx, "course-1", f.student)
	require.NoError(t, err)
	id := view.ID

	view, err = f.svc.Toggle(ctx, id, toggle("Monday", "9:00 am", "10:00"), f.student)
	require.NoError(t, err)
	view, err = f.svc.Toggle(ctx, id, toggle("mon", "10:00", "11:00"), f.student)
	require.NoError(t, err)
	require.Len(t, view.Selected, 2)
	assert.Equal(t, "09:00", view.Selected[0].StartTime)
	assert.Equal(t, 2, view.DayCounts[models.Monday])

	view, err = f.svc.Toggle(ctx, id, toggle("monday", "11:00", "12:00"), f.student)
	require.NoError(t, err)
	require.NotNil(t, view.LastRejection)
	assert.Equal(t, appErrors.ErrDailyCapExceeded.Code, view.LastRejection.Code)
	assert.Len(t, view.Selected, 2)

	view, err = f.svc.Toggle(ctx, id, toggle("tuesday", "18:00", "19:00"), f.student)
	require.NoError(t, err)
	assert.Nil(t, view.LastRejection, "a successful toggle clears the last rejection")
	assert.Len(t, view.Selected, 3)
}

func TestEnrollmentSessionToggleOnOff(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	_, err := f.svc.Toggle(ctx, view.ID, toggle("monday", "09:00", "10:00"), f.student)
	require.NoError(t, err)
	view, err = f.svc.Toggle(ctx, view.ID, toggle("monday", "09:00", "10:00"), f.student)
	require.NoError(t, err)
	assert.Empty(t, view.Selected)
	assert.Nil(t, view.LastRejection)
}

func TestEnrollmentSessionToggleIgnoresUnbookable(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	view, err := f.svc.Toggle(ctx, view.ID, toggle("monday", "12:00", "13:00"), f.student)
	require.NoError(t, err)
	assert.Empty(t, view.Selected)

	view, err = f.svc.Toggle(ctx, view.ID, toggle("sunday", "12:00", "13:00"), f.student)
	require.NoError(t, err)
	assert.Empty(t, view.Selected)
	assert.Nil(t, view.LastRejection)
}

func TestEnrollmentSessionToggleValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	_, err := f.svc.Toggle(ctx, view.ID, toggle("someday", "09:00", "10:00"), f.student)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = f.svc.Toggle(ctx, view.ID, toggle("monday", "25:00", "10:00"), f.student)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = f.svc.Toggle(ctx, view.ID, dto.ToggleSlotRequest{}, f.student)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEnrollmentSessionOwnershipAndExpiry(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	other := &models.JWTClaims{UserID: "student-2", Role: models.RoleStudent}
	_, err := f.svc.Get(ctx, view.ID, other)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	admin := &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
	_, err = f.svc.Get(ctx, view.ID, admin)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, "gone", f.student)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestEnrollmentSessionClear(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "09:00", "10:00"), f.student)

	view, err := f.svc.Clear(ctx, view.ID, f.student)
	require.NoError(t, err)
	assert.Empty(t, view.Selected)
	assert.Equal(t, 4, view.Remaining)
}

func TestEnrollmentSessionSubmit(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("tuesday", "18:00", "19:00"), f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)

	notes := " weekday mornings preferred "
	receipt, err := f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-02", Notes: &notes}, f.student)
	require.NoError(t, err)

	assert.Equal(t, "req-1", receipt.RequestID)
	assert.Equal(t, models.EnrollmentRequestPending, receipt.Status)
	require.Len(t, f.submitter.requests, 1)
	sent := f.submitter.requests[0]
	assert.Equal(t, "student-1", f.submitter.student)
	assert.Equal(t, "course-1", sent.CourseID)
	assert.Equal(t, models.Monday, sent.SelectedSlots[0].DayOfWeek)
	assert.Equal(t, "weekday mornings preferred", *sent.Notes)

	assert.NotContains(t, f.store.sessions, view.ID)
	_, err = f.svc.Get(ctx, view.ID, f.student)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestEnrollmentSessionSubmitValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	_, err := f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-02"}, f.student)
	assert.ErrorIs(t, err, appErrors.ErrEmptySelection)

	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)
	_, err = f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-01"}, f.student)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStartDate)
	assert.Empty(t, f.submitter.requests)
	assert.Contains(t, f.store.sessions, view.ID)
}

func TestEnrollmentSessionSubmitFailureKeepsSelection(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)

	f.submitter.err = appErrors.New("ENROLLMENT_PENDING", http.StatusConflict, "enrollment request already pending for this course")
	_, err := f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-03"}, f.student)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	assert.False(t, f.store.locks[view.ID], "lock released after failure")
	view, err = f.svc.Get(ctx, view.ID, f.student)
	require.NoError(t, err)
	assert.Len(t, view.Selected, 1)
}

func TestEnrollmentSessionSingleSubmissionInFlight(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)

	f.store.locks[view.ID] = true
	_, err := f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-03"}, f.student)
	assert.ErrorIs(t, err, appErrors.ErrSubmissionInFlight)
	_, err = f.svc.Toggle(ctx, view.ID, toggle("monday", "09:00", "10:00"), f.student)
	assert.ErrorIs(t, err, appErrors.ErrSubmissionInFlight)

	got, err := f.svc.Get(ctx, view.ID, f.student)
	require.NoError(t, err)
	assert.True(t, got.Submitting)
	assert.Empty(t, f.submitter.requests)
}

func TestEnrollmentSessionClose(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)

	require.NoError(t, f.svc.Close(ctx, view.ID, f.student))
	assert.NotContains(t, f.store.sessions, view.ID)
	assert.NoError(t, f.svc.Close(ctx, view.ID, f.student), "closing twice is not an error")
}

// racingSessionStore runs between once, right after the idle check an edit makes, to stand in for
// a request that lands between loading a session and saving it.
type racingSessionStore struct {
	*memorySessionStore
	between func()
}

func (r *racingSessionStore) IsSubmitting(ctx context.Context, id string) (bool, error) {
	submitting, err := r.memorySessionStore.IsSubmitting(ctx, id)
	if hook := r.between; hook != nil {
		r.between = nil
		hook()
	}
	return submitting, err
}

func TestEnrollmentSessionToggleRacingSubmitDoesNotResurrectSession(t *testing.T) {
	f := newSessionFixture(t)
	racing := &racingSessionStore{memorySessionStore: f.store}
	f.svc.sessions = racing
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "course-1", f.student)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)
	require.NoError(t, err)

	var submitErr error
	racing.between = func() {
		_, submitErr = f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-03"}, f.student)
	}
	_, err = f.svc.Toggle(ctx, view.ID, toggle("tuesday", "18:00", "19:00"), f.student)

	require.NoError(t, submitErr)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.NotContains(t, f.store.sessions, view.ID, "submitted session stays discarded")
	require.Len(t, f.submitter.requests, 1)
	assert.Len(t, f.submitter.requests[0].SelectedSlots, 1)

	_, err = f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-03"}, f.student)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Len(t, f.submitter.requests, 1)
}

func TestEnrollmentSessionClearWhileSubmissionHeld(t *testing.T) {
	f := newSessionFixture(t)
	racing := &racingSessionStore{memorySessionStore: f.store}
	f.svc.sessions = racing
	ctx := context.Background()

	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)

	racing.between = func() { f.store.locks[view.ID] = true }
	_, err := f.svc.Clear(ctx, view.ID, f.student)
	assert.ErrorIs(t, err, appErrors.ErrSubmissionInFlight)
	assert.Len(t, f.store.sessions[view.ID].Selected, 1, "held session keeps its selection")
}

func TestEnrollmentSessionSubmitUsesSelectionSavedBeforeLock(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	view, _ := f.svc.Start(ctx, "course-1", f.student)
	_, _ = f.svc.Toggle(ctx, view.ID, toggle("monday", "10:00", "11:00"), f.student)

	// another request adds a slot after this submit loaded the session but before it locks
	stored := f.store.sessions[view.ID]
	stored.Selected = append(stored.Selected, models.SelectedSlot{DayOfWeek: models.Tuesday, StartTime: "18:00", EndTime: "19:00"})
	f.store.sessions[view.ID] = stored

	receipt, err := f.svc.Submit(ctx, view.ID, dto.SubmitEnrollmentRequest{StartDate: "2026-03-03"}, f.student)
	require.NoError(t, err)
	assert.Len(t, receipt.Request.SelectedSlots, 2)
}
