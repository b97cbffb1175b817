package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

type availabilitySource interface {
	Availability(ctx context.Context, courseID string) (*dto.CourseAvailability, error)
}

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.EnrollmentSession, error)
	Save(ctx context.Context, session *models.EnrollmentSession) error
	Update(ctx context.Context, session *models.EnrollmentSession) (bool, error)
	Delete(ctx context.Context, id string) error
	LockSubmission(ctx context.Context, id string, ttl time.Duration) (bool, error)
	UnlockSubmission(ctx context.Context, id string) error
	IsSubmitting(ctx context.Context, id string) (bool, error)
}

// enrollmentSubmitter is the submission collaborator that accepts built requests.
type enrollmentSubmitter interface {
	Submit(ctx context.Context, studentID string, req models.EnrollmentRequest) (string, error)
}

// EnrollmentSessionConfig governs session lifetimes.
type EnrollmentSessionConfig struct {
	SessionTTL    time.Duration
	SubmitLockTTL time.Duration
}

// EnrollmentSessionService drives one student's slot selection for a course, from the
// availability snapshot to the submitted enrollment request.
type EnrollmentSessionService struct {
	sessions     sessionStore
	availability availabilitySource
	submitter    enrollmentSubmitter
	engine       *SelectionEngine
	builder      *EnrollmentRequestBuilder
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          EnrollmentSessionConfig
	now          func() time.Time
}

// NewEnrollmentSessionService wires the enrollment flow.
func NewEnrollmentSessionService(
	sessions sessionStore,
	availability availabilitySource,
	submitter enrollmentSubmitter,
	engine *SelectionEngine,
	builder *EnrollmentRequestBuilder,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EnrollmentSessionConfig,
) *EnrollmentSessionService {
	if engine == nil {
		engine = NewSelectionEngine(SelectionLimits{})
	}
	if builder == nil {
		builder = NewEnrollmentRequestBuilder(nil, nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.SubmitLockTTL <= 0 {
		cfg.SubmitLockTTL = 15 * time.Second
	}
	return &EnrollmentSessionService{
		sessions:     sessions,
		availability: availability,
		submitter:    submitter,
		engine:       engine,
		builder:      builder,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Start opens a session for the student with an empty selection and a fresh availability snapshot.
func (s *EnrollmentSessionService) Start(ctx context.Context, courseID string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	availability, err := s.availability.Availability(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &models.EnrollmentSession{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		StudentID: actor.UserID,
		Availability: models.Availability{
			Days:     availability.Days,
			Flexible: availability.Flexible,
		},
		Selected:  s.engine.Clear(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start enrollment session")
	}
	s.logger.Info("enrollment session started",
		zap.String("session_id", session.ID),
		zap.String("course_id", courseID),
		zap.String("student_id", actor.UserID),
		zap.Bool("flexible", availability.Flexible))
	return s.view(session, false), nil
}

// Get returns the current state of a session.
func (s *EnrollmentSessionService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error) {
	session, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	submitting, err := s.sessions.IsSubmitting(ctx, id)
	if err != nil {
		s.logger.Warn("submit lock lookup failed", zap.String("session_id", id), zap.Error(err))
	}
	return s.view(session, submitting), nil
}

// Toggle adds or removes a slot. Cap violations are reported in LastRejection and leave the
// selection untouched; slots that are not bookable are ignored.
func (s *EnrollmentSessionService) Toggle(ctx context.Context, id string, req dto.ToggleSlotRequest, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	candidate, err := normalizeSlot(req)
	if err != nil {
		return nil, err
	}

	session, err := s.loadIdle(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	available := session.Availability.IsBookable(candidate)
	wasSelected := IsSelected(session.Selected, candidate)
	next, rejection := s.engine.Toggle(session.Selected, candidate, available)

	switch {
	case rejection != nil:
		s.metrics.RecordRejection(rejection.Code)
		session.LastRejection = &models.SelectionRejection{Code: rejection.Code, Message: rejection.Message, Slot: candidate}
	case !available:
		s.metrics.RecordToggle("ignored")
		s.logger.Debug("toggle ignored for unavailable slot",
			zap.String("session_id", id),
			zap.String("day", string(candidate.DayOfWeek)),
			zap.String("start", candidate.StartTime))
		session.LastRejection = nil
	case wasSelected:
		s.metrics.RecordToggle("removed")
		session.LastRejection = nil
	default:
		s.metrics.RecordToggle("added")
		session.LastRejection = nil
	}
	session.Selected = next

	if err := s.touch(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, false), nil
}

// Clear empties the selection.
func (s *EnrollmentSessionService) Clear(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error) {
	session, err := s.loadIdle(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	session.Selected = s.engine.Clear()
	session.LastRejection = nil
	if err := s.touch(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, false), nil
}

// Submit builds the enrollment request and hands it to the submitter. Only one submission per
// session may be in flight. The session is discarded once the request is accepted; on failure
// the selection is kept so the student can retry.
func (s *EnrollmentSessionService) Submit(ctx context.Context, id string, req dto.SubmitEnrollmentRequest, actor *models.JWTClaims) (*models.SubmissionReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if _, err := s.load(ctx, id, actor); err != nil {
		return nil, err
	}

	locked, err := s.sessions.LockSubmission(ctx, id, s.cfg.SubmitLockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock enrollment session")
	}
	if !locked {
		return nil, appErrors.ErrSubmissionInFlight
	}

	// edits saved before the lock was taken are part of what gets submitted
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.unlock(ctx, id)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment session")
	}

	request, err := s.builder.Build(session.CourseID, session.Selected, req.StartDate, req.Notes)
	if err != nil {
		s.unlock(ctx, id)
		s.metrics.RecordSubmission("invalid")
		return nil, err
	}

	requestID, err := s.submitter.Submit(ctx, session.StudentID, *request)
	if err != nil {
		kind := ClassifySubmissionFailure(err)
		s.metrics.RecordSubmission(string(kind))
		s.logger.Warn("enrollment submission failed",
			zap.String("session_id", id),
			zap.String("course_id", session.CourseID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		s.unlock(ctx, id)
		return nil, submissionFailure(err)
	}

	s.metrics.RecordSubmission("accepted")
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to discard submitted session", zap.String("session_id", id), zap.Error(err))
	}
	s.logger.Info("enrollment request submitted",
		zap.String("request_id", requestID),
		zap.String("course_id", session.CourseID),
		zap.String("student_id", session.StudentID),
		zap.Int("slots", len(request.SelectedSlots)))

	return &models.SubmissionReceipt{
		RequestID:   requestID,
		Status:      models.EnrollmentRequestPending,
		SubmittedAt: s.now().UTC(),
		Request:     *request,
	}, nil
}

// Close discards the session. Closing an expired session is not an error.
func (s *EnrollmentSessionService) Close(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.load(ctx, id, actor); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrSessionExpired.Code {
			return nil
		}
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close enrollment session")
	}
	return nil
}

func (s *EnrollmentSessionService) load(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment session")
	}
	if session.StudentID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment session belongs to another student")
	}
	return session, nil
}

// loadIdle loads a session that is not currently being submitted.
func (s *EnrollmentSessionService) loadIdle(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentSession, error) {
	session, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	submitting, err := s.sessions.IsSubmitting(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment session")
	}
	if submitting {
		return nil, appErrors.ErrSubmissionInFlight
	}
	return session, nil
}

// touch persists an edited session and slides its expiry. The write is refused when a submission
// took the session or it disappeared since it was loaded.
func (s *EnrollmentSessionService) touch(ctx context.Context, session *models.EnrollmentSession) error {
	session.ExpiresAt = s.now().UTC().Add(s.cfg.SessionTTL)
	updated, err := s.sessions.Update(ctx, session)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment session")
	}
	if updated {
		return nil
	}
	submitting, err := s.sessions.IsSubmitting(ctx, session.ID)
	if err == nil && submitting {
		return appErrors.ErrSubmissionInFlight
	}
	return appErrors.ErrSessionExpired
}

func (s *EnrollmentSessionService) unlock(ctx context.Context, id string) {
	if err := s.sessions.UnlockSubmission(ctx, id); err != nil {
		s.logger.Warn("failed to release submit lock", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *EnrollmentSessionService) view(session *models.EnrollmentSession, submitting bool) *dto.EnrollmentSessionView {
	bookable := session.Availability.Slots()
	slots := make([]dto.SessionSlot, 0, len(bookable))
	for _, b := range bookable {
		key := models.SelectedSlot{DayOfWeek: b.DayOfWeek, StartTime: b.StartTime, EndTime: b.EndTime}
		slots = append(slots, dto.SessionSlot{
			BookableSlot: b,
			Selected:     IsSelected(session.Selected, key),
			Bookable:     b.AvailableSpots > 0,
		})
	}
	limits := s.engine.Limits()
	selected := session.Selected
	if selected == nil {
		selected = []models.SelectedSlot{}
	}
	return &dto.EnrollmentSessionView{
		ID:            session.ID,
		CourseID:      session.CourseID,
		Flexible:      session.Availability.Flexible,
		Slots:         slots,
		Selected:      selected,
		DayCounts:     DayCounts(selected),
		Remaining:     s.engine.Remaining(selected),
		Limits:        dto.SelectionLimitsView{MaxTotal: limits.MaxTotal, MaxPerDay: limits.MaxPerDay},
		LastRejection: session.LastRejection,
		Submitting:    submitting,
		ExpiresAt:     session.ExpiresAt,
	}
}

func normalizeSlot(req dto.ToggleSlotRequest) (models.SelectedSlot, error) {
	day, ok := models.ParseWeekday(req.DayOfWeek)
	if !ok {
		return models.SelectedSlot{}, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}
	start, okStart := timefmt.Normalize(req.StartTime)
	end, okEnd := timefmt.Normalize(req.EndTime)
	if !okStart || !okEnd {
		return models.SelectedSlot{}, appErrors.Clone(appErrors.ErrValidation, "times must use HH:MM")
	}
	return models.SelectedSlot{DayOfWeek: day, StartTime: start, EndTime: end}, nil
}
