package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

const availabilityCacheKeyPrefix = "course:availability:"

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CourseService serves course browsing and the normalized availability of a course.
type CourseService struct {
	repo      courseRepository
	parser    *AvailabilityParser
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewCourseService constructs CourseService. cache and metrics may be nil.
func NewCourseService(repo courseRepository, parser *AvailabilityParser, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = NewAvailabilityParser(AvailabilityParserConfig{}, logger)
	}
	return &CourseService{repo: repo, parser: parser, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, query dto.CourseQuery) ([]models.Course, *models.Pagination, error) {
	query.Level = strings.ToUpper(strings.TrimSpace(query.Level))
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course query")
	}
	filter := models.CourseFilter{
		InstructorID: query.InstructorID,
		Level:        models.CourseLevel(query.Level),
		Search:       strings.TrimSpace(query.Search),
		Page:         query.Page,
		PageSize:     query.Limit,
		SortBy:       query.Sort,
		SortOrder:    query.Order,
	}

	start := time.Now()
	courses, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("courses.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	start := time.Now()
	course, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("courses.find", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Availability returns the parsed weekly availability of a course, served from cache when possible.
func (s *CourseService) Availability(ctx context.Context, courseID string) (*dto.CourseAvailability, error) {
	key := availabilityCacheKeyPrefix + courseID
	var cached dto.CourseAvailability
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	availability := s.parser.Parse(course.ID, []byte(course.Schedule))
	s.metrics.RecordScheduleAnomalies(len(availability.Anomalies))

	result := &dto.CourseAvailability{
		CourseID: course.ID,
		Flexible: availability.Flexible,
		Days:     availability.Days,
		Slots:    availability.Slots(),
	}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Debug("availability not cached", zap.String("course_id", courseID), zap.Error(err))
	}
	return result, nil
}

// InvalidateAvailability drops the cached availability of a course. Only the course's instructor
// or an admin may do so.
func (s *CourseService) InvalidateAvailability(ctx context.Context, courseID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && course.InstructorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the course instructor can refresh its availability")
	}
	if err := s.cache.Invalidate(ctx, availabilityCacheKeyPrefix+course.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh availability")
	}
	return nil
}
