package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
	"github.com/noah-isme/swimlink-api/pkg/export"
	"github.com/noah-isme/swimlink-api/pkg/timefmt"
)

const exportPageSize = 100

type enrollmentRequestRepository interface {
	List(ctx context.Context, filter models.EnrollmentRequestFilter) ([]models.EnrollmentRequestDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error)
	UpdateStatus(ctx context.Context, id string, from, to models.EnrollmentRequestStatus) (bool, error)
}

// EnrollmentRequestService exposes submitted requests to students and instructors.
type EnrollmentRequestService struct {
	repo      enrollmentRequestRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentRequestService constructs the service.
func NewEnrollmentRequestService(repo enrollmentRequestRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentRequestService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// List returns requests visible to the actor. Students see their own requests and instructors
// see requests for the courses they teach.
func (s *EnrollmentRequestService) List(ctx context.Context, query dto.EnrollmentRequestQuery, actor *models.JWTClaims) ([]models.EnrollmentRequestDetail, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request query")
	}
	filter, err := scopedFilter(query, actor)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("enrollment_requests.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollment requests")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single request if the actor may see it.
func (s *EnrollmentRequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error) {
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(detail, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment request is not visible to you")
	}
	return detail, nil
}

// UpdateStatus moves a pending request to its final status. Instructors approve or reject
// requests for their own courses, students may cancel their own pending requests.
func (s *EnrollmentRequestService) UpdateStatus(ctx context.Context, id string, req dto.UpdateEnrollmentStatusRequest, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	target := models.EnrollmentRequestStatus(req.Status)
	if !canTransition(detail, target, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot change this enrollment request")
	}
	if detail.Status != models.EnrollmentRequestPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatusChange, fmt.Sprintf("enrollment request is already %s", strings.ToLower(string(detail.Status))))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, models.EnrollmentRequestPending, target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment request")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatusChange, "enrollment request changed concurrently")
	}
	s.logger.Info("enrollment request status changed",
		zap.String("request_id", id),
		zap.String("status", string(target)),
		zap.String("actor_id", actor.UserID))

	detail.Status = target
	detail.UpdatedAt = time.Now().UTC()
	return detail, nil
}

// Export renders every request visible to the actor in the requested format.
func (s *EnrollmentRequestService) Export(ctx context.Context, query dto.EnrollmentRequestQuery, format string, actor *models.JWTClaims) (*dto.ExportFile, error) {
	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	query.Page = 0
	query.Limit = 0
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request query")
	}
	filter, err := scopedFilter(query, actor)
	if err != nil {
		return nil, err
	}
	filter.PageSize = exportPageSize

	var all []models.EnrollmentRequestDetail
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment requests")
		}
		all = append(all, items...)
		if len(items) < exportPageSize || len(all) >= total {
			break
		}
	}

	content, err := export.RendererFor(exportFormat).Render(requestTable(all))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("enrollment requests exported", zap.Int("rows", len(all)), zap.String("format", string(exportFormat)))

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("enrollment-requests-%s.%s", time.Now().UTC().Format("20060102"), exportFormat.Extension()),
		ContentType: exportFormat.ContentType(),
		Content:     content,
	}, nil
}

func (s *EnrollmentRequestService) find(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment request")
	}
	return detail, nil
}

func scopedFilter(query dto.EnrollmentRequestQuery, actor *models.JWTClaims) (models.EnrollmentRequestFilter, error) {
	filter := models.EnrollmentRequestFilter{
		CourseID:  query.CourseID,
		Status:    models.EnrollmentRequestStatus(query.Status),
		Page:      query.Page,
		PageSize:  query.Limit,
		SortBy:    query.Sort,
		SortOrder: query.Order,
	}
	if actor == nil {
		return filter, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleInstructor:
		filter.InstructorID = actor.UserID
	case models.RoleStudent:
		filter.StudentID = actor.UserID
	default:
		return filter, appErrors.ErrForbidden
	}
	return filter, nil
}

func canView(detail *models.EnrollmentRequestDetail, actor *models.JWTClaims) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleInstructor:
		return detail.InstructorID == actor.UserID
	case models.RoleStudent:
		return detail.StudentID == actor.UserID
	}
	return false
}

func canTransition(detail *models.EnrollmentRequestDetail, target models.EnrollmentRequestStatus, actor *models.JWTClaims) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	switch target {
	case models.EnrollmentRequestApproved, models.EnrollmentRequestRejected:
		return actor.Role == models.RoleInstructor && detail.InstructorID == actor.UserID
	case models.EnrollmentRequestCancelled:
		return actor.Role == models.RoleStudent && detail.StudentID == actor.UserID
	}
	return false
}

func requestTable(items []models.EnrollmentRequestDetail) export.Table {
	table := export.Table{
		Title:   "Enrollment requests",
		Columns: []string{"Request", "Course", "Student", "Start date", "Status", "Slots", "Notes", "Submitted"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		notes := ""
		if item.Notes != nil {
			notes = *item.Notes
		}
		table.Rows = append(table.Rows, []string{
			item.ID,
			item.CourseTitle,
			item.StudentID,
			item.StartDate.Format(DateLayout),
			string(item.Status),
			describeSlots(item.Slots),
			notes,
			item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return table
}

// describeSlots renders slots as "Monday 9:00 AM-10:00 AM; ...".
func describeSlots(slots []models.EnrollmentRequestSlot) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, fmt.Sprintf("%s %s-%s",
			timefmt.CapitalizeDay(string(slot.DayOfWeek)),
			timefmt.To12Hour(slot.StartTime),
			timefmt.To12Hour(slot.EndTime)))
	}
	return strings.Join(parts, "; ")
}
