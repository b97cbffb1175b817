package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

// ErrPendingRequestExists is returned when the student already has a pending request for the course.
var ErrPendingRequestExists = appErrors.New("ENROLLMENT_PENDING", http.StatusConflict, "enrollment request already pending for this course")

const enrollmentDetailSelect = `SELECT er.id, er.course_id, er.student_id, er.start_date, er.notes, er.status, er.created_at, er.updated_at,
        c.title AS course_title, c.instructor_id
        FROM enrollment_requests er
        JOIN courses c ON c.id = er.course_id`

// EnrollmentRequestRepository stores submitted enrollment requests and their slots.
type EnrollmentRequestRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRequestRepository constructs the repository.
func NewEnrollmentRequestRepository(db *sqlx.DB) *EnrollmentRequestRepository {
	return &EnrollmentRequestRepository{db: db}
}

// Submit persists the request for the student and returns its ID. It is the submission
// collaborator for enrollment sessions.
func (r *EnrollmentRequestRepository) Submit(ctx context.Context, studentID string, req models.EnrollmentRequest) (string, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDateForFirstWeek)
	if err != nil {
		return "", fmt.Errorf("parse start date: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin submit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var courseID string
	if err := tx.GetContext(ctx, &courseID, `SELECT id FROM courses WHERE id = $1 FOR SHARE`, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, fmt.Sprintf("course %s not found", req.CourseID))
		}
		return "", fmt.Errorf("load course: %w", err)
	}

	var pending bool
	if err := tx.GetContext(ctx, &pending, `SELECT EXISTS(SELECT 1 FROM enrollment_requests WHERE course_id = $1 AND student_id = $2 AND status = $3)`,
		req.CourseID, studentID, models.EnrollmentRequestPending); err != nil {
		return "", fmt.Errorf("check pending requests: %w", err)
	}
	if pending {
		return "", ErrPendingRequestExists
	}

	now := time.Now().UTC()
	record := models.EnrollmentRequestRecord{
		ID:        uuid.NewString(),
		CourseID:  req.CourseID,
		StudentID: studentID,
		StartDate: startDate,
		Notes:     req.Notes,
		Status:    models.EnrollmentRequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	const insertRequest = `INSERT INTO enrollment_requests (id, course_id, student_id, start_date, notes, status, created_at, updated_at)
        VALUES (:id, :course_id, :student_id, :start_date, :notes, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRequest, record); err != nil {
		return "", fmt.Errorf("insert enrollment request: %w", err)
	}

	const insertSlot = `INSERT INTO enrollment_request_slots (id, enrollment_request_id, day_of_week, start_time, end_time, position)
        VALUES (:id, :enrollment_request_id, :day_of_week, :start_time, :end_time, :position)`
	for i, slot := range req.SelectedSlots {
		row := models.EnrollmentRequestSlot{
			ID:                  uuid.NewString(),
			EnrollmentRequestID: record.ID,
			DayOfWeek:           slot.DayOfWeek,
			StartTime:           slot.StartTime,
			EndTime:             slot.EndTime,
			Position:            i,
		}
		if _, err := tx.NamedExecContext(ctx, insertSlot, row); err != nil {
			return "", fmt.Errorf("insert enrollment request slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit enrollment request: %w", err)
	}
	return record.ID, nil
}

// List returns enrollment requests with course context and slots.
func (r *EnrollmentRequestRepository) List(ctx context.Context, filter models.EnrollmentRequestFilter) ([]models.EnrollmentRequestDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("er.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("er.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("er.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "er.created_at",
		"start_date": "er.start_date",
		"status":     "er.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "er.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`%s%s ORDER BY %s %s LIMIT %d OFFSET %d`, enrollmentDetailSelect, clause, orderBy, order, size, offset)
	var details []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollment requests: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM enrollment_requests er JOIN courses c ON c.id = er.course_id` + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollment requests: %w", err)
	}

	if err := r.attachSlots(ctx, details); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// FindDetailByID returns a single request with its slots.
func (r *EnrollmentRequestRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error) {
	var detail models.EnrollmentRequestDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+` WHERE er.id = $1`, id); err != nil {
		return nil, err
	}
	details := []models.EnrollmentRequestDetail{detail}
	if err := r.attachSlots(ctx, details); err != nil {
		return nil, err
	}
	return &details[0], nil
}

// UpdateStatus moves a request from one status to another. It reports false when the request
// was not in the expected status anymore.
func (r *EnrollmentRequestRepository) UpdateStatus(ctx context.Context, id string, from, to models.EnrollmentRequestStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE enrollment_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update enrollment request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("enrollment request rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *EnrollmentRequestRepository) attachSlots(ctx context.Context, details []models.EnrollmentRequestDetail) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]string, len(details))
	for i, d := range details {
		ids[i] = d.ID
	}

	const query = `SELECT id, enrollment_request_id, day_of_week, start_time, end_time, position
        FROM enrollment_request_slots WHERE enrollment_request_id = ANY($1) ORDER BY enrollment_request_id, position`
	var slots []models.EnrollmentRequestSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list enrollment request slots: %w", err)
	}

	byRequest := make(map[string][]models.EnrollmentRequestSlot, len(details))
	for _, slot := range slots {
		byRequest[slot.EnrollmentRequestID] = append(byRequest[slot.EnrollmentRequestID], slot)
	}
	for i := range details {
		details[i].Slots = byRequest[details[i].ID]
		if details[i].Slots == nil {
			details[i].Slots = []models.EnrollmentRequestSlot{}
		}
	}
	return nil
}
