package models

import "time"

// EnrollmentRequest is the immutable payload handed to the submission collaborator.
type EnrollmentRequest struct {
	CourseID              string         `json:"courseId"`
	StartDateForFirstWeek string         `json:"startDateForFirstWeek"`
	SelectedSlots         []SelectedSlot `json:"selectedSlots"`
	Notes                 *string        `json:"notes,omitempty"`
}

// EnrollmentRequestStatus represents the lifecycle of a submitted request.
type EnrollmentRequestStatus string

// Possible enrollment request statuses.
const (
	EnrollmentRequestPending   EnrollmentRequestStatus = "PENDING"
	EnrollmentRequestApproved  EnrollmentRequestStatus = "APPROVED"
	EnrollmentRequestRejected  EnrollmentRequestStatus = "REJECTED"
	EnrollmentRequestCancelled EnrollmentRequestStatus = "CANCELLED"
)

// EnrollmentRequestRecord is a stored enrollment request.
type EnrollmentRequestRecord struct {
	ID        string                  `db:"id" json:"id"`
	CourseID  string                  `db:"course_id" json:"course_id"`
	StudentID string                  `db:"student_id" json:"student_id"`
	StartDate time.Time               `db:"start_date" json:"start_date"`
	Notes     *string                 `db:"notes" json:"notes,omitempty"`
	Status    EnrollmentRequestStatus `db:"status" json:"status"`
	CreatedAt time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt time.Time               `db:"updated_at" json:"updated_at"`
}

// EnrollmentRequestSlot is one selected slot of a stored request.
type EnrollmentRequestSlot struct {
	ID                  string  `db:"id" json:"id"`
	EnrollmentRequestID string  `db:"enrollment_request_id" json:"enrollment_request_id"`
	DayOfWeek           Weekday `db:"day_of_week" json:"day_of_week"`
	StartTime           string  `db:"start_time" json:"start_time"`
	EndTime             string  `db:"end_time" json:"end_time"`
	Position            int     `db:"position" json:"position"`
}

// EnrollmentRequestDetail enriches a record with course info and its slots.
type EnrollmentRequestDetail struct {
	EnrollmentRequestRecord
	CourseTitle  string                  `db:"course_title" json:"course_title"`
	InstructorID string                  `db:"instructor_id" json:"instructor_id"`
	Slots        []EnrollmentRequestSlot `db:"-" json:"slots"`
}

// EnrollmentRequestFilter provides filters for listing enrollment requests.
type EnrollmentRequestFilter struct {
	CourseID     string
	StudentID    string
	InstructorID string
	Status       EnrollmentRequestStatus
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// SubmissionReceipt acknowledges an accepted enrollment request.
type SubmissionReceipt struct {
	RequestID   string                  `json:"requestId"`
	Status      EnrollmentRequestStatus `json:"status"`
	SubmittedAt time.Time               `json:"submittedAt"`
	Request     EnrollmentRequest       `json:"request"`
}
