package service

import (
	"strings"
	"time"

	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

// DateLayout is the wire format of enrollment start dates.
const DateLayout = "2006-01-02"

// EnrollmentRequestBuilder validates a finished selection and produces the outbound request.
type EnrollmentRequestBuilder struct {
	now      func() time.Time
	location *time.Location
}

// NewEnrollmentRequestBuilder constructs a builder. A nil clock uses time.Now and a nil
// location uses UTC to decide what "today" is.
func NewEnrollmentRequestBuilder(now func() time.Time, location *time.Location) *EnrollmentRequestBuilder {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &EnrollmentRequestBuilder{now: now, location: location}
}

// Build checks the selection and start date and returns a request whose slots are sorted by
// day, start and end so equal selections always produce equal requests.
func (b *EnrollmentRequestBuilder) Build(courseID string, selected []models.SelectedSlot, startDate string, notes *string) (*models.EnrollmentRequest, error) {
	if len(selected) == 0 {
		return nil, appErrors.ErrEmptySelection
	}

	startDate = strings.TrimSpace(startDate)
	if startDate == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidStartDate, "start date is required")
	}
	start, err := time.ParseInLocation(DateLayout, startDate, b.location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidStartDate.Code, appErrors.ErrInvalidStartDate.Status, "start date must use YYYY-MM-DD")
	}
	if start.Before(b.today()) {
		return nil, appErrors.ErrInvalidStartDate
	}

	var trimmedNotes *string
	if notes != nil {
		if n := strings.TrimSpace(*notes); n != "" {
			trimmedNotes = &n
		}
	}

	return &models.EnrollmentRequest{
		CourseID:              courseID,
		StartDateForFirstWeek: start.Format(DateLayout),
		SelectedSlots:         models.SortSlots(selected),
		Notes:                 trimmedNotes,
	}, nil
}

func (b *EnrollmentRequestBuilder) today() time.Time {
	now := b.now().In(b.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.location)
}
