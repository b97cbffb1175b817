package dto

import (
	"time"

	"github.com/noah-isme/swimlink-api/internal/models"
)

// ToggleSlotRequest toggles one slot of an enrollment session.
type ToggleSlotRequest struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// SubmitEnrollmentRequest finishes an enrollment session. StartDate is checked by the request
// builder so a missing date reports INVALID_START_DATE rather than a generic validation error.
type SubmitEnrollmentRequest struct {
	StartDate string  `json:"startDate"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

// SessionSlot is a bookable slot annotated with the session's selection.
type SessionSlot struct {
	models.BookableSlot
	Selected bool `json:"selected"`
	Bookable bool `json:"bookable"`
}

// SelectionLimitsView echoes the caps in effect.
type SelectionLimitsView struct {
	MaxTotal  int `json:"maxTotal"`
	MaxPerDay int `json:"maxPerDay"`
}

// EnrollmentSessionView is what the presentation layer renders for an enrollment session.
type EnrollmentSessionView struct {
	ID            string                     `json:"id"`
	CourseID      string                     `json:"courseId"`
	Flexible      bool                       `json:"flexible"`
	Slots         []SessionSlot              `json:"slots"`
	Selected      []models.SelectedSlot      `json:"selected"`
	DayCounts     map[models.Weekday]int     `json:"dayCounts"`
	Remaining     int                        `json:"remaining"`
	Limits        SelectionLimitsView        `json:"limits"`
	LastRejection *models.SelectionRejection `json:"lastRejection,omitempty"`
	Submitting    bool                       `json:"submitting"`
	ExpiresAt     time.Time                  `json:"expiresAt"`
}
