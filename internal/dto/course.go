package dto

import "github.com/noah-isme/swimlink-api/internal/models"

// CourseAvailability is the normalized weekly grid of a course.
type CourseAvailability struct {
	CourseID string                    `json:"courseId"`
	Flexible bool                      `json:"flexible"`
	Days     models.WeeklyAvailability `json:"days"`
	Slots    []models.BookableSlot     `json:"slots"`
}

// CourseQuery filters course browsing.
type CourseQuery struct {
	InstructorID string `form:"instructorId"`
	Level        string `form:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Search       string `form:"q" validate:"omitempty,max=100"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	Limit        int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Sort         string `form:"sort"`
	Order        string `form:"order"`
}
