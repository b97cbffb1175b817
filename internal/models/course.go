package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CourseLevel describes the swimming ability a course targets.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "BEGINNER"
	CourseLevelIntermediate CourseLevel = "INTERMEDIATE"
	CourseLevelAdvanced     CourseLevel = "ADVANCED"
)

// Course is a swim course offered by an instructor. Schedule holds the raw weekly
// availability exactly as the instructor saved it.
type Course struct {
	ID           string         `db:"id" json:"id"`
	InstructorID string         `db:"instructor_id" json:"instructor_id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Level        CourseLevel    `db:"level" json:"level"`
	Location     string         `db:"location" json:"location"`
	Schedule     types.JSONText `db:"schedule" json:"schedule"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures browse filters.
type CourseFilter struct {
	InstructorID string
	Level        CourseLevel
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
