package models

import "time"

// SelectionRejection records why the latest toggle was refused.
type SelectionRejection struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Slot    SelectedSlot `json:"slot"`
}

// EnrollmentSession is one student's in-progress slot selection for one course. It carries
// the availability snapshot taken when the flow started.
type EnrollmentSession struct {
	ID            string              `json:"id"`
	CourseID      string              `json:"courseId"`
	StudentID     string              `json:"studentId"`
	Availability  Availability        `json:"availability"`
	Selected      []SelectedSlot      `json:"selected"`
	LastRejection *SelectionRejection `json:"lastRejection,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	ExpiresAt     time.Time           `json:"expiresAt"`
}
