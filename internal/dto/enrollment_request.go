package dto

// UpdateEnrollmentStatusRequest moves a pending enrollment request to a final status.
type UpdateEnrollmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED CANCELLED"`
}

// EnrollmentRequestQuery filters enrollment request listings.
type EnrollmentRequestQuery struct {
	CourseID string `form:"courseId"`
	Status   string `form:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
}

// ExportFile is a rendered roster export.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
