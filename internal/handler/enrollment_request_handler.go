package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
	"github.com/noah-isme/swimlink-api/pkg/response"
)

type enrollmentRequestService interface {
	List(ctx context.Context, query dto.EnrollmentRequestQuery, actor *models.JWTClaims) ([]models.EnrollmentRequestDetail, *models.Pagination, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateEnrollmentStatusRequest, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error)
	Export(ctx context.Context, query dto.EnrollmentRequestQuery, format string, actor *models.JWTClaims) (*dto.ExportFile, error)
}

// EnrollmentRequestHandler exposes submitted enrollment requests.
type EnrollmentRequestHandler struct {
	service enrollmentRequestService
}

// NewEnrollmentRequestHandler builds a new handler.
func NewEnrollmentRequestHandler(service enrollmentRequestService) *EnrollmentRequestHandler {
	return &EnrollmentRequestHandler{service: service}
}

// List godoc
// @Summary List enrollment requests
// @Description Students see their own requests, instructors see requests for their courses.
// @Tags Enrollment Requests
// @Produce json
// @Param courseId query string false "Course filter"
// @Param status query string false "PENDING, APPROVED, REJECTED or CANCELLED"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests [get]
func (h *EnrollmentRequestHandler) List(c *gin.Context) {
	var query dto.EnrollmentRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment request query"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get an enrollment request
// @Tags Enrollment Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests/{id} [get]
func (h *EnrollmentRequestHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateStatus godoc
// @Summary Approve, reject or cancel a pending request
// @Tags Enrollment Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateEnrollmentStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /enrollment-requests/{id}/status [patch]
func (h *EnrollmentRequestHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Export godoc
// @Summary Export enrollment requests
// @Tags Enrollment Requests
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Router /courses/{id}/enrollment-requests/export [get]
func (h *EnrollmentRequestHandler) Export(c *gin.Context) {
	var query dto.EnrollmentRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	query.CourseID = c.Param("id")
	file, err := h.service.Export(c.Request.Context(), query, c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Content)
}
