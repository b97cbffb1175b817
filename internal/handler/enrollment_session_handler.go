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

type enrollmentSessionService interface {
	Start(ctx context.Context, courseID string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error)
	Toggle(ctx context.Context, id string, req dto.ToggleSlotRequest, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error)
	Clear(ctx context.Context, id string, actor *models.JWTClaims) (*dto.EnrollmentSessionView, error)
	Submit(ctx context.Context, id string, req dto.SubmitEnrollmentRequest, actor *models.JWTClaims) (*models.SubmissionReceipt, error)
	Close(ctx context.Context, id string, actor *models.JWTClaims) error
}

// EnrollmentSessionHandler drives the slot selection flow for students.
type EnrollmentSessionHandler struct {
	service enrollmentSessionService
}

// NewEnrollmentSessionHandler builds a new handler.
func NewEnrollmentSessionHandler(service enrollmentSessionService) *EnrollmentSessionHandler {
	return &EnrollmentSessionHandler{service: service}
}

// Start godoc
// @Summary Start an enrollment session for a course
// @Tags Enrollment
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/enrollment-sessions [post]
func (h *EnrollmentSessionHandler) Start(c *gin.Context) {
	view, err := h.service.Start(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get an enrollment session
// @Tags Enrollment
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-sessions/{sessionId} [get]
func (h *EnrollmentSessionHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("sessionId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Toggle godoc
// @Summary Toggle a time slot
// @Description Cap violations are reported in lastRejection with status 200.
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.ToggleSlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /enrollment-sessions/{sessionId}/toggle [post]
func (h *EnrollmentSessionHandler) Toggle(c *gin.Context) {
	var req dto.ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	view, err := h.service.Toggle(c.Request.Context(), c.Param("sessionId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Clear godoc
// @Summary Clear the selection
// @Tags Enrollment
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /enrollment-sessions/{sessionId}/selection [delete]
func (h *EnrollmentSessionHandler) Clear(c *gin.Context) {
	view, err := h.service.Clear(c.Request.Context(), c.Param("sessionId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Submit godoc
// @Summary Submit the enrollment request
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.SubmitEnrollmentRequest true "Start date and notes"
// @Success 201 {object} response.Envelope
// @Router /enrollment-sessions/{sessionId}/submit [post]
func (h *EnrollmentSessionHandler) Submit(c *gin.Context) {
	var req dto.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	receipt, err := h.service.Submit(c.Request.Context(), c.Param("sessionId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Close godoc
// @Summary Abandon an enrollment session
// @Tags Enrollment
// @Param sessionId path string true "Session ID"
// @Success 204
// @Router /enrollment-sessions/{sessionId} [delete]
func (h *EnrollmentSessionHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("sessionId"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
