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

type courseService interface {
	List(ctx context.Context, query dto.CourseQuery) ([]models.Course, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Availability(ctx context.Context, courseID string) (*dto.CourseAvailability, error)
	InvalidateAvailability(ctx context.Context, courseID string, actor *models.JWTClaims) error
}

// CourseHandler exposes course browsing endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary List swim courses
// @Tags Courses
// @Produce json
// @Param instructorId query string false "Instructor filter"
// @Param level query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param q query string false "Search title or location"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var query dto.CourseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course query"))
		return
	}
	courses, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get godoc
// @Summary Get a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Availability godoc
// @Summary Weekly availability of a course
// @Description Flexible courses report every day empty and no bookable slots.
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/availability [get]
func (h *CourseHandler) Availability(c *gin.Context) {
	availability, err := h.service.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// RefreshAvailability godoc
// @Summary Drop cached availability after a schedule change
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id}/availability/cache [delete]
func (h *CourseHandler) RefreshAvailability(c *gin.Context) {
	if err := h.service.InvalidateAvailability(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
