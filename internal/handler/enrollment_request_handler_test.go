package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swimlink-api/internal/dto"
	"github.com/noah-isme/swimlink-api/internal/models"
	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

type enrollmentRequestServiceMock struct {
	items      []models.EnrollmentRequestDetail
	file       *dto.ExportFile
	err        error
	lastQuery  dto.EnrollmentRequestQuery
	lastFormat string
	lastStatus dto.UpdateEnrollmentStatusRequest
}

func (m *enrollmentRequestServiceMock) List(ctx context.Context, query dto.EnrollmentRequestQuery, actor *models.JWTClaims) ([]models.EnrollmentRequestDetail, *models.Pagination, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.items, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.items)}, nil
}

func (m *enrollmentRequestServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &m.items[0], nil
}

func (m *enrollmentRequestServiceMock) UpdateStatus(ctx context.Context, id string, req dto.UpdateEnrollmentStatusRequest, actor *models.JWTClaims) (*models.EnrollmentRequestDetail, error) {
	m.lastStatus = req
	if m.err != nil {
		return nil, m.err
	}
	return &m.items[0], nil
}

func (m *enrollmentRequestServiceMock) Export(ctx context.Context, query dto.EnrollmentRequestQuery, format string, actor *models.JWTClaims) (*dto.ExportFile, error) {
	m.lastQuery, m.lastFormat = query, format
	return m.file, m.err
}

func TestEnrollmentRequestHandlerList(t *testing.T) {
	mockSvc := &enrollmentRequestServiceMock{items: []models.EnrollmentRequestDetail{{CourseTitle: "Freestyle"}}}
	h := NewEnrollmentRequestHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/enrollment-requests?status=PENDING&courseId=course-1&page=2", "", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", mockSvc.lastQuery.Status)
	assert.Equal(t, "course-1", mockSvc.lastQuery.CourseID)
	assert.Equal(t, 2, mockSvc.lastQuery.Page)
	assert.Contains(t, w.Body.String(), `"pagination"`)
}

func TestEnrollmentRequestHandlerUpdateStatus(t *testing.T) {
	mockSvc := &enrollmentRequestServiceMock{items: []models.EnrollmentRequestDetail{{}}}
	h := NewEnrollmentRequestHandler(mockSvc)

	c, w := newTestContext(http.MethodPatch, "/enrollment-requests/req-1/status", `{"status":"CANCELLED"}`, gin.Params{{Key: "id", Value: "req-1"}})
	h.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", mockSvc.lastStatus.Status)

	mockSvc.err = appErrors.Clone(appErrors.ErrInvalidStatusChange, "already approved")
	c, w = newTestContext(http.MethodPatch, "/enrollment-requests/req-1/status", `{"status":"CANCELLED"}`, gin.Params{{Key: "id", Value: "req-1"}})
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrInvalidStatusChange.Code, decode(t, w).Error.Code)
}

func TestEnrollmentRequestHandlerExport(t *testing.T) {
	mockSvc := &enrollmentRequestServiceMock{file: &dto.ExportFile{
		Filename:    "enrollment-requests-20260302.csv",
		ContentType: "text/csv",
		Content:     []byte("Request\nreq-1\n"),
	}}
	h := NewEnrollmentRequestHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/courses/course-1/enrollment-requests/export?format=csv&status=APPROVED", "", gin.Params{{Key: "id", Value: "course-1"}})
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, "APPROVED", mockSvc.lastQuery.Status)
	assert.Equal(t, "course-1", mockSvc.lastQuery.CourseID)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "enrollment-requests-20260302.csv")
	assert.Equal(t, "Request\nreq-1\n", w.Body.String())
}
