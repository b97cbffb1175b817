package service

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	appErrors "github.com/noah-isme/swimlink-api/pkg/errors"
)

// SubmissionFailureKind buckets submission errors for display.
type SubmissionFailureKind string

const (
	SubmissionFailureCapacity      SubmissionFailureKind = "capacity_conflict"
	SubmissionFailureAuthorization SubmissionFailureKind = "authorization"
	SubmissionFailureNotFound      SubmissionFailureKind = "not_found"
	SubmissionFailureGeneric       SubmissionFailureKind = "generic"
)

var submissionFailureKeywords = []struct {
	kind     SubmissionFailureKind
	keywords []string
}{
	{SubmissionFailureCapacity, []string{"capacity", "full", "conflict", "already", "duplicate"}},
	{SubmissionFailureAuthorization, []string{"unauthorized", "forbidden", "permission", "not allowed"}},
	{SubmissionFailureNotFound, []string{"not found", "does not exist", "no rows"}},
}

// ClassifySubmissionFailure maps a submission error onto a display bucket. Only typed errors
// raised by the submitter are bucketed, by status first and then by their message. Untyped
// errors come from infrastructure and are always generic, whatever their text says.
func ClassifySubmissionFailure(err error) SubmissionFailureKind {
	if err == nil {
		return ""
	}

	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		if errors.Is(err, sql.ErrNoRows) {
			return SubmissionFailureNotFound
		}
		return SubmissionFailureGeneric
	}
	switch appErr.Status {
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return SubmissionFailureCapacity
	case http.StatusUnauthorized, http.StatusForbidden:
		return SubmissionFailureAuthorization
	case http.StatusNotFound:
		return SubmissionFailureNotFound
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return SubmissionFailureGeneric
	}

	message := strings.ToLower(appErr.Message)
	for _, bucket := range submissionFailureKeywords {
		for _, keyword := range bucket.keywords {
			if strings.Contains(message, keyword) {
				return bucket.kind
			}
		}
	}
	return SubmissionFailureGeneric
}

// submissionFailure converts a collaborator error into the user facing error for its bucket.
func submissionFailure(err error) *appErrors.Error {
	kind := ClassifySubmissionFailure(err)
	switch kind {
	case SubmissionFailureCapacity:
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "the selected time slots are no longer available or you already requested this course")
	case SubmissionFailureAuthorization:
		return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "you are not allowed to enroll in this course")
	case SubmissionFailureNotFound:
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "course not found")
	default:
		return appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "could not submit enrollment request, please try again")
	}
}
