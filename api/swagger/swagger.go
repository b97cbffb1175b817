package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SwimLink API",
        "description": "Swim course browsing, slot selection and enrollment requests.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Courses", "description": "Course browsing and weekly availability"},
        {"name": "Enrollment", "description": "Slot selection sessions for students"},
        {"name": "Enrollment Requests", "description": "Submitted requests and instructor review"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List swim courses",
                "parameters": [
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "string", "enum": ["BEGINNER", "INTERMEDIATE", "ADVANCED"]},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["title", "created_at", "level"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/availability": {
            "get": {
                "tags": ["Courses"],
                "summary": "Weekly availability of a course",
                "description": "Flexible courses report every day empty and no bookable slots.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseAvailability"}}
                }
            }
        },
        "/courses/{id}/availability/cache": {
            "delete": {
                "tags": ["Courses"],
                "summary": "Drop cached availability after a schedule change",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/courses/{id}/enrollment-sessions": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Start an enrollment session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EnrollmentSessionView"}}
                }
            }
        },
        "/enrollment-sessions/{sessionId}": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Get an enrollment session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EnrollmentSessionView"}},
                    "410": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollment"],
                "summary": "Abandon an enrollment session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollment-sessions/{sessionId}/toggle": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Toggle a time slot",
                "description": "Cap violations come back with status 200 and lastRejection set.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectedSlot"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EnrollmentSessionView"}},
                    "409": {"description": "Submission in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-sessions/{sessionId}/selection": {
            "delete": {
                "tags": ["Enrollment"],
                "summary": "Clear the selection",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EnrollmentSessionView"}}
                }
            }
        },
        "/enrollment-sessions/{sessionId}/submit": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Submit the enrollment request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "EMPTY_SELECTION or INVALID_START_DATE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict or submission in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Submission failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-requests": {
            "get": {
                "tags": ["Enrollment Requests"],
                "summary": "List enrollment requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED", "CANCELLED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-requests/{id}": {
            "get": {
                "tags": ["Enrollment Requests"],
                "summary": "Get an enrollment request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment-requests/{id}/status": {
            "patch": {
                "tags": ["Enrollment Requests"],
                "summary": "Approve, reject or cancel a pending request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not pending anymore", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/enrollment-requests/export": {
            "get": {
                "tags": ["Enrollment Requests"],
                "summary": "Export enrollment requests of a course",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "SelectedSlot": {
            "type": "object",
            "required": ["dayOfWeek", "startTime", "endTime"],
            "properties": {
                "dayOfWeek": {"type": "string", "example": "monday"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:00"}
            }
        },
        "TimeRange": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"},
                "capacity": {"type": "integer"},
                "enrolled": {"type": "integer"}
            }
        },
        "DayAvailability": {
            "type": "object",
            "properties": {
                "selected": {"type": "boolean"},
                "ranges": {"type": "array", "items": {"$ref": "#/definitions/TimeRange"}}
            }
        },
        "BookableSlot": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "capacity": {"type": "integer"},
                "enrolled": {"type": "integer"},
                "availableSpots": {"type": "integer"}
            }
        },
        "SessionSlot": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "capacity": {"type": "integer"},
                "enrolled": {"type": "integer"},
                "availableSpots": {"type": "integer"},
                "selected": {"type": "boolean"},
                "bookable": {"type": "boolean"}
            }
        },
        "CourseAvailability": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "flexible": {"type": "boolean"},
                "days": {"type": "object", "additionalProperties": {"$ref": "#/definitions/DayAvailability"}},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/BookableSlot"}}
            }
        },
        "SelectionRejection": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "enum": ["DAILY_CAP_EXCEEDED", "TOTAL_CAP_EXCEEDED"]},
                "message": {"type": "string"},
                "slot": {"$ref": "#/definitions/SelectedSlot"}
            }
        },
        "EnrollmentSessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "courseId": {"type": "string"},
                "flexible": {"type": "boolean"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/SessionSlot"}},
                "selected": {"type": "array", "items": {"$ref": "#/definitions/SelectedSlot"}},
                "dayCounts": {"type": "object", "additionalProperties": {"type": "integer"}},
                "remaining": {"type": "integer"},
                "limits": {
                    "type": "object",
                    "properties": {
                        "maxTotal": {"type": "integer"},
                        "maxPerDay": {"type": "integer"}
                    }
                },
                "lastRejection": {"$ref": "#/definitions/SelectionRejection"},
                "submitting": {"type": "boolean"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "SubmitEnrollmentRequest": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string", "example": "2026-03-09"},
                "notes": {"type": "string"}
            }
        },
        "UpdateEnrollmentStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["APPROVED", "REJECTED", "CANCELLED"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
