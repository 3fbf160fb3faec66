package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Batchplan API",
        "description": "Batch formation and faculty load balancing for cohort programmes.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Batches", "description": "Batch allocation and rosters"},
        {"name": "Faculty", "description": "Supervisor workload and attendance"},
        {"name": "Applications", "description": "Registration and admin review"},
        {"name": "Admin", "description": "Overview counters"}
    ],
    "paths": {
        "/admin/batches/create": {
            "post": {
                "tags": ["Batches"],
                "summary": "Create batches for a cohort year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Allocation already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Run aborted; completed batches are returned in data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/faculty-assignments": {
            "post": {
                "tags": ["Batches"],
                "summary": "Assign a faculty member to a batch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignFacultyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity exceeded or duplicate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/pending/{year}": {
            "get": {
                "tags": ["Batches"],
                "summary": "Show the unassigned students of a year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Admin overview counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications awaiting review",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/applications/{id}/approve": {
            "post": {
                "tags": ["Applications"],
                "summary": "Approve an application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/applications/{id}/reject": {
            "post": {
                "tags": ["Applications"],
                "summary": "Reject an application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ReviewApplicationRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/applications": {
            "post": {
                "tags": ["Applications"],
                "summary": "Apply for a student or faculty account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Contact already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches": {
            "get": {
                "tags": ["Batches"],
                "summary": "List batches",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "all", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}": {
            "get": {
                "tags": ["Batches"],
                "summary": "Get a batch with its students and supervisors",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Faculty not assigned to the batch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/roster.pdf": {
            "get": {
                "tags": ["Batches"],
                "summary": "Download a batch roster as PDF",
                "produces": ["application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/batches/{id}/roster.csv": {
            "get": {
                "tags": ["Batches"],
                "summary": "Download a batch roster as CSV",
                "produces": ["text/csv"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/faculty/assignments": {
            "get": {
                "tags": ["Faculty"],
                "summary": "List the caller's supervised batches",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/attendance": {
            "post": {
                "tags": ["Faculty"],
                "summary": "Submit weekly attendance for a supervised batch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the batch supervisor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/marks": {
            "post": {
                "tags": ["Faculty"],
                "summary": "Record a weekly mark for a student in a supervised batch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitMarksRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the batch supervisor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/me": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the caller's batch, supervisors, marks and notifications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No student profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/notifications": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Publish a notification",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNotificationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications, newest first",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitMarksRequest": {
            "type": "object",
            "required": ["batchId", "studentId", "subject", "weekNumber", "year", "marks"],
            "properties": {
                "batchId": {"type": "string"},
                "studentId": {"type": "string"},
                "subject": {"type": "string", "maxLength": 100},
                "weekNumber": {"type": "integer", "minimum": 1, "maximum": 53},
                "year": {"type": "integer", "minimum": 2000, "maximum": 2100},
                "marks": {"type": "integer", "minimum": 0, "maximum": 100}
            }
        },
        "CreateNotificationRequest": {
            "type": "object",
            "required": ["title", "message", "toType"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "message": {"type": "string"},
                "toType": {"type": "string", "enum": ["all", "faculty", "students", "specific"]},
                "recipientIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateBatchesRequest": {
            "type": "object",
            "required": ["year"],
            "properties": {
                "year": {"type": "integer", "minimum": 2000, "maximum": 2100}
            }
        },
        "AssignFacultyRequest": {
            "type": "object",
            "required": ["facultyId", "batchId"],
            "properties": {
                "facultyId": {"type": "string"},
                "batchId": {"type": "string"},
                "year": {"type": "integer", "description": "Optional; must match the batch year"}
            }
        },
        "ApplicationRequest": {
            "type": "object",
            "required": ["role", "fullName", "email", "phone"],
            "properties": {
                "role": {"type": "string", "enum": ["STUDENT", "FACULTY"]},
                "fullName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "enrollmentId": {"type": "string"},
                "course": {"type": "string"},
                "year": {"type": "integer"},
                "designation": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "ReviewApplicationRequest": {
            "type": "object",
            "properties": {
                "remarks": {"type": "string", "maxLength": 500}
            }
        },
        "SubmitAttendanceRequest": {
            "type": "object",
            "required": ["batchId", "weekNumber", "year", "records"],
            "properties": {
                "batchId": {"type": "string"},
                "weekNumber": {"type": "integer", "minimum": 1, "maximum": 53},
                "year": {"type": "integer"},
                "records": {"type": "object", "additionalProperties": {"type": "string", "enum": ["present", "absent"]}}
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
