// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Checks email and password and returns a signed token carrying the user's id and role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Invalid password", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Unknown user", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/assignjobs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates an assignment for a production user and/or an employee, or re-issues the identical one in place",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Assignments"],
                "summary": "Assign jobs",
                "parameters": [
                    {
                        "description": "Assignment",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.AssignJobRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/costestimates/{id}/resync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Re-applies the estimate's totals to the purchase orders and invoices linked to it",
                "produces": ["application/json"],
                "tags": ["Estimates"],
                "summary": "Re-sync linked documents",
                "parameters": [
                    {"type": "integer", "description": "Estimate ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SyncResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a page of recorded create, update and delete calls, newest first",
                "produces": ["application/json"],
                "tags": ["Audit"],
                "summary": "List audit logs",
                "parameters": [
                    {"type": "integer", "description": "Page number (default: 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default: 20, max: 100)", "name": "pageSize", "in": "query"},
                    {"type": "integer", "description": "Filter by user ID", "name": "userId", "in": "query"},
                    {"type": "string", "description": "Filter by action (create, update, delete)", "name": "action", "in": "query"},
                    {"type": "string", "description": "Filter by entity type, e.g. Invoice", "name": "entityType", "in": "query"},
                    {"type": "integer", "description": "Filter by entity ID", "name": "entityId", "in": "query"},
                    {"type": "string", "description": "Filter by start time (RFC3339)", "name": "startTime", "in": "query"},
                    {"type": "string", "description": "Filter by end time (RFC3339)", "name": "endTime", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AuditLogPage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.AssignJobRequest": {
            "type": "object",
            "properties": {
                "project_id": {"type": "integer"},
                "job_ids": {"type": "array", "items": {"type": "integer"}},
                "employee_id": {"type": "integer"},
                "production_id": {"type": "integer"},
                "task_description": {"type": "string"},
                "time_budget": {"type": "string"}
            }
        },
        "domain.AuditLogPage": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "message": {"type": "string"}
            }
        },
        "domain.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "domain.MessageResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"}
            }
        },
        "domain.SyncResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"},
                "sync": {"type": "object", "additionalProperties": true}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token returned by /auth/login",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Jobdesk API",
	Description:      "Job tracking for a packaging design agency: projects, jobs, the assignment workflow, time logs, estimates, purchase orders and invoices",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
