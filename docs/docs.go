// Package docs holds the generated OpenAPI document served under /swagger/.
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
        "/calendar/sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["calendar"],
                "summary": "Add an event to the user's external calendar",
                "parameters": [
                    {"type": "string", "description": "Calendar access token, used when credential is not in the body", "name": "X-Calendar-Token", "in": "header"},
                    {"description": "Event to sync", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.SyncCalendarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: invalid_input, missing_credential or invalid_schedule", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "502": {"description": "error.code: provider_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and store readiness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: server_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "List the events the current user registered for",
                "parameters": [
                    {"type": "string", "description": "Must match the authenticated user when given", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: server_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "Register the current user for an event",
                "parameters": [
                    {"type": "string", "description": "Calendar access token, used when credential is not in the body", "name": "X-Calendar-Token", "in": "header"},
                    {"description": "Registration", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.RegisterSuccessResponse"}},
                    "400": {"description": "error.code: invalid_input", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: already_registered", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: server_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations/calendar.ics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/calendar"],
                "tags": ["calendar"],
                "summary": "Download the current user's registrations as iCalendar",
                "responses": {
                    "200": {"description": "VCALENDAR document", "schema": {"type": "string"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.RegisterRequest": {
            "type": "object",
            "properties": {
                "credential": {"type": "string"},
                "event_id": {"type": "string"},
                "sync_calendar": {"type": "boolean"},
                "user_id": {"type": "string"}
            }
        },
        "controllers.RegisterResponse": {
            "type": "object",
            "properties": {
                "registration": {"$ref": "#/definitions/domain.Registration"},
                "sync": {"$ref": "#/definitions/controllers.SyncStatus"}
            }
        },
        "controllers.RegisterSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.RegisterResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"},
                "success": {"type": "boolean"}
            }
        },
        "controllers.SyncCalendarRequest": {
            "type": "object",
            "properties": {
                "credential": {"type": "string"},
                "event_id": {"type": "string"}
            }
        },
        "controllers.SyncStatus": {
            "type": "object",
            "properties": {
                "created": {"type": "boolean"},
                "error": {"$ref": "#/definitions/helpers.APIError"},
                "external_event_id": {"type": "string"},
                "reason": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "domain.Registration": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "id": {"type": "string"},
                "registered_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "domain.SyncResult": {
            "type": "object",
            "properties": {
                "created": {"type": "boolean"},
                "external_event_id": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Community Events API",
	Description:      "Event registration and external calendar sync.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
