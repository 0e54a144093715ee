// Package docs เอกสาร Swagger ของ API เสิร์ฟที่ /swagger
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
        "/attendance/clock-in": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Clock in",
                "parameters": [{"description": "GPS sample", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ClockRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/attendance.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/attendance/clock-out": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Clock out",
                "parameters": [{"description": "GPS sample", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ClockRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/attendance.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Today's status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/attendance.SessionState"}}}
            }
        },
        "/attendance/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Recent attendance",
                "parameters": [{"type": "integer", "description": "max records (default 7)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AttendanceRecord"}}}}
            }
        },
        "/admin/attendance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Attendance in a date range",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AttendanceRecord"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/admin/attendance/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["admin"],
                "summary": "Export attendance as Excel",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DD", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "end", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        },
        "/auth/google": {
            "get": {"produces": ["application/json"], "tags": ["auth"], "summary": "Google OAuth URL", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/google/callback": {
            "get": {"tags": ["auth"], "summary": "Google OAuth callback", "responses": {"302": {"description": "Found"}}}
        },
        "/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/logout": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "controllers.ClockRequest": {
            "type": "object",
            "required": ["lat", "lng"],
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {"status": {"type": "integer"}, "message": {"type": "string"}, "code": {"type": "string"}}
        },
        "models.Location": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}, "city": {"type": "string"}, "area": {"type": "string"}}
        },
        "models.AttendanceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "date": {"type": "string"},
                "timeIn": {"type": "string"},
                "timeOut": {"type": "string"},
                "locationIn": {"$ref": "#/definitions/models.Location"},
                "locationOut": {"$ref": "#/definitions/models.Location"},
                "originalTimeIn": {"type": "string"},
                "originalTimeOut": {"type": "string"},
                "splitId": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "attendance.SessionState": {
            "type": "object",
            "properties": {
                "open": {"$ref": "#/definitions/models.AttendanceRecord"},
                "lastClosed": {"$ref": "#/definitions/models.AttendanceRecord"},
                "today": {"type": "array", "items": {"$ref": "#/definitions/models.AttendanceRecord"}}
            }
        },
        "attendance.Result": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "decision": {"type": "object"},
                "record": {"$ref": "#/definitions/models.AttendanceRecord"},
                "created": {"type": "array", "items": {"$ref": "#/definitions/models.AttendanceRecord"}},
                "recordIds": {"type": "array", "items": {"type": "string"}},
                "location": {"$ref": "#/definitions/models.Location"},
                "reconciling": {"type": "boolean"},
                "state": {"$ref": "#/definitions/attendance.SessionState"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StaffClock API",
	Description:      "Staff attendance: clock in/out, timesheets and export",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
