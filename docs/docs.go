// Package docs holds the OpenAPI description served under /swagger.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Discard the in-memory tracker session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/tracker/today": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tracker"],
                "summary": "Today's record with per-category completion",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/tracker/goals/{category}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tracker"],
                "summary": "Set today's goal of a quantitative category",
                "parameters": [
                    {"type": "string", "description": "academic, physical or character", "name": "category", "in": "path", "required": true},
                    {"description": "new goal", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"goal": {"type": "number"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/mutationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/tracker/progress/{category}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tracker"],
                "summary": "Add progress to today's record",
                "parameters": [
                    {"type": "string", "description": "academic, physical or character", "name": "category", "in": "path", "required": true},
                    {"description": "amount to add", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"amount": {"type": "number"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/mutationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/tracker/social-check/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tracker"],
                "summary": "Toggle the character social check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/mutationResult"}}}
            }
        },
        "/tracker/mindset/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tracker"],
                "summary": "Toggle the mindset affirmation",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/mutationResult"}}}
            }
        },
        "/tracker/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tracker"],
                "summary": "Zero today's progress, keep goals",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/mutationResult"}}}
            }
        },
        "/tracker/notices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tracker"],
                "summary": "Drain pending status notices such as failed saves",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tracker"],
                "summary": "The full history document as stored",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analysis": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Current vs previous window, ready for a chart",
                "parameters": [
                    {"type": "string", "default": "week", "description": "week, month, year or all", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/analysis/raw": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Engine output with per-day completions",
                "parameters": [
                    {"type": "string", "default": "week", "description": "week, month, year or all", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "timezone": {"type": "string"}
            }
        },
        "loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "timezone": {"type": "string"}
            }
        },
        "tokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/userResponse"}
            }
        },
        "mutationResult": {
            "type": "object",
            "properties": {
                "record": {"type": "object"},
                "message": {"type": "string"}
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Growth Tracker API",
	Description:      "Daily goals across academic, physical, character and mindset, with period-over-period trend analysis.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
