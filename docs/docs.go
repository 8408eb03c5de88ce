// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Returns the account the session token belongs to.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get the authenticated user",
                "responses": {
                    "200": {"description": "Current user", "schema": {"$ref": "#/definitions/users.UserResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Account no longer exists", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "500": {"description": "Server error", "schema": {"type": "string"}}
                }
            }
        },
        "/api/users": {
            "post": {
                "description": "Creates an account and returns a session token for it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register user",
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "registerBody",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/users.RegisterRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Account created", "schema": {"$ref": "#/definitions/users.TokenResponse"}},
                    "400": {"description": "Invalid input, or the email is already registered", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "500": {"description": "Server error", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "apperror.ErrorResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/apperror.FieldError"}}
            }
        },
        "apperror.FieldError": {
            "type": "object",
            "properties": {
                "location": {"type": "string", "example": "body"},
                "msg": {"type": "string", "example": "Please include a valid email"},
                "param": {"type": "string", "example": "email"}
            }
        },
        "users.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "name": {"type": "string", "example": "Alice"},
                "password": {"type": "string", "example": "secret1"}
            }
        },
        "users.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."}
            }
        },
        "users.UserResponse": {
            "type": "object",
            "properties": {
                "avatar": {"type": "string"},
                "date": {"type": "string", "example": "2026-01-15T10:30:00Z"},
                "email": {"type": "string", "example": "alice@example.com"},
                "id": {"type": "string", "example": "3f0c8a52-7f0e-4a53-9d35-1c0f3b1e2a4d"},
                "name": {"type": "string", "example": "Alice"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Session token returned by POST /api/users",
            "type": "apiKey",
            "name": "x-auth-token",
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
	Title:            "DevConnector API",
	Description:      "User registration and session API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
