// Package docs holds the Swagger 2.0 document served under /swagger.
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
        "/users": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["users"], "summary": "List users",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.UserResponse"}}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Register a user",
                "parameters": [{"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateUserRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["users"], "summary": "Get a user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/auth/login": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "Log in",
                "parameters": [{"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/auth/logout": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Log out", "responses": {"204": {"description": "No Content"}}}
        },
        "/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["auth"], "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}}
        },
        "/cost-centers": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["cost-centers"], "summary": "List cost centers",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.CostCenterResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["cost-centers"], "summary": "Create a cost center",
                "parameters": [{"description": "Cost center", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateCostCenterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.CostCenterResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/cost-centers/{id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["cost-centers"], "summary": "Get a cost center",
                "parameters": [{"type": "integer", "description": "Cost center ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CostCenterResponse"}}}}
        },
        "/cost-centers/{id}/children": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["cost-centers"], "summary": "List child cost centers",
                "parameters": [{"type": "integer", "description": "Parent cost center ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.CostCenterResponse"}}}}}
        },
        "/account-plans": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["account-plans"], "summary": "List account plans",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.AccountPlanResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["account-plans"], "summary": "Create an account plan",
                "parameters": [{"description": "Account plan", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateAccountPlanRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AccountPlanResponse"}}}}
        },
        "/account-plans/{id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["account-plans"], "summary": "Get an account plan",
                "parameters": [{"type": "integer", "description": "Account plan ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AccountPlanResponse"}}}}
        },
        "/budgets": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["budgets"], "summary": "List budgets",
                "parameters": [{"type": "integer", "name": "year", "in": "query"}, {"type": "integer", "name": "month", "in": "query"}, {"type": "integer", "name": "costCenterId", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.BudgetResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["budgets"], "summary": "Allocate a budget line",
                "parameters": [{"description": "Budget", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateBudgetRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.BudgetResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/budgets/{id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["budgets"], "summary": "Get a budget",
                "parameters": [{"type": "integer", "description": "Budget ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BudgetResponse"}}}}
        },
        "/budgets/{id}/summary": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["budgets"], "summary": "Budget ledger summary",
                "parameters": [{"type": "integer", "description": "Budget ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BudgetSummaryResponse"}}}}
        },
        "/requisitions": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["requisitions"], "summary": "List requisitions",
                "parameters": [{"type": "integer", "name": "year", "in": "query"}, {"type": "integer", "name": "month", "in": "query"}, {"type": "integer", "name": "costCenterId", "in": "query"}, {"type": "string", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.RequisitionResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["requisitions"], "summary": "Submit a requisition",
                "parameters": [{"description": "Requisition", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubmitRequisitionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.RequisitionResponse"}},
                    "400": {"description": "Validation error or budget exceeded", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/requisitions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["requisitions"], "summary": "Get a requisition",
                "parameters": [{"type": "integer", "description": "Requisition ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RequisitionResponse"}}}}
        },
        "/requisitions/{id}/approve": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["requisitions"], "summary": "Approve a requisition",
                "parameters": [{"type": "integer", "description": "Requisition ID", "name": "id", "in": "path", "required": true},
                    {"description": "Acting manager", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.DecideRequisitionRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RequisitionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/requisitions/{id}/reject": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["requisitions"], "summary": "Reject a requisition",
                "parameters": [{"type": "integer", "description": "Requisition ID", "name": "id", "in": "path", "required": true},
                    {"description": "Acting manager", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.DecideRequisitionRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RequisitionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/requisitions/{id}/attachments": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["attachments"], "summary": "List a requisition's attachments",
                "parameters": [{"type": "integer", "description": "Requisition ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.AttachmentResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "produces": ["application/json"], "tags": ["attachments"], "summary": "Attach an image to a requisition",
                "parameters": [{"type": "integer", "description": "Requisition ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "JPEG or PNG image, at most 5MB", "name": "file", "in": "formData", "required": true}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AttachmentResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        }
    },
    "definitions": {
        "handler.ProblemDetails": {"type": "object", "properties": {
            "type": {"type": "string"}, "title": {"type": "string"}, "status": {"type": "integer"},
            "detail": {"type": "string"}, "instance": {"type": "string"},
            "errors": {"type": "array", "items": {"$ref": "#/definitions/handler.ValidationError"}},
            "limit": {"type": "string"}, "committed": {"type": "string"}, "requested": {"type": "string"},
            "currentStatus": {"type": "string"}}},
        "handler.ValidationError": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}},
        "handler.CreateUserRequest": {"type": "object", "required": ["name", "email", "password", "role"], "properties": {
            "name": {"type": "string", "maxLength": 100}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 6},
            "role": {"type": "string", "enum": ["collaborator", "manager", "finance"]}}},
        "handler.UserResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handler.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.LoginResponse": {"type": "object", "properties": {
            "token": {"type": "string"}, "tokenId": {"type": "string"}, "tokenPrefix": {"type": "string"}, "createdAt": {"type": "string"},
            "user": {"$ref": "#/definitions/handler.UserResponse"}}},
        "handler.CreateCostCenterRequest": {"type": "object", "required": ["name", "code", "managerId"], "properties": {
            "name": {"type": "string"}, "code": {"type": "string"}, "managerId": {"type": "integer"}, "parentId": {"type": "integer"}}},
        "handler.CostCenterResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "code": {"type": "string"}, "managerId": {"type": "integer"},
            "managerName": {"type": "string"}, "parentId": {"type": "integer"}, "parentName": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handler.CreateAccountPlanRequest": {"type": "object", "required": ["name"], "properties": {
            "name": {"type": "string"}, "code": {"type": "string"}, "codeConta": {"type": "string"}}},
        "handler.AccountPlanResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "code": {"type": "string"}, "codeConta": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handler.CreateBudgetRequest": {"type": "object", "required": ["costCenterId", "accountPlanId", "year", "month", "allocatedAmount"], "properties": {
            "costCenterId": {"type": "integer"}, "accountPlanId": {"type": "integer"},
            "year": {"type": "integer", "minimum": 2020, "maximum": 2100}, "month": {"type": "integer", "minimum": 1, "maximum": 12},
            "allocatedAmount": {"type": "string"}}},
        "handler.BudgetResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "costCenterId": {"type": "integer"}, "costCenterName": {"type": "string"},
            "accountPlanId": {"type": "integer"}, "accountPlanName": {"type": "string"}, "year": {"type": "integer"},
            "month": {"type": "integer"}, "allocatedAmount": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handler.BudgetSummaryResponse": {"type": "object", "properties": {
            "budget": {"$ref": "#/definitions/handler.BudgetResponse"}, "allocated": {"type": "string"},
            "committed": {"type": "string"}, "remaining": {"type": "string"}}},
        "handler.SubmitRequisitionRequest": {"type": "object", "required": ["costCenterId", "accountPlanId", "description", "requestedAmount"], "properties": {
            "requesterId": {"type": "integer"}, "costCenterId": {"type": "integer"}, "accountPlanId": {"type": "integer"},
            "description": {"type": "string", "maxLength": 500}, "requestedAmount": {"type": "string"}}},
        "handler.DecideRequisitionRequest": {"type": "object", "properties": {"actingManagerId": {"type": "integer"}}},
        "handler.RequisitionResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "requesterId": {"type": "integer"}, "requesterName": {"type": "string"},
            "costCenterId": {"type": "integer"}, "costCenterName": {"type": "string"},
            "accountPlanId": {"type": "integer"}, "accountPlanName": {"type": "string"},
            "description": {"type": "string"}, "requestedAmount": {"type": "string"}, "requestedAt": {"type": "string"},
            "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
            "approverId": {"type": "integer"}, "approverName": {"type": "string"}, "decidedAt": {"type": "string"}}},
        "handler.AttachmentResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "requisitionId": {"type": "integer"}, "uploadedBy": {"type": "integer"},
            "fileName": {"type": "string"}, "createdAt": {"type": "string"},
            "urls": {"type": "object", "properties": {"thumbnail": {"type": "string"}, "display": {"type": "string"}, "original": {"type": "string"}}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Budget Requisition API",
	Description:      "Budget allocation and spending requisition approval.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
