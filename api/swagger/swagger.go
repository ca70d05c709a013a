package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "KL Material Study Hub API",
        "description": "Course materials listing with subject filters, search, usage counters and ratings.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Materials", "description": "Grouped materials listing, tracking and ratings"},
        {"name": "Subjects", "description": "Subject registry and navigation tree"},
        {"name": "Admin", "description": "Catalog maintenance"}
    ],
    "paths": {
        "/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "List materials",
                "parameters": [
                    {"name": "year", "in": "query", "type": "string", "description": "Year number or 'all'"},
                    {"name": "semester", "in": "query", "type": "string", "description": "Semester number or 'all'"},
                    {"name": "subject", "in": "query", "type": "string", "description": "Subject code"},
                    {"name": "q", "in": "query", "type": "string", "description": "Search query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid selection", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Remote listing rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "No listing source succeeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/metadata": {
            "get": {
                "tags": ["Materials"],
                "summary": "Usage counters of one file",
                "parameters": [
                    {"name": "folder", "in": "query", "type": "string", "required": true},
                    {"name": "file", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Material not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/view": {
            "post": {
                "tags": ["Materials"],
                "summary": "Record a card view",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MaterialRef"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/download": {
            "get": {
                "tags": ["Materials"],
                "summary": "Record a download and redirect to the file",
                "parameters": [
                    {"name": "folder", "in": "query", "type": "string", "required": true},
                    {"name": "file", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to the content host"}
                }
            },
            "post": {
                "tags": ["Materials"],
                "summary": "Record a download and resolve its URL",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MaterialRef"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/rate": {
            "post": {
                "tags": ["Materials"],
                "summary": "Rate a file once per browsing session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RateMaterialRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already rated this session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Metadata store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/search-history": {
            "get": {
                "tags": ["Materials"],
                "summary": "Recent searches of this browsing session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Materials"],
                "summary": "Forget the recent searches of this browsing session",
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        },
        "/materials/favorite": {
            "post": {
                "tags": ["Materials"],
                "summary": "Star or unstar a file for this browsing session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MaterialRef"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Material not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/export": {
            "get": {
                "tags": ["Materials"],
                "summary": "Export the narrowed catalog",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Export file", "schema": {"type": "file"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects with the year and semester tree",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{code}": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Get subject by code",
                "parameters": [
                    {"name": "code", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Subject not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/catalog/refresh": {
            "post": {
                "tags": ["Admin"],
                "summary": "Rebuild the materials listing",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "MaterialRef": {
            "type": "object",
            "required": ["folder", "file"],
            "properties": {
                "folder": {"type": "string"},
                "file": {"type": "string"}
            }
        },
        "RateMaterialRequest": {
            "type": "object",
            "required": ["folder", "file", "star"],
            "properties": {
                "folder": {"type": "string"},
                "file": {"type": "string"},
                "star": {"type": "integer", "minimum": 1, "maximum": 5}
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
