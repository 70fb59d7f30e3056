package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the document registry.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docregistry - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the registry endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docregistry", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Addendum": { "type": "object", "properties": { "id": {"type":"integer"}, "name": {"type":"string"}, "status": {"type":"string"}, "publicationDate": {"type":"string","nullable":true} } },
      "Document": { "type": "object", "properties": { "id": {"type":"integer"}, "name": {"type":"string"}, "category": {"type":"string"}, "publicationDate": {"type":"string","nullable":true}, "status": {"type":"string"}, "content": {"type":"string"}, "parentId": {"type":"integer"}, "addendums": {"type":"array","items":{"$ref":"#/components/schemas/Addendum"}} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "details": {"type":"string"} } }
    }
  },
  "paths": {
    "/api/documents": {
      "get": { "summary": "List top-level documents with their addendums", "responses": { "200": { "description": "documents", "content": { "application/json": { "schema": {"type":"array","items":{"$ref":"#/components/schemas/Document"}}}}}, "500": { "description": "store error" } } },
      "post": {
        "summary": "Create a draft document",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","category"],"properties":{"name":{"type":"string"},"category":{"type":"string"},"content":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created document" }, "400": { "description": "validation error" } }
      }
    },
    "/api/documents/uncategorized": {
      "get": { "summary": "List top-level documents without a category", "responses": { "200": { "description": "documents" } } }
    },
    "/api/documents/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"integer"} } ],
      "get": { "summary": "Get a document", "responses": { "200": { "description": "document" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } } },
      "put": {
        "summary": "Update any subset of name, category, status, parent_id",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"category":{"type":"string","nullable":true},"status":{"type":"string"},"parent_id":{"type":"integer","nullable":true}}}}}},
        "responses": { "200": { "description": "updated document" }, "400": { "description": "validation error" }, "404": { "description": "not found" } }
      }
    },
    "/api/documents/{id}/publish": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"integer"} } ],
      "put": { "summary": "Publish a document with today's date", "responses": { "200": { "description": "success, message and document" }, "404": { "description": "not found" } } }
    },
    "/api/vocabulary": { "get": { "summary": "Status and category vocabularies", "responses": { "200": { "description": "categories and statuses" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition" } } } }
  }
}`
