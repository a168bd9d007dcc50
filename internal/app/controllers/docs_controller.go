package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DocsController serves the static API description payload. The endpoint
// is deliberately unauthenticated.
type DocsController struct {
	baseURL string
}

// NewDocsController creates a new DocsController
func NewDocsController(baseURL string) *DocsController {
	return &DocsController{baseURL: baseURL}
}

// Docs returns the API description.
// GET /api/docs
func (c *DocsController) Docs(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"api_version": "1.0",
		"base_url":    c.baseURL + "/api",
		"authentication": gin.H{
			"type":   "API Key",
			"header": "X-API-Key",
		},
		"endpoints": []gin.H{
			{
				"method":        "GET",
				"path":          "/api/students",
				"description":   "Get all students",
				"auth_required": true,
			},
			{
				"method":        "GET",
				"path":          "/api/students/{id}",
				"description":   "Get a single student by ID",
				"auth_required": true,
			},
			{
				"method":        "POST",
				"path":          "/api/students",
				"description":   "Create a new student",
				"auth_required": true,
				"body": gin.H{
					"name": "string (required)",
					"age":  "integer (optional)",
					"city": "string (optional)",
				},
			},
			{
				"method":        "PUT",
				"path":          "/api/students/{id}",
				"description":   "Update a student; omitted fields keep stored values",
				"auth_required": true,
				"body": gin.H{
					"name": "string (optional)",
					"age":  "integer (optional)",
					"city": "string (optional)",
				},
			},
			{
				"method":        "DELETE",
				"path":          "/api/students/{id}",
				"description":   "Delete a student",
				"auth_required": true,
			},
			{
				"method":        "GET",
				"path":          "/api/stats",
				"description":   "Get statistics about students",
				"auth_required": true,
			},
		},
	})
}
