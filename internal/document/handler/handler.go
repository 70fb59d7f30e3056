package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/docregistry/docregistry/internal/document"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/gin-gonic/gin"
)

const publishedMessage = "Document published successfully"

// RegisterDocumentRoutes mounts the document API and the vocabulary endpoint on r.
func RegisterDocumentRoutes(r gin.IRouter, svc service.Service) {
	r.GET("/api/documents", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, "list documents", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// static segment; gin prefers it over the :id wildcard
	r.GET("/api/documents/uncategorized", func(c *gin.Context) {
		list, err := svc.ListUncategorized(c.Request.Context())
		if err != nil {
			writeError(c, "list uncategorized documents", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/api/documents/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		d, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, "get document", err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	r.POST("/api/documents", func(c *gin.Context) {
		var req document.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, "create document", document.Invalid("", "invalid request body: "+err.Error()))
			return
		}
		d, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, "create document", err)
			return
		}
		c.JSON(http.StatusCreated, d)
	})

	r.PUT("/api/documents/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var p document.Patch
		// an empty body is an empty patch
		if err := c.ShouldBindJSON(&p); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, "update document", document.Invalid("", "invalid request body: "+err.Error()))
			return
		}
		d, err := svc.Update(c.Request.Context(), id, p)
		if err != nil {
			writeError(c, "update document", err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	r.PUT("/api/documents/:id/publish", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		d, err := svc.Publish(c.Request.Context(), id)
		if err != nil {
			writeError(c, "publish document", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": publishedMessage, "document": d})
	})

	r.GET("/api/vocabulary", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"categories": document.Categories(),
			"statuses":   document.Statuses(),
		})
	})
}

func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Warnf("%s %s: invalid document id %q", c.Request.Method, c.Request.URL.Path, raw)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "details": "document id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError logs err and maps it onto the error body.
func writeError(c *gin.Context, op string, err error) {
	var ve *document.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.Warnf("%s: %v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "details": ve.Detail})
	case errors.Is(err, document.ErrNotFound):
		logger.Warnf("%s: %v", op, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": "document not found"})
	default:
		logger.Errorf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": "failed to " + op})
	}
}
