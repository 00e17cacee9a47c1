package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/pdfshop/internal/domain/errors"
)

// FileHandler streams blobs behind signed links.
type FileHandler struct {
	facade FileFacade
	logger *slog.Logger
}

// NewFileHandler creates FileHandler instance.
func NewFileHandler(facade FileFacade, logger *slog.Logger) *FileHandler {
	return &FileHandler{facade: facade, logger: logger}
}

// Serve handles GET /files/*ref.
func (h *FileHandler) Serve(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	if err := h.facade.VerifyFile(ref, c.Query("expires"), c.Query("sig")); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrExpired):
			c.Status(http.StatusGone)
		default:
			c.Status(http.StatusForbidden)
		}
		return
	}

	file, err := h.facade.OpenFile(ref)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "open blob failed", slog.String("ref", ref), slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "stat blob failed", slog.String("ref", ref), slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ref}))
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, ref, info.ModTime(), file)
}
