package handlers

import (
	"errors"
	"net/http"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploads *services.UploadService
	maxSize int64
	logger  logging.Logger
}

func NewUploadHandler(uploads *services.UploadService, maxSize int64, logger logging.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxSize: maxSize, logger: logger}
}

// Upload stores the multipart "file" field and returns its public URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			respondError(c, h.logger, common.ErrMissingFile)
			return
		}
		respondError(c, h.logger, bindError(err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	stored, err := h.uploads.Store(c.Request.Context(), mediaFile(fh, f))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": stored.URL})
}
