package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/middleware"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the room left for form fields and part headers on top
// of the largest allowed file.
const multipartOverhead = 1 << 20

type PostHandler struct {
	posts     *services.PostService
	maxUpload int64
	logger    logging.Logger
}

func NewPostHandler(posts *services.PostService, maxUpload int64, logger logging.Logger) *PostHandler {
	return &PostHandler{posts: posts, maxUpload: maxUpload, logger: logger}
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	// 페이지네이션
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		respondError(c, h.logger, common.ErrInvalidPage)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageLimit)))
	if err != nil {
		respondError(c, h.logger, common.ErrInvalidLimit)
		return
	}

	res, err := h.posts.ListPosts(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// CreatePost accepts multipart/form-data with an optional "text" field and an
// optional "media" file.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)

	var media *services.MediaFile
	fh, err := c.FormFile("media")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer f.Close()
		media = mediaFile(fh, f)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respondError(c, h.logger, bindError(err))
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, c.PostForm("text"), media)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ApprovePost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	approvals, err := h.posts.ApprovePost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approvals": approvals})
}

func (h *PostHandler) SharePost(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	shares, err := h.posts.SharePost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, common.ErrInvalidID
	}
	return uint(id), nil
}

func mediaFile(fh *multipart.FileHeader, f multipart.File) *services.MediaFile {
	return &services.MediaFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}
}
