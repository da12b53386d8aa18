package handlers

import (
	"net/http"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/middleware"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
	logger   logging.Logger
}

func NewCommentHandler(comments *services.CommentService, logger logging.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, err := parseID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), postID, userID, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
