package handlers

import (
	"net/http"
	"strconv"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/common"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/middleware"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  *services.UserService
	logger logging.Logger
}

func NewUserHandler(users *services.UserService, logger logging.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	profile, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req struct {
		FirstName    *string                 `json:"firstName" binding:"omitnil,min=1,max=120"`
		LastName     *string                 `json:"lastName" binding:"omitnil,max=120"`
		Role         *string                 `json:"role" binding:"omitnil,oneof=client farmer skilled"`
		Location     *string                 `json:"location" binding:"omitnil,max=200"`
		Bio          *string                 `json:"bio"`
		Skills       *[]string               `json:"skills"`
		Portfolio    *[]models.PortfolioItem `json:"portfolio"`
		Photos       *[]string               `json:"photos"`
		Companies    *[]string               `json:"companies"`
		AvatarURL    *string                 `json:"avatarUrl" binding:"omitnil,max=1024"`
		Rate         *float64                `json:"rate" binding:"omitnil,gte=0"`
		Availability *string                 `json:"availability" binding:"omitnil,max=256"`
		Discoverable *bool                   `json:"discoverable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, services.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Location:     req.Location,
		Bio:          req.Bio,
		Skills:       req.Skills,
		Portfolio:    req.Portfolio,
		Photos:       req.Photos,
		Companies:    req.Companies,
		AvatarURL:    req.AvatarURL,
		Rate:         req.Rate,
		Availability: req.Availability,
		Discoverable: req.Discoverable,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Search(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultSearchLimit)))
	if err != nil {
		respondError(c, h.logger, common.ErrInvalidLimit)
		return
	}

	users, err := h.users.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
