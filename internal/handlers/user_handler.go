package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// @Summary      Current user profile
// @Tags         Users
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) Me(c *gin.Context) {
	userID := getUserID(c)
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// @Summary      Link a Telegram chat for assignment pings
// @Tags         Users
// @Accept       json
// @Success      200  {object}  map[string]string
// @Router       /users/telegram [post]
// @Security     BearerAuth
func (h *UserHandler) LinkTelegram(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		ChatID int64 `json:"chat_id" binding:"required"`
		Notify bool  `json:"notify"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.LinkTelegram(c.Request.Context(), userID, req.ChatID, req.Notify); err != nil {
		log.Printf("[user][telegram][err] user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link telegram"})
		return
	}
	log.Printf("[user][telegram][ok] user=%d chat=%d notify=%v", userID, req.ChatID, req.Notify)
	c.JSON(http.StatusOK, gin.H{"message": "telegram linked"})
}
