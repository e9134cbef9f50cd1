package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"talkie/server/backend/auth"
	"talkie/server/backend/constants"
	"talkie/server/models"
)

// RegisterConversationRoutes wires the history endpoints. Every query is
// scoped to the authenticated user.
func RegisterConversationRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	rg.GET("/conversations", func(c *gin.Context) { listConversations(c, db) })
	rg.GET("/conversation/:id", func(c *gin.Context) { getConversation(c, db) })
}

func listConversations(c *gin.Context, db *gorm.DB) {
	user := auth.CurrentUser(c)
	out := []models.ConversationSummary{}
	err := db.WithContext(c.Request.Context()).
		Model(&models.Conversation{}).
		Select("conversations.id, conversations.user_id, COUNT(messages.id) AS message_count").
		Joins("LEFT JOIN messages ON messages.conversation_id = conversations.id").
		Where("conversations.user_id = ?", user.ID).
		Group("conversations.id, conversations.user_id").
		Order("conversations.id").
		Scan(&out).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func getConversation(c *gin.Context, db *gorm.DB) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrNotFound})
		return
	}
	user := auth.CurrentUser(c)

	var conv models.Conversation
	err = db.WithContext(c.Request.Context()).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	msgs := conv.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, models.ConversationDetail{ID: conv.ID, UserID: conv.UserID, Messages: msgs})
}
