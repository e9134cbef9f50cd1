package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talkie/server/backend/auth"
	"talkie/server/backend/constants"
	"talkie/server/models"
)

// RegisterSettingsRoutes wires the per-user model settings.
func RegisterSettingsRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	rg.GET("/settings", func(c *gin.Context) { loadSettings(c, db) })
	rg.PUT("/settings", func(c *gin.Context) { saveSettings(c, db) })
}

func loadSettings(c *gin.Context, db *gorm.DB) {
	var rows []models.ModelSetting
	if err := db.WithContext(c.Request.Context()).Where("user_id = ?", auth.CurrentUser(c).ID).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.SettingName] = r.SettingValue
	}
	c.JSON(http.StatusOK, out)
}

func saveSettings(c *gin.Context, db *gorm.DB) {
	var payload map[string]string
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrEmptyContent})
		return
	}
	userID := auth.CurrentUser(c).ID
	rows := make([]models.ModelSetting, 0, len(payload))
	for name, value := range payload {
		rows = append(rows, models.ModelSetting{UserID: userID, SettingName: name, SettingValue: value})
	}
	// upsert on (user_id, setting_name)
	err := db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "setting_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
	}).Create(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": constants.MessageSettingsSaved})
}
