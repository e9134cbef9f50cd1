package completions

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"talkie/server/models"
)

// Recorder persists finished exchanges.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder returns a Recorder writing to db.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record stores a new Conversation holding the user turn followed by the
// assistant turn. Either all three rows are written or none.
func (r *Recorder) Record(ctx context.Context, userID uint, userText, assistantText string) (uint, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv = models.Conversation{UserID: userID}
		if err := tx.Create(&conv).Error; err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		turns := []models.Message{
			{ConversationID: conv.ID, Sender: models.SenderUser, Text: userText},
			{ConversationID: conv.ID, Sender: models.SenderAssistant, Text: assistantText},
		}
		// 逐条插入，保证时间戳顺序与发送顺序一致
		for i := range turns {
			if err := tx.Create(&turns[i]).Error; err != nil {
				return fmt.Errorf("create %s message: %w", turns[i].Sender, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return conv.ID, nil
}
