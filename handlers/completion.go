package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/auth"
	"talkie/server/backend/completions"
	"talkie/server/backend/providers"
	"talkie/server/models"
)

type completionRequest struct {
	Message string           `json:"message" binding:"required"`
	Context string           `json:"context"`
	Model   *models.ModelRef `json:"model"`
	Stream  bool             `json:"stream"`
}

// RegisterCompletionRoutes wires POST /get_completion/. defaults is used
// when the body names no model.
func RegisterCompletionRoutes(rg *gin.RouterGroup, relay *completions.Relay, defaults models.ModelRef) {
	rg.POST("/get_completion/", func(c *gin.Context) { getCompletion(c, relay, defaults) })
}

func getCompletion(c *gin.Context, relay *completions.Relay, defaults models.ModelRef) {
	var dto completionRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ref := defaults
	if dto.Model != nil && dto.Model.Name != "" {
		ref = *dto.Model
	}
	provider, err := providers.ParseProvider(ref.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := completions.Request{
		UserID:   auth.CurrentUser(c).ID,
		Context:  dto.Context,
		Message:  dto.Message,
		Model:    ref.Name,
		Provider: provider,
	}

	if !dto.Stream {
		res, err := relay.Complete(c.Request.Context(), req)
		if err != nil {
			abortProvider(c, provider, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": res.Text, "conversation_id": res.ConversationID})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	_, err = relay.Stream(c.Request.Context(), req, func(chunk string) error {
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	// 已开始输出时只能直接结束响应体
	if err != nil && !c.Writer.Written() {
		c.Header("Content-Type", "application/json; charset=utf-8")
		abortProvider(c, provider, err)
	}
}
