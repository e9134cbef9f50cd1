package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/providers"
	"talkie/server/models"
)

// RegisterModelRoutes wires GET /get-models. lister may be nil.
func RegisterModelRoutes(rg *gin.RouterGroup, lister providers.ModelLister, logger *slog.Logger) {
	rg.GET("/get-models", func(c *gin.Context) { listModels(c, lister, logger) })
}

// listModels never fails: an unreachable Ollama yields an empty list.
func listModels(c *gin.Context, lister providers.ModelLister, logger *slog.Logger) {
	out := []models.ExternalModel{}
	if lister != nil {
		list, err := lister.ListModels(c.Request.Context())
		if err != nil {
			logger.Warn("list ollama models", "error", err)
		} else {
			out = list
		}
	}
	c.JSON(http.StatusOK, out)
}
