package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/constants"
	"talkie/server/backend/providers"
)

// abortProvider maps a provider failure onto the HTTP error contract.
func abortProvider(c *gin.Context, p providers.Provider, err error) {
	switch {
	case errors.Is(err, providers.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, providers.ErrProviderNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fmt.Sprintf(constants.ErrProviderUnavailable, p)})
	case providers.IsUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf(constants.ErrUpstream, err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
