package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/constants"
	"talkie/server/models"
)

// TokenFromRequest reads "Authorization: Token <value>", falling back to
// the token query parameter used by websocket clients.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Token") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireToken aborts with 401 unless the request carries a valid token.
func RequireToken(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := TokenFromRequest(c.Request)
		if value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrUnauthorized})
			return
		}
		user, tok, err := svc.Authenticate(c.Request.Context(), value)
		switch {
		case err == nil:
		case errors.Is(err, ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrTokenExpired})
			return
		case errors.Is(err, ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrInvalidToken})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Set(constants.ContextUserKey, user)
		c.Set(constants.ContextTokenKey, tok)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireToken.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(constants.ContextUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentToken returns the token stored by RequireToken.
func CurrentToken(c *gin.Context) *models.Token {
	if v, ok := c.Get(constants.ContextTokenKey); ok {
		if t, ok := v.(*models.Token); ok {
			return t
		}
	}
	return nil
}
