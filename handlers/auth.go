package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/auth"
	"talkie/server/backend/constants"
)

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Permanent bool   `json:"permanent"`
}

// RegisterAuthRoutes wires signup and login on the public group and logout
// on the authenticated one.
func RegisterAuthRoutes(public, private *gin.RouterGroup, svc *auth.Service) {
	public.POST("/signup/", func(c *gin.Context) { signup(c, svc) })
	public.POST("/login/", func(c *gin.Context) { login(c, svc) })
	private.POST("/logout/", func(c *gin.Context) { logout(c, svc) })
}

func signup(c *gin.Context, svc *auth.Service) {
	var dto signupRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := svc.Signup(c.Request.Context(), dto.Username, dto.Email, dto.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": constants.ErrUserExists})
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": constants.MessageUserCreated})
	}
}

func login(c *gin.Context, svc *auth.Service) {
	var dto loginRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidCredentials})
		return
	}
	tok, err := svc.Login(c.Request.Context(), dto.Email, dto.Password, dto.Permanent)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidCredentials})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": constants.MessageLoginOK, "token": tok.Token})
}

func logout(c *gin.Context, svc *auth.Service) {
	if err := svc.Logout(c.Request.Context(), auth.CurrentToken(c).Token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrInvalidToken})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": constants.MessageLogoutOK})
}
