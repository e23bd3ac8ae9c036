package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kodechat/internal/app"
	"kodechat/internal/transport/http/response"
)

// AuthHandler is the hand-off point from the identity-provider integration.
// It consumes profiles the provider has already verified; no credential ever
// passes through this service.
type AuthHandler struct {
	authService    *app.AuthService
	callbackSecret string
	cookieName     string
	devMode        bool
}

type EstablishSessionRequest struct {
	Email string `json:"email" binding:"required,email,max=128"`
	Name  string `json:"name" binding:"max=128"`
}

func NewAuthHandler(authService *app.AuthService, callbackSecret, cookieName string, devMode bool) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		callbackSecret: callbackSecret,
		cookieName:     cookieName,
		devMode:        devMode,
	}
}

// EstablishSession handles POST /auth/session. Outside of dev the caller must
// present the shared callback secret, so only the provider integration can
// mint sessions.
func (h *AuthHandler) EstablishSession(c *gin.Context) {
	if !h.devMode {
		got := c.GetHeader("X-Auth-Callback-Secret")
		if h.callbackSecret == "" ||
			subtle.ConstantTimeCompare([]byte(got), []byte(h.callbackSecret)) != 1 {
			response.Error(c, http.StatusUnauthorized, response.MsgUnauthorized)
			return
		}
	}

	var req EstablishSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.EstablishSession(app.SessionInput{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	maxAge := int(h.authService.SessionTTL().Seconds())
	c.SetCookie(h.cookieName, result.Token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"email": result.User.Email,
			"name":  result.User.Name,
		},
	})
}

// SignOut handles POST /auth/signout by expiring the session cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"signedOut": true})
}
