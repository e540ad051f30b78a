package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hitesh-Saha/FeastAI/internal/middleware"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

// AuthResponse is the session payload plus the raw token for clients that
// send it as a Bearer header instead of the cookie.
type AuthResponse struct {
	*service.Session
	Token string `json:"token"`
}

// AuthHandler serves signup, login and session endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
}

func NewAuthHandler(auth *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", middleware.RequireSession(), h.Session)
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	session, token, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token, int(service.SessionTTL.Seconds()))
	respond(c, http.StatusCreated, "Account created", AuthResponse{Session: session, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	session, token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, token, int(service.SessionTTL.Seconds()))
	respond(c, http.StatusOK, "Logged in", AuthResponse{Session: session, Token: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	respond[any](c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Session(c *gin.Context) {
	session, _ := middleware.SessionFrom(c)
	respond(c, http.StatusOK, "", session)
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookies, true)
}
