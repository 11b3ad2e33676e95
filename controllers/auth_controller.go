package controllers

import (
	"net/http"

	"nimbusdrive/middleware"
	"nimbusdrive/models"
	"nimbusdrive/services"
	"nimbusdrive/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type signupRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type loginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type forgotRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetRequest struct {
	Email      string `json:"email" binding:"required"`
	Token      string `json:"token" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name, email, and password are required", nil)
		return
	}

	user, session, err := ac.authService.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.RememberMe, c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ac.setSessionCookie(c, session)
	utils.CreatedResponse(c, "Account created", gin.H{
		"user":    publicUser(user),
		"session": session,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email and password are required", nil)
		return
	}

	user, session, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe, c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ac.setSessionCookie(c, session)
	utils.SuccessResponse(c, "Logged in", gin.H{
		"user":    publicUser(user),
		"session": session,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookieName)
	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}

	ac.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// Me reports the authenticated principal, or a null user for guests.
func (ac *AuthController) Me(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)
	if principal == "" {
		utils.SuccessResponse(c, "No active session", gin.H{"user": nil})
		return
	}

	utils.SuccessResponse(c, "Authenticated", gin.H{"user": gin.H{
		"id":    c.GetString(middleware.ContextUserID),
		"email": principal,
		"name":  c.GetString(middleware.ContextUserName),
	}})
}

func (ac *AuthController) Forgot(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email is required", nil)
		return
	}

	token, err := ac.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The response never reveals whether the account exists. The raw token is
	// included for demo setups without a mail relay.
	data := gin.H{}
	if token != "" {
		data["demoToken"] = token
	}
	utils.SuccessResponse(c, "If an account exists, a reset token has been issued", data)
}

func (ac *AuthController) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email, token, and new password are required", nil)
		return
	}

	user, session, err := ac.authService.ResetPassword(c.Request.Context(), req.Email, req.Token, req.Password, req.RememberMe, c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ac.setSessionCookie(c, session)
	utils.SuccessResponse(c, "Password updated", gin.H{
		"user":    publicUser(user),
		"session": session,
	})
}

func (ac *AuthController) setSessionCookie(c *gin.Context, session *services.SessionInfo) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, session.Token, int(session.ExpiresIn.Seconds()), "/", "", false, true)
}

func (ac *AuthController) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
}

func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
	}
}
