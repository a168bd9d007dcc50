package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/app/services"
	"github.com/akhaled/studenthub/internal/middleware"
	"github.com/akhaled/studenthub/internal/pkg/apperrors"
	"github.com/akhaled/studenthub/internal/pkg/auth"
	"github.com/akhaled/studenthub/internal/pkg/flash"
	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// AuthController handles the registration, login and logout pages.
type AuthController struct {
	authService services.AuthService
	sessions    *auth.SessionService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, sessions *auth.SessionService) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
	}
}

// ShowRegister renders the registration form.
func (c *AuthController) ShowRegister(ctx *gin.Context) {
	renderPage(ctx, "register.html", gin.H{})
}

// Register handles the registration form submission.
func (c *AuthController) Register(ctx *gin.Context) {
	var form dto.RegisterForm
	if err := ctx.ShouldBind(&form); err != nil {
		flash.Set(ctx, "danger", "Please enter both username and password.")
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	if _, err := c.authService.Register(ctx.Request.Context(), form.Username, form.Password); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUsernameTaken):
			flash.Set(ctx, "danger", "Username already exists.")
		case errors.Is(err, apperrors.ErrValidationFailed):
			flash.Set(ctx, "danger", err.Error())
		default:
			logger.Error().Err(err).Msg("Registration failed")
			flash.Set(ctx, "danger", "An error occurred during registration. Please try again.")
		}
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	flash.Set(ctx, "success", "Registration successful! Please log in.")
	ctx.Redirect(http.StatusFound, "/login")
}

// ShowLogin renders the login form.
func (c *AuthController) ShowLogin(ctx *gin.Context) {
	renderPage(ctx, "login.html", gin.H{})
}

// Login handles the login form submission and issues the session cookie.
func (c *AuthController) Login(ctx *gin.Context) {
	var form dto.LoginForm
	if err := ctx.ShouldBind(&form); err != nil {
		flash.Set(ctx, "danger", "Please enter both username and password.")
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := c.authService.Login(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			flash.Set(ctx, "danger", "Invalid username or password.")
		} else {
			logger.Error().Err(err).Msg("Login failed")
			flash.Set(ctx, "danger", "An error occurred during login. Please try again.")
		}
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	token, err := c.sessions.Issue(user.ID, user.Username)
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to issue session token")
		flash.Set(ctx, "danger", "An error occurred during login. Please try again.")
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	ctx.SetCookie(middleware.SessionCookieName, token, c.sessions.MaxAge(), "/", "", false, true)
	flash.Set(ctx, "success", "Login successful!")
	ctx.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie.
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	flash.Set(ctx, "info", "You have been logged out.")
	ctx.Redirect(http.StatusFound, "/login")
}

// renderPage renders a template with the pending flash message attached.
func renderPage(ctx *gin.Context, name string, data gin.H) {
	if msg, ok := flash.Take(ctx); ok {
		data["Flash"] = msg
	}
	if username, ok := ctx.Get("username"); ok {
		data["User"] = username
	}
	ctx.HTML(http.StatusOK, name, data)
}
