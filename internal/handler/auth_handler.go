package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planillas/internal/middleware"
	"planillas/internal/service"
	"planillas/pkg/response"
)

type AuthHandler struct {
	authService     service.AuthService
	planillaService service.PlanillaService
	auth            *middleware.Authenticator
	log             *zap.Logger
}

func NewAuthHandler(authService service.AuthService, planillaService service.PlanillaService, auth *middleware.Authenticator, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{authService: authService, planillaService: planillaService, auth: auth, log: log.Named("auth_handler")}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/me", h.auth.RequireRole(), h.GetMe)
}

// Login handles POST /login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a directory user by email and password. The token is also set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, response.Coded(http.StatusUnauthorized, "invalid_credentials", err.Error()))
		case errors.Is(err, service.ErrInactiveUser):
			c.JSON(http.StatusForbidden, response.Coded(http.StatusForbidden, "inactive_user", err.Error()))
		default:
			h.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	h.auth.SetTokenCookie(c, res.Token, time.Until(res.ExpiresAt))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout clears the auth cookie and discards the caller's batch session
// @Summary      Logout user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := h.auth.Authenticate(c); ok {
		h.planillaService.Discard(claims.UserID())
	}
	h.auth.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// GetMe returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "User not found"))
			return
		}
		h.log.Error("load current user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
