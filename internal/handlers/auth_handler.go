package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/api/middleware"
	"crm/internal/events"
	"crm/internal/models"
	"crm/internal/permissions"
	"crm/internal/utils"
	"crm/internal/utils/logger"
)

type AuthHandler struct {
	db        *gorm.DB
	resolver  *permissions.Resolver
	jwtSecret string
	log       *logger.Logger
}

func NewAuthHandler(db *gorm.DB, resolver *permissions.Resolver, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		db:        db,
		resolver:  resolver,
		jwtSecret: jwtSecret,
		log:       logger.New("AuthHandler"),
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and opens a session. The token it returns is
// valid until logout or expiry.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := models.UserByUsername(h.db, req.Username)
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
	}
	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "account is deactivated"})
	}

	token, err := utils.GenerateToken(user, h.jwtSecret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
	}

	session := &models.AuthSession{
		UserID:    user.ID,
		Token:     token,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		ExpiresAt: time.Now().Add(utils.SessionTTL),
	}
	if err := h.db.Create(session).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	events.Emit("auth.login", user)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout closes the current session by deleting its row; the token stops
// working immediately.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.CurrentToken(c)
	if err := h.db.Where("token = ?", token).Delete(&models.AuthSession{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to close session"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// GetMe returns the authenticated user together with their aggregated
// permission table (direct grants only for non-admins).
func (h *AuthHandler) GetMe(c echo.Context) error {
	user := middleware.CurrentUser(c)

	grants, err := h.resolver.AllPermissions(c.Request().Context(), user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load permissions"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":        user,
		"permissions": grants,
	})
}
