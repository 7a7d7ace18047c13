package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/models"
	"crm/internal/utils"
)

const (
	contextKeyUser  = "user"
	contextKeyToken = "token"
)

// AuthMiddleware authenticates requests with a bearer session token. A
// token is only honored while its auth_sessions row exists; logout deletes
// the row and with it the session.
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthMiddleware(db *gorm.DB, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{db: db, jwtSecret: jwtSecret}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}
			tokenString := tokenParts[1]

			claims, err := utils.ParseToken(tokenString, m.jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			var session models.AuthSession
			if err := m.db.Where("user_id = ? AND token = ? AND expires_at > ?",
				claims.UserID, tokenString, time.Now()).First(&session).Error; err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "session not found")
			}

			var user models.User
			if err := m.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
			}

			c.Set(contextKeyUser, &user)
			c.Set(contextKeyToken, tokenString)

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user set by the auth middleware.
func CurrentUser(c echo.Context) *models.User {
	if user, ok := c.Get(contextKeyUser).(*models.User); ok {
		return user
	}
	return nil
}

// CurrentToken returns the raw session token for the request.
func CurrentToken(c echo.Context) string {
	if token, ok := c.Get(contextKeyToken).(string); ok {
		return token
	}
	return ""
}
