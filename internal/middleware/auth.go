package middleware

import (
	"net/http"
	"strings"

	"catalog-service/internal/model"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and stores the authenticated
// principal (id, email, role) in the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)

		return next(c)
	}
}

// RequireRoles gates a route on the authenticated user's role. Must run
// after AuthMiddleware.
func RequireRoles(roles ...model.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			role, ok := c.Get("user_role").(model.UserRole)
			if !ok {
				log.Warn("Missing role in context")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}

			log.Warn("Insufficient role for route",
				zap.String("role", string(role)),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}

// GetUserIDFromContext retrieves the authenticated user id from the context.
// Returns 0, false if it is not present.
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
