package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamcal/models"
	"teamcal/policy"
	"teamcal/store"
	"teamcal/utils"
)

// Protected authenticates the request from a bearer token or the
// access_token cookie. The user is reloaded on every request so role
// changes and deactivation apply to live sessions.
func Protected(db *gorm.DB) fiber.Handler {
	users := store.NewUserStore(db)

	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format")
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
			}
			utils.LogError("session_lookup", err, map[string]interface{}{"user_id": claims.UserID})
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session")
		}

		if !user.Active {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Account is not active")
		}

		c.Locals("user", user)
		c.Locals("principal", policy.Principal{ID: user.ID, Role: user.Role})
		c.Locals("sessionID", claims.SessionID)

		return c.Next()
	}
}

// CurrentUser returns the user stored by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// CurrentPrincipal returns the caller identity stored by Protected.
func CurrentPrincipal(c *fiber.Ctx) policy.Principal {
	p, _ := c.Locals("principal").(policy.Principal)
	return p
}
