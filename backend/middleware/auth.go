package middleware

import (
	"errors"
	"time"

	"atlasfreight/backend/config"
	"atlasfreight/backend/models"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userIDKey = "userID"

// AuthMiddleware validates the bearer token and requires its session row to
// still exist, so signed-out tokens stop working immediately.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, sessionID, err := utils.ExtractSessionFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var session models.UserSession
		if err := db.Where("token_id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if session.ExpiresAt.Before(time.Now()) {
			return utils.Unauthorized(c, "Session expired")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// AdminMiddleware gates admin routes on the user's role. It assumes
// AuthMiddleware already ran.
func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(userIDKey).(uint)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "Unauthorized")
			}
			return utils.InternalServerError(c, "Could not query database")
		}

		if user.Role != "admin" {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id stored by AuthMiddleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(userIDKey).(uint)
	return userID, ok
}
