package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "garderie_backend/internals/features/users/auth/model"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	helperAuth "garderie_backend/internals/helpers/auth"
)

// AuthMiddleware resolves the bearer token to an active user and stores the
// actor on the request. Unknown, inactive or revoked → 401.
func AuthMiddleware(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := helper.ExtractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		var revoked int64
		if err := db.WithContext(c.UserContext()).
			Model(&authModel.TokenBlacklist{}).
			Where("token = ?", helper.TokenDigest(secret, raw)).
			Count(&revoked).Error; err != nil {
			zap.L().Error("blacklist lookup failed", zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if revoked > 0 {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token is revoked")
		}

		claims, err := helper.ParseAccessToken(secret, raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token invalid or expired")
		}
		userID, err := uuid.Parse(claims.ID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid user ID")
		}

		var user userModel.UserModel
		if err := db.WithContext(c.UserContext()).
			Select("id", "name", "role", "is_active").
			First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			zap.L().Error("load user failed", zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		if !user.IsActive {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Account is disabled")
		}

		// role comes from the store, not the token, so demotions apply at once
		helperAuth.SetActor(c, helperAuth.Actor{ID: user.ID, Name: user.Name, Role: user.Role})
		c.Locals(helperAuth.LocRawToken, raw)
		return c.Next()
	}
}
