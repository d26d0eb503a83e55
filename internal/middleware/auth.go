package middleware

import (
	"errors"
	"log/slog"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mcontreras/contact-form-api/internal/config"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/models"
	"github.com/mcontreras/contact-form-api/internal/token"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Identity is the minimal caller identity attached to the request context
// after the auth gate resolves it.
type Identity struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// IdentityFromCtx returns the resolved identity, if any.
func IdentityFromCtx(c *fiber.Ctx) (*Identity, bool) {
	ident, ok := c.Locals(identityKey).(*Identity)
	return ident, ok && ident != nil
}

// Protected verifies the bearer access token's signature and expiry. Expired
// and malformed tokens carry different messages but both yield 401.
func Protected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTAccessSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			message := "Invalid token"
			switch {
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
				message = "Access token required"
			case errors.Is(err, jwt.ErrTokenExpired):
				message = "Token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(message))
		},
	})
}

// LoadUser runs after Protected. It re-queries the user row on every request
// so a deactivated or deleted user is rejected immediately, even while their
// access token is still cryptographically valid.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := verifiedClaims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid token"))
		}

		var user models.User
		if err := db.First(&user, uint(userID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("User not found"))
			}
			slog.Error("failed to load user for auth gate", "error", err, "user_id", uint(userID))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
		}

		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("User is inactive"))
		}

		c.Locals(identityKey, &Identity{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		return c.Next()
	}
}

// verifiedClaims extracts the claims the JWT middleware stored after a
// successful signature check. Claims are never read from an unverified token.
func verifiedClaims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// OptionalAuthenticate resolves the caller's identity when a usable bearer
// token is present and silently proceeds unauthenticated otherwise.
func OptionalAuthenticate(db *gorm.DB, tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return c.Next()
		}

		claims, err := tokens.VerifyAccessToken(raw)
		if err != nil {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
			return c.Next()
		}

		c.Locals(identityKey, &Identity{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireRoles runs after LoadUser and rejects callers whose role is not in
// the allowed set. A missing identity means the chain was mis-ordered and is
// treated as unauthenticated.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := IdentityFromCtx(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
		}
		for _, role := range roles {
			if ident.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("Insufficient permissions"))
	}
}
