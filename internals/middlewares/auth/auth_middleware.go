package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorflow_backend/internals/configs"
	authModel "tutorflow_backend/internals/features/users/auth/model"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
)

// Paths públicos que o middleware pula (webhooks etc.)
var skipPaths = map[string]struct{}{
	"/api/payments/notification": {},
}

func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// Blacklist (uma vez por request)
		if c.Locals("token_checked") == nil {
			var existing authModel.TokenBlacklist
			if err := db.Where("token = ?", tokenString).First(&existing).Error; err == nil {
				log.Println("[WARNING] Token na blacklist")
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Println("[ERROR] DB error na checagem de blacklist:", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			c.Locals("token_checked", true)
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET vazio")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		}); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		c.Locals("user_id", userID.String())

		if err := ensureUserActive(db, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			return fiber.NewError(fiber.StatusForbidden, "Sua conta foi desativada")
		}

		if role, ok := claims["role"].(string); ok {
			c.Locals("role", role)
		}

		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); tok != "" {
			return tok, nil
		}
	}
	// fallback: cookie (frontend web)
	if tok := c.Cookies("access_token"); tok != "" {
		return tok, nil
	}
	return "", errors.New("Unauthorized - Missing token")
}

func validateTokenExpiry(claims jwt.MapClaims, leeway time.Duration) error {
	expRaw, ok := claims["exp"]
	if !ok {
		return errors.New("exp claim missing")
	}
	expFloat, ok := expRaw.(float64)
	if !ok {
		return errors.New("exp claim malformed")
	}
	expiry := time.Unix(int64(expFloat), 0)
	if time.Now().After(expiry.Add(leeway)) {
		return errors.New("token expired")
	}
	return nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["user_id"].(string)
	if !ok || raw == "" {
		// compat: alguns tokens antigos usam sub
		raw, _ = claims["sub"].(string)
	}
	return uuid.Parse(strings.TrimSpace(raw))
}

func ensureUserActive(db *gorm.DB, userID uuid.UUID) error {
	var p profileModel.ProfileModel
	if err := db.Select("profile_id", "profile_is_active").
		Where("profile_id = ?", userID).
		First(&p).Error; err != nil {
		return err
	}
	if !p.ProfileIsActive {
		return errors.New("user inactive")
	}
	return nil
}
