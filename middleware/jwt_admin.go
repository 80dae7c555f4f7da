package middleware

import (
	"fmt"
	"strings"
	"time"

	"agrimarket/apperrors"
	"agrimarket/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// LocalUsername is the fiber.Ctx locals key holding the admin username.
const LocalUsername = "username"

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 admin token valid for ttl.
func IssueToken(secret, username string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// JWTAdmin rejects requests without a valid bearer token signed with secret.
func JWTAdmin(secret string, log *logger.Log) fiber.Handler {
	entry := log.WithComponent("auth")
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return apperrors.Unauthorized("bearer token required")
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			entry.WithError(err).Warn("❌ invalid admin token")
			return apperrors.Unauthorized("invalid token")
		}
		if claims.Username == "" {
			return apperrors.Unauthorized("token has no username")
		}

		c.Locals(LocalUsername, claims.Username)
		entry.WithField("username", claims.Username).Debug("admin request")
		return c.Next()
	}
}
