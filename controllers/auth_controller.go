package controllers

import (
	"strings"

	"agrimarket/apperrors"
	"agrimarket/middleware"

	"github.com/gofiber/fiber/v2"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the admin's bcrypt password and issues a JWT.
func (h *Handler) Login(c *fiber.Ctx) error {
	var creds Credentials
	if err := c.BodyParser(&creds); err != nil {
		return apperrors.BadRequest("invalid request format")
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return apperrors.BadRequest("username and password are required")
	}

	user, err := h.users.User(c.UserContext(), creds.Username)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			h.log.WithField("username", creds.Username).Warn("❌ user not found")
			return apperrors.Unauthorized("invalid username or password")
		}
		return err
	}
	if !user.CheckPassword(creds.Password) {
		h.log.WithField("username", creds.Username).Warn("❌ invalid password")
		return apperrors.Unauthorized("invalid username or password")
	}

	token, expiresAt, err := middleware.IssueToken(h.auth.JWTSecret, user.Username, h.auth.TokenTTL)
	if err != nil {
		return apperrors.Internal(err, "could not generate token")
	}
	return c.JSON(fiber.Map{
		"token":      token,
		"user":       user.Username,
		"expires_at": expiresAt,
	})
}
