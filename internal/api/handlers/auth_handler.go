package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/pkg/logger"
)

// AuthHandler implements the single-credential login check. No session or
// token is issued; the response is only a success boolean.
type AuthHandler struct {
	username string
	password string
}

func NewAuthHandler(username, password string) *AuthHandler {
	return &AuthHandler{username: username, password: password}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1

	if !userOK || !passOK {
		logger.Warn("Login failed", zap.String("username", req.Username), zap.String("ip", c.IP()))
		return c.JSON(fiber.Map{"success": false})
	}

	return c.JSON(fiber.Map{"success": true})
}
