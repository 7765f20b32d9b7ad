package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxQueryLength      int
	MaxCollections      int
	MaxTopK             int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed chat requests before they reach the pipeline:
// wrong content type, missing or oversized query, absurd collection lists or
// top_k values.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 5000
	}
	if cfg.MaxCollections == 0 {
		cfg.MaxCollections = 20
	}
	if cfg.MaxTopK == 0 {
		cfg.MaxTopK = 100
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		if c.Path() == "/chat" && c.Method() == "POST" {
			var req struct {
				CollectionID []string `json:"collection_id"`
				Query        string   `json:"query"`
				TopK         int      `json:"top_k"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if strings.TrimSpace(req.Query) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query is required and must be a string",
				})
			}

			if len(req.Query) > cfg.MaxQueryLength {
				cfg.Logger.Warn("Oversized chat query rejected",
					zap.String("ip", c.IP()),
					zap.Int("length", len(req.Query)),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query exceeds maximum length",
				})
			}

			if len(req.CollectionID) > cfg.MaxCollections {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Too many collections requested",
				})
			}

			if req.TopK < 0 || req.TopK > cfg.MaxTopK {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "top_k out of range",
				})
			}
		}

		return c.Next()
	}
}
