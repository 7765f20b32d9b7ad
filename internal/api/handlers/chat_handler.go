package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/chat"
	"github.com/nbc-assist/backend/pkg/logger"
)

type ChatHandler struct {
	engine *chat.Engine
}

func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		CollectionID []string `json:"collection_id"`
		Query        string   `json:"query"`
		TopK         int      `json:"top_k"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse chat request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	response, err := h.engine.ProcessChat(c.Context(), chat.Request{
		CollectionIDs: req.CollectionID,
		Query:         req.Query,
		TopK:          req.TopK,
	})
	if err != nil {
		logger.Error("Failed to process chat", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "LLM failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"answer": response.Answer,
	})
}
