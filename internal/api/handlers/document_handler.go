package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/ingestion"
	"github.com/nbc-assist/backend/pkg/logger"
)

type DocumentHandler struct {
	processor *ingestion.Processor
}

func NewDocumentHandler(processor *ingestion.Processor) *DocumentHandler {
	return &DocumentHandler{processor: processor}
}

// IngestPassages accepts passages (or longer sections to be chunked) and
// indexes them into the collection named in the path.
func (h *DocumentHandler) IngestPassages(c *fiber.Ctx) error {
	collection := c.Params("id")
	if collection == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Collection id is required",
		})
	}

	var req struct {
		Passages []ingestion.PassageInput `json:"passages"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Passages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one passage is required",
		})
	}

	count, err := h.processor.IngestPassages(c.Context(), collection, req.Passages)
	if err != nil {
		logger.Error("Failed to ingest passages",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest passages",
		})
	}

	return c.JSON(fiber.Map{
		"collection": collection,
		"chunks":     count,
	})
}
