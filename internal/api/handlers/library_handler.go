package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/pkg/logger"
)

// CollectionLister exposes the names of the vector-store collections.
type CollectionLister interface {
	ListCollections(ctx context.Context) ([]string, error)
}

// LibraryHandler serves the standards PDF library and the collection list.
type LibraryHandler struct {
	pdfDir string
	store  CollectionLister
}

func NewLibraryHandler(pdfDir string, store CollectionLister) *LibraryHandler {
	return &LibraryHandler{pdfDir: pdfDir, store: store}
}

func (h *LibraryHandler) ListPDFs(c *fiber.Ctx) error {
	entries, err := os.ReadDir(h.pdfDir)
	if err != nil {
		logger.Error("Failed to read PDF directory", zap.String("dir", h.pdfDir), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list PDF library",
		})
	}

	pdfs := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			pdfs = append(pdfs, entry.Name())
		}
	}

	return c.JSON(fiber.Map{"pdfs": pdfs})
}

func (h *LibraryHandler) ListCollections(c *fiber.Ctx) error {
	names, err := h.store.ListCollections(c.Context())
	if err != nil {
		logger.Error("Failed to list collections", zap.Error(err))
		return c.JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"collections": names})
}

func (h *LibraryHandler) ServePDF(c *fiber.Ctx) error {
	filename := c.Params("filename")

	// Reject anything that could escape the library directory.
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid filename",
		})
	}

	path := filepath.Join(h.pdfDir, filename)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	c.Set("Content-Type", "application/pdf")
	return c.SendFile(path)
}
