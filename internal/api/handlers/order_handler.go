package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/invoice"
	"github.com/nbc-assist/backend/internal/metrics"
	"github.com/nbc-assist/backend/internal/orders"
	"github.com/nbc-assist/backend/pkg/logger"
)

type OrderHandler struct {
	service  *orders.Service
	renderer *invoice.Renderer
}

func NewOrderHandler(service *orders.Service, renderer *invoice.Renderer) *OrderHandler {
	return &OrderHandler{service: service, renderer: renderer}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req orders.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ID == "" || req.ProjectName == "" || req.ArchitectName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id, project_name and architect_name are required",
		})
	}

	order, err := h.service.Create(req)
	if err != nil {
		metrics.OrderOperations.WithLabelValues("create", "error").Inc()
		switch {
		case errors.Is(err, orders.ErrDuplicateID):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Order ID already exists",
			})
		case errors.Is(err, orders.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "total_amount must be positive and amount_paid non-negative",
			})
		default:
			logger.Error("Failed to create order", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create order",
			})
		}
	}

	metrics.OrderOperations.WithLabelValues("create", "success").Inc()
	return c.JSON(order)
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req orders.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.AmountPaid != nil && *req.AmountPaid < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount_paid delta must be non-negative",
		})
	}

	order, err := h.service.Update(orderID, req)
	if err != nil {
		metrics.OrderOperations.WithLabelValues("update", "error").Inc()
		if errors.Is(err, orders.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		logger.Error("Failed to update order", zap.String("order_id", orderID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update order",
		})
	}

	metrics.OrderOperations.WithLabelValues("update", "success").Inc()
	return c.JSON(order)
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	err := h.service.Delete(orderID)
	if err != nil {
		metrics.OrderOperations.WithLabelValues("delete", "error").Inc()
		if errors.Is(err, orders.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		logger.Error("Failed to delete order", zap.String("order_id", orderID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete order",
		})
	}

	metrics.OrderOperations.WithLabelValues("delete", "success").Inc()
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s deleted", orderID),
	})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	list, err := h.service.List()
	if err != nil {
		logger.Error("Failed to list orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list orders",
		})
	}
	return c.JSON(list)
}

func (h *OrderHandler) SearchOrders(c *fiber.Ctx) error {
	keyword := c.Query("keyword")

	percent, err := parsePercent(c.Query("percent"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	list, err := h.service.Search(keyword, percent)
	if err != nil {
		logger.Error("Failed to search orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search orders",
		})
	}
	return c.JSON(list)
}

func (h *OrderHandler) FilterOrders(c *fiber.Ctx) error {
	percent, err := parsePercent(c.Query("percent"))
	if err != nil || percent == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "percent is required and must be between 0 and 100",
		})
	}

	list, err := h.service.FilterByRemainingPercent(*percent)
	if err != nil {
		logger.Error("Failed to filter orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to filter orders",
		})
	}
	return c.JSON(list)
}

func (h *OrderHandler) CollectionReport(c *fiber.Ctx) error {
	report, err := h.service.CollectionReport()
	if err != nil {
		logger.Error("Failed to build collection report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build collection report",
		})
	}
	return c.JSON(report)
}

func (h *OrderHandler) InvoicePDF(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.service.Get(orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		logger.Error("Failed to load order for invoice", zap.String("order_id", orderID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load order",
		})
	}

	pdfBytes, err := h.renderer.RenderPDF(order)
	if err != nil {
		logger.Error("Failed to render invoice PDF", zap.String("order_id", orderID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render invoice",
		})
	}

	metrics.InvoicesRendered.WithLabelValues("pdf").Inc()

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=Invoice_%s.pdf", order.ID))
	return c.Send(pdfBytes)
}

func (h *OrderHandler) InvoiceJSON(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.service.Get(orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		logger.Error("Failed to load order for invoice", zap.String("order_id", orderID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load order",
		})
	}

	metrics.InvoicesRendered.WithLabelValues("json").Inc()
	return c.JSON(h.renderer.Snapshot(order))
}

func parsePercent(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		return nil, errors.New("percent must be a number between 0 and 100")
	}
	return &v, nil
}
