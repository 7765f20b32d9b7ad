package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbc-assist/backend/internal/invoice"
	"github.com/nbc-assist/backend/internal/orders"
	"github.com/nbc-assist/backend/internal/storage/sqlite"
	"github.com/nbc-assist/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newOrderApp(t *testing.T) *fiber.App {
	t.Helper()

	store, err := sqlite.NewClient(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema())

	h := NewOrderHandler(orders.NewService(store), invoice.NewRenderer("Rs."))

	app := fiber.New()
	app.Post("/orders/", h.CreateOrder)
	app.Get("/orders/", h.ListOrders)
	app.Get("/orders/search/", h.SearchOrders)
	app.Get("/orders/filter/", h.FilterOrders)
	app.Put("/orders/:id/", h.UpdateOrder)
	app.Delete("/orders/:id/", h.DeleteOrder)
	app.Get("/orders/:id/invoice_pdf", h.InvoicePDF)
	app.Get("/orders/:id/invoice_json", h.InvoiceJSON)
	app.Get("/reports/collection/", h.CollectionReport)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp, decoded
}

func createOrder(t *testing.T, app *fiber.App, id string, total, paid float64) {
	t.Helper()
	resp, _ := doJSON(t, app, "POST", "/orders/", map[string]interface{}{
		"id":             id,
		"project_name":   "Project " + id,
		"architect_name": "Mehta",
		"client_name":    "Acme Builders",
		"total_amount":   total,
		"amount_paid":    paid,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateOrderEndpoint(t *testing.T) {
	app := newOrderApp(t)

	resp, body := doJSON(t, app, "POST", "/orders/", map[string]interface{}{
		"id":             "A1",
		"project_name":   "Tower",
		"architect_name": "Mehta",
		"total_amount":   1000.0,
		"amount_paid":    200.0,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["sl_no"])
	assert.Equal(t, 800.0, body["remaining_amount"])
	assert.Equal(t, 20.0, body["paid_percent"])
	assert.Equal(t, 80.0, body["remaining_percent"])
}

func TestCreateOrderDuplicate(t *testing.T) {
	app := newOrderApp(t)
	createOrder(t, app, "A1", 1000, 0)

	resp, body := doJSON(t, app, "POST", "/orders/", map[string]interface{}{
		"id":             "A1",
		"project_name":   "Other",
		"architect_name": "X",
		"total_amount":   10.0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Order ID already exists", body["error"])
}

func TestCreateOrderMissingFields(t *testing.T) {
	app := newOrderApp(t)

	resp, _ := doJSON(t, app, "POST", "/orders/", map[string]interface{}{
		"id": "A1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrderPayment(t *testing.T) {
	app := newOrderApp(t)
	createOrder(t, app, "A1", 1000, 200)

	resp, body := doJSON(t, app, "PUT", "/orders/A1/", map[string]interface{}{
		"amount_paid": 800.0,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1000.0, body["amount_paid"])
	assert.Equal(t, 0.0, body["remaining_amount"])
	assert.NotEmpty(t, body["end_date"])
}

func TestUpdateOrderNotFound(t *testing.T) {
	app := newOrderApp(t)

	resp, _ := doJSON(t, app, "PUT", "/orders/missing/", map[string]interface{}{
		"amount_paid": 10.0,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteOrderEndpoint(t *testing.T) {
	app := newOrderApp(t)
	createOrder(t, app, "A1", 100, 0)

	resp, body := doJSON(t, app, "DELETE", "/orders/A1/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order A1 deleted", body["message"])

	resp, _ = doJSON(t, app, "DELETE", "/orders/A1/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchEndpointPercentValidation(t *testing.T) {
	app := newOrderApp(t)

	resp, _ := doJSON(t, app, "GET", "/orders/search/?percent=120", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoiceEndpoints(t *testing.T) {
	app := newOrderApp(t)
	createOrder(t, app, "A1", 1000, 200)

	t.Run("json snapshot", func(t *testing.T) {
		resp, body := doJSON(t, app, "GET", "/orders/A1/invoice_json", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "A1", body["id"])
		assert.Equal(t, 1000.0, body["total_amount"])
		assert.Equal(t, 200.0, body["amount_paid"])
		assert.Equal(t, 800.0, body["remaining_amount"])
	})

	t.Run("pdf attachment", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/orders/A1/invoice_pdf", nil)
		require.NoError(t, err)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "Invoice_A1.pdf")

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(raw[:4]))
	})

	t.Run("not found", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/orders/missing/invoice_json", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCollectionReportEndpoint(t *testing.T) {
	app := newOrderApp(t)

	resp, body := doJSON(t, app, "GET", "/reports/collection/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, body["collected_percent"])
	assert.Equal(t, 0.0, body["pending_percent"])

	createOrder(t, app, "A1", 1000, 400)

	resp, body = doJSON(t, app, "GET", "/reports/collection/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 40.0, body["collected_percent"])
	assert.Equal(t, 60.0, body["pending_percent"])
}
