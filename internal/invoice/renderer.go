package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/nbc-assist/backend/internal/storage/models"
)

// Snapshot is the layout-free projection of an order's financial and
// progress state, served as the JSON invoice.
type Snapshot struct {
	ID                 string  `json:"id"`
	ProjectName        string  `json:"project_name"`
	ClientName         string  `json:"client_name"`
	ClientPhone        string  `json:"client_phone"`
	ClientAddress      string  `json:"client_address"`
	ClientGST          string  `json:"client_gst"`
	ProgressPercent    float64 `json:"progress_percent"`
	TotalAmount        float64 `json:"total_amount"`
	AmountPaid         float64 `json:"amount_paid"`
	RemainingAmount    float64 `json:"remaining_amount"`
	DraftInvoiceAmount float64 `json:"draft_invoice_amount"`
}

// Renderer projects order state into invoice documents. It never mutates
// the order.
type Renderer struct {
	currencySymbol string
}

func NewRenderer(currencySymbol string) *Renderer {
	if currencySymbol == "" {
		currencySymbol = "Rs."
	}
	return &Renderer{currencySymbol: currencySymbol}
}

func (r *Renderer) Snapshot(order *models.Order) Snapshot {
	return Snapshot{
		ID:                 order.ID,
		ProjectName:        order.ProjectName,
		ClientName:         order.ClientName,
		ClientPhone:        order.ClientPhone,
		ClientAddress:      order.ClientAddress,
		ClientGST:          order.ClientGST,
		ProgressPercent:    order.ProgressPercent,
		TotalAmount:        order.TotalAmount,
		AmountPaid:         order.AmountPaid,
		RemainingAmount:    order.RemainingAmount,
		DraftInvoiceAmount: order.DraftInvoiceAmount,
	}
}

// RenderPDF produces a single A4 page with the invoice lines at fixed
// positions and returns the PDF bytes.
func (r *Renderer) RenderPDF(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	lines := []struct {
		y    float64
		text string
	}{
		{20, fmt.Sprintf("Invoice for Order ID: %s", order.ID)},
		{28, fmt.Sprintf("Client Name: %s", orNA(order.ClientName))},
		{36, fmt.Sprintf("Phone: %s", orNA(order.ClientPhone))},
		{44, fmt.Sprintf("Address: %s", orNA(order.ClientAddress))},
		{52, fmt.Sprintf("GST No: %s", orNA(order.ClientGST))},
		{60, fmt.Sprintf("Total Amount: %s", r.money(order.TotalAmount))},
		{68, fmt.Sprintf("Progress: %.2f%%", order.ProgressPercent)},
		{76, fmt.Sprintf("Payable Amount for Work Done: %s", r.money(order.DraftInvoiceAmount))},
		{84, fmt.Sprintf("Amount Paid: %s", r.money(order.AmountPaid))},
		{92, fmt.Sprintf("Remaining Amount: %s", r.money(order.RemainingAmount))},
	}

	for _, line := range lines {
		pdf.Text(18, line.y, line.text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) money(v float64) string {
	return fmt.Sprintf("%s%.2f", r.currencySymbol, v)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
