package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbc-assist/backend/internal/storage/models"
)

func sampleOrder() *models.Order {
	return &models.Order{
		SlNo:               1,
		ID:                 "ORD-7",
		ProjectName:        "Skyline Mall",
		ClientName:         "Acme Builders",
		ClientPhone:        "9876543210",
		TotalAmount:        250000,
		AmountPaid:         50000,
		RemainingAmount:    200000,
		ProgressPercent:    30,
		DraftInvoiceAmount: 25000,
	}
}

func TestSnapshotProjection(t *testing.T) {
	r := NewRenderer("Rs.")
	snap := r.Snapshot(sampleOrder())

	assert.Equal(t, "ORD-7", snap.ID)
	assert.Equal(t, "Acme Builders", snap.ClientName)
	assert.Equal(t, 250000.0, snap.TotalAmount)
	assert.Equal(t, 50000.0, snap.AmountPaid)
	assert.Equal(t, 200000.0, snap.RemainingAmount)
	assert.Equal(t, 25000.0, snap.DraftInvoiceAmount)
	assert.Equal(t, 30.0, snap.ProgressPercent)
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer("Rs.")

	pdfBytes, err := r.RenderPDF(sampleOrder())
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)

	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestRenderPDFMissingClientFields(t *testing.T) {
	r := NewRenderer("")

	order := sampleOrder()
	order.ClientName = ""
	order.ClientPhone = ""

	pdfBytes, err := r.RenderPDF(order)
	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
}

func TestMoneyFormatting(t *testing.T) {
	r := NewRenderer("Rs.")
	assert.Equal(t, "Rs.1234.50", r.money(1234.5))
	assert.Equal(t, "Rs.0.00", r.money(0))
}
