package models

// Order is one row of the order ledger. Monetary fields are derived from
// TotalAmount and AmountPaid by the orders service; the storage layer never
// recomputes them.
type Order struct {
	SlNo               int     `json:"sl_no"`
	ID                 string  `json:"id"`
	ProjectName        string  `json:"project_name"`
	ArchitectName      string  `json:"architect_name"`
	ClientName         string  `json:"client_name,omitempty"`
	ClientPhone        string  `json:"client_phone,omitempty"`
	ClientAddress      string  `json:"client_address,omitempty"`
	ClientGST          string  `json:"client_gst,omitempty"`
	TotalAmount        float64 `json:"total_amount"`
	AmountPaid         float64 `json:"amount_paid"`
	RemainingAmount    float64 `json:"remaining_amount"`
	PaidPercent        float64 `json:"paid_percent"`
	RemainingPercent   float64 `json:"remaining_percent"`
	ProgressStageIndex int     `json:"progress_stage_index"`
	ProgressPercent    float64 `json:"progress_percent"`
	DraftInvoiceAmount float64 `json:"draft_invoice_amount"`
	StartDate          string  `json:"start_date"`
	LastInvoiceDate    string  `json:"last_invoice_date"`
	EndDate            string  `json:"end_date,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// CollectionReport aggregates payment state across the whole ledger.
type CollectionReport struct {
	TotalOrders      int     `json:"total_orders"`
	TotalAmount      float64 `json:"total_amount"`
	TotalCollected   float64 `json:"total_collected"`
	TotalPending     float64 `json:"total_pending"`
	CollectedPercent float64 `json:"collected_percent"`
	PendingPercent   float64 `json:"pending_percent"`
}
