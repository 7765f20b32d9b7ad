package orders

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/storage/models"
	"github.com/nbc-assist/backend/internal/storage/sqlite"
	"github.com/nbc-assist/backend/pkg/logger"
)

var (
	// ErrNotFound means the order id does not exist in the ledger.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateID means a create collided with an existing order id.
	ErrDuplicateID = errors.New("order ID already exists")
	// ErrInvalidAmount rejects non-positive totals or negative payments at
	// creation time.
	ErrInvalidAmount = errors.New("invalid amount")
)

const timestampLayout = "2006-01-02 15:04:05"

// Service owns the order ledger: creation, payment application, stage
// advancement and the derived-field recalculation that keeps financial
// invariants intact.
type Service struct {
	store *sqlite.Client
	now   func() time.Time
}

func NewService(store *sqlite.Client) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

type CreateRequest struct {
	ID            string  `json:"id"`
	ProjectName   string  `json:"project_name"`
	ArchitectName string  `json:"architect_name"`
	ClientName    string  `json:"client_name"`
	ClientPhone   string  `json:"client_phone"`
	ClientAddress string  `json:"client_address"`
	ClientGST     string  `json:"client_gst"`
	TotalAmount   float64 `json:"total_amount"`
	AmountPaid    float64 `json:"amount_paid"`
}

// UpdateRequest carries the mutable parts of an order. AmountPaid is a
// payment delta added to the running total, never a replacement.
type UpdateRequest struct {
	AmountPaid         *float64 `json:"amount_paid"`
	EndDate            *string  `json:"end_date"`
	ProgressStageIndex *int     `json:"progress_stage_index"`
}

func (s *Service) Create(req CreateRequest) (*models.Order, error) {
	if req.TotalAmount <= 0 || req.AmountPaid < 0 {
		return nil, ErrInvalidAmount
	}

	exists, err := s.store.OrderExists(req.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Duplicate order create rejected", zap.String("order_id", req.ID))
		return nil, ErrDuplicateID
	}

	now := s.now()
	remaining, paidPct, remPct := recalc(req.TotalAmount, req.AmountPaid)

	order := &models.Order{
		ID:                 req.ID,
		ProjectName:        req.ProjectName,
		ArchitectName:      req.ArchitectName,
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		ClientAddress:      req.ClientAddress,
		ClientGST:          req.ClientGST,
		TotalAmount:        req.TotalAmount,
		AmountPaid:         req.AmountPaid,
		RemainingAmount:    remaining,
		PaidPercent:        paidPct,
		RemainingPercent:   remPct,
		ProgressStageIndex: 0,
		ProgressPercent:    ProjectStages[0].Percent,
		StartDate:          now.Format("2006-01-02"),
		LastInvoiceDate:    now.Format(timestampLayout),
		CreatedAt:          now.Format(timestampLayout),
	}
	updateDraftInvoice(order)

	if err := s.store.InsertOrder(order); err != nil {
		return nil, err
	}

	logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int("sl_no", order.SlNo),
		zap.Float64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// Update applies an optional payment delta, optional end date and optional
// stage advancement to the order, recomputing derived fields. An out-of-range
// stage index is ignored rather than rejected.
func (s *Service) Update(id string, upd UpdateRequest) (*models.Order, error) {
	order, err := s.store.GetOrder(id)
	if errors.Is(err, sqlite.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if upd.AmountPaid != nil {
		newTotalPaid := order.AmountPaid + *upd.AmountPaid
		remaining, paidPct, remPct := recalc(order.TotalAmount, newTotalPaid)
		order.AmountPaid = newTotalPaid
		order.RemainingAmount = remaining
		order.PaidPercent = paidPct
		order.RemainingPercent = remPct
		order.LastInvoiceDate = s.now().Format(timestampLayout)
		if remaining <= 0 {
			order.EndDate = s.now().Format(timestampLayout)
		} else if upd.EndDate != nil {
			order.EndDate = *upd.EndDate
		}
	}

	if upd.ProgressStageIndex != nil && ValidStageIndex(*upd.ProgressStageIndex) {
		order.ProgressStageIndex = *upd.ProgressStageIndex
		order.ProgressPercent = ProjectStages[*upd.ProgressStageIndex].Percent
	}

	updateDraftInvoice(order)

	if err := s.store.UpdateOrder(order); err != nil {
		if errors.Is(err, sqlite.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	logger.Info("Order updated",
		zap.String("order_id", order.ID),
		zap.Float64("amount_paid", order.AmountPaid),
		zap.Int("stage", order.ProgressStageIndex),
	)

	return order, nil
}

func (s *Service) Get(id string) (*models.Order, error) {
	order, err := s.store.GetOrder(id)
	if errors.Is(err, sqlite.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) Delete(id string) error {
	err := s.store.DeleteOrder(id)
	if errors.Is(err, sqlite.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	logger.Info("Order deleted", zap.String("order_id", id))
	return nil
}

func (s *Service) List() ([]*models.Order, error) {
	return s.store.ListOrders()
}

func (s *Service) Search(keyword string, percent *float64) ([]*models.Order, error) {
	return s.store.SearchOrders(keyword, percent)
}

func (s *Service) FilterByRemainingPercent(percent float64) ([]*models.Order, error) {
	return s.store.FilterOrdersByRemainingPercent(percent)
}

func (s *Service) CollectionReport() (*models.CollectionReport, error) {
	count, total, paid, remaining, err := s.store.CollectionTotals()
	if err != nil {
		return nil, err
	}

	report := &models.CollectionReport{
		TotalOrders:    count,
		TotalAmount:    round2(total),
		TotalCollected: round2(paid),
		TotalPending:   round2(remaining),
	}
	if total > 0 {
		report.CollectedPercent = round2(paid / total * 100)
		report.PendingPercent = round2(100 - report.CollectedPercent)
	}

	return report, nil
}

// recalc derives remaining amount and paid/remaining percentages. Non-finite
// inputs degrade to zeros instead of failing the request.
func recalc(totalAmount, amountPaid float64) (remaining, paidPct, remPct float64) {
	if math.IsNaN(totalAmount) || math.IsInf(totalAmount, 0) ||
		math.IsNaN(amountPaid) || math.IsInf(amountPaid, 0) {
		logger.Error("Invalid amounts in recalculation",
			zap.Float64("total_amount", totalAmount),
			zap.Float64("amount_paid", amountPaid),
		)
		totalAmount, amountPaid = 0, 0
	}

	remaining = round2(totalAmount - amountPaid)
	if totalAmount > 0 {
		paidPct = round2(amountPaid / totalAmount * 100)
		remPct = round2(100 - paidPct)
	}
	return remaining, paidPct, remPct
}

// updateDraftInvoice sets the currently billable amount: earned value
// (total * progress%) minus what has already been paid, floored at zero.
func updateDraftInvoice(order *models.Order) {
	totalDue := order.TotalAmount * (order.ProgressPercent / 100)
	dueInvoice := totalDue - order.AmountPaid
	order.DraftInvoiceAmount = math.Max(0, round2(dueInvoice))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
