package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/internal/storage/models"
	"github.com/nbc-assist/backend/pkg/logger"
)

// ErrNoRows is returned by lookups when the requested order does not exist.
// Callers map it to their own not-found error.
var ErrNoRows = sql.ErrNoRows

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		sl_no INTEGER UNIQUE NOT NULL,
		id TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		architect_name TEXT NOT NULL,
		client_name TEXT,
		client_phone TEXT,
		client_address TEXT,
		client_gst TEXT,
		total_amount REAL NOT NULL,
		amount_paid REAL NOT NULL,
		remaining_amount REAL NOT NULL,
		paid_percent REAL NOT NULL,
		remaining_percent REAL NOT NULL,
		progress_stage_index INTEGER NOT NULL DEFAULT 0,
		progress_percent REAL NOT NULL,
		draft_invoice_amount REAL NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL,
		last_invoice_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_project ON orders(project_name);
	CREATE INDEX IF NOT EXISTS idx_orders_architect ON orders(architect_name);
	CREATE INDEX IF NOT EXISTS idx_orders_remaining_pct ON orders(remaining_percent);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

const orderColumns = `sl_no, id, project_name, architect_name, client_name, client_phone,
	client_address, client_gst, total_amount, amount_paid, remaining_amount,
	paid_percent, remaining_percent, progress_stage_index, progress_percent,
	draft_invoice_amount, start_date, last_invoice_date, end_date, created_at`

// InsertOrder assigns the next sequence number and inserts the row inside one
// transaction, so racing creates serialize at the storage layer.
func (c *Client) InsertOrder(order *models.Order) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxSl sql.NullInt64
	err = tx.QueryRow(`SELECT MAX(sl_no) FROM orders`).Scan(&maxSl)
	if err != nil {
		return fmt.Errorf("failed to read max sl_no: %w", err)
	}
	order.SlNo = int(maxSl.Int64) + 1

	_, err = tx.Exec(`
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.SlNo,
		order.ID,
		order.ProjectName,
		order.ArchitectName,
		nullable(order.ClientName),
		nullable(order.ClientPhone),
		nullable(order.ClientAddress),
		nullable(order.ClientGST),
		order.TotalAmount,
		order.AmountPaid,
		order.RemainingAmount,
		order.PaidPercent,
		order.RemainingPercent,
		order.ProgressStageIndex,
		order.ProgressPercent,
		order.DraftInvoiceAmount,
		order.StartDate,
		order.LastInvoiceDate,
		nullable(order.EndDate),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order insert: %w", err)
	}

	logger.Debug("Order inserted", zap.String("order_id", order.ID), zap.Int("sl_no", order.SlNo))
	return nil
}

func (c *Client) GetOrder(id string) (*models.Order, error) {
	row := c.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

func (c *Client) OrderExists(id string) (bool, error) {
	var one int
	err := c.db.QueryRow(`SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return true, nil
}

func (c *Client) UpdateOrder(order *models.Order) error {
	res, err := c.db.Exec(`
		UPDATE orders SET
			amount_paid = ?,
			remaining_amount = ?,
			paid_percent = ?,
			remaining_percent = ?,
			progress_stage_index = ?,
			progress_percent = ?,
			draft_invoice_amount = ?,
			last_invoice_date = ?,
			end_date = ?
		WHERE id = ?`,
		order.AmountPaid,
		order.RemainingAmount,
		order.PaidPercent,
		order.RemainingPercent,
		order.ProgressStageIndex,
		order.ProgressPercent,
		order.DraftInvoiceAmount,
		order.LastInvoiceDate,
		nullable(order.EndDate),
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	logger.Debug("Order updated", zap.String("order_id", order.ID))
	return nil
}

func (c *Client) DeleteOrder(id string) error {
	res, err := c.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	logger.Debug("Order deleted", zap.String("order_id", id))
	return nil
}

func (c *Client) ListOrders() ([]*models.Order, error) {
	rows, err := c.db.Query(`SELECT ` + orderColumns + ` FROM orders ORDER BY sl_no ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// SearchOrders applies a conjunctive multi-word keyword filter: every word
// must substring-match at least one of id, project name, architect name or
// client name. A non-nil percent adds an exact remaining_percent filter.
func (c *Client) SearchOrders(keyword string, percent *float64) ([]*models.Order, error) {
	var clauses []string
	var args []interface{}

	for _, word := range strings.Fields(strings.ToLower(keyword)) {
		kw := "%" + word + "%"
		clauses = append(clauses, `(LOWER(id) LIKE ? OR LOWER(project_name) LIKE ? OR LOWER(architect_name) LIKE ? OR LOWER(IFNULL(client_name, '')) LIKE ?)`)
		args = append(args, kw, kw, kw, kw)
	}

	if percent != nil {
		clauses = append(clauses, `remaining_percent = ?`)
		args = append(args, *percent)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY sl_no ASC`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (c *Client) FilterOrdersByRemainingPercent(percent float64) ([]*models.Order, error) {
	rows, err := c.db.Query(
		`SELECT `+orderColumns+` FROM orders WHERE remaining_percent = ? ORDER BY sl_no ASC`,
		percent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// CollectionTotals returns order count, sum of total, paid and remaining
// amounts across the ledger. Sums are zero on an empty table.
func (c *Client) CollectionTotals() (int, float64, float64, float64, error) {
	var count int
	var total, paid, remaining sql.NullFloat64

	err := c.db.QueryRow(`
		SELECT COUNT(*), SUM(total_amount), SUM(amount_paid), SUM(remaining_amount)
		FROM orders`,
	).Scan(&count, &total, &paid, &remaining)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	return count, total.Float64, paid.Float64, remaining.Float64, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var clientName, clientPhone, clientAddress, clientGST, endDate sql.NullString

	err := row.Scan(
		&o.SlNo,
		&o.ID,
		&o.ProjectName,
		&o.ArchitectName,
		&clientName,
		&clientPhone,
		&clientAddress,
		&clientGST,
		&o.TotalAmount,
		&o.AmountPaid,
		&o.RemainingAmount,
		&o.PaidPercent,
		&o.RemainingPercent,
		&o.ProgressStageIndex,
		&o.ProgressPercent,
		&o.DraftInvoiceAmount,
		&o.StartDate,
		&o.LastInvoiceDate,
		&endDate,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.ClientName = clientName.String
	o.ClientPhone = clientPhone.String
	o.ClientAddress = clientAddress.String
	o.ClientGST = clientGST.String
	o.EndDate = endDate.String

	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
