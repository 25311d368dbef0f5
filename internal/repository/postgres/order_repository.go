package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type orderRepository struct {
	db *DB
}

var _ repository.OrderRepository = (*orderRepository)(nil)

func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// orderRow mirrors the orders table. The date column keeps the raw text the
// order was recorded with; parsing happens in the forecast pipeline.
type orderRow struct {
	RowID    string `db:"row_id"`
	OrderID  string `db:"order_id"`
	ItemID   string `db:"item_id"`
	ItemName string `db:"item_name"`
	Date     string `db:"date"`
	Quantity int    `db:"quantity"`
	CustName string `db:"cust_name"`
	InOrOut  string `db:"in_or_out"`
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	query := `
		SELECT row_id, order_id, item_id, item_name, date, quantity, cust_name, in_or_out
		FROM orders
		ORDER BY id
	`

	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}

	orders := make([]domain.OrderRecord, len(rows))
	for i, row := range rows {
		orders[i] = domain.OrderRecord{
			RowID:    row.RowID,
			OrderID:  row.OrderID,
			ItemID:   row.ItemID,
			ItemName: row.ItemName,
			RawDate:  row.Date,
			Quantity: row.Quantity,
			CustName: row.CustName,
			InOrOut:  row.InOrOut,
		}
	}
	return orders, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.OrderRecord) error {
	return insertOrder(ctx, r.db, order)
}

func (r *orderRepository) NextOrderID(ctx context.Context) (string, error) {
	return nextOrderID(ctx, r.db)
}

// insertOrder and nextOrderID take an sqlx.ExtContext so the sale
// repository can run them inside its transaction.
func insertOrder(ctx context.Context, ext sqlx.ExtContext, order domain.OrderRecord) error {
	query := `
		INSERT INTO orders (row_id, order_id, item_id, item_name, date, quantity, cust_name, in_or_out)
		VALUES (:row_id, :order_id, :item_id, :item_name, :date, :quantity, :cust_name, :in_or_out)
	`

	row := orderRow{
		RowID:    order.RowID,
		OrderID:  order.OrderID,
		ItemID:   order.ItemID,
		ItemName: order.ItemName,
		Date:     rawDateText(order.RawDate),
		Quantity: order.Quantity,
		CustName: order.CustName,
		InOrOut:  order.InOrOut,
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, query, row); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.OrderID, err)
	}
	return nil
}

func nextOrderID(ctx context.Context, ext sqlx.ExtContext) (string, error) {
	query := `
		INSERT INTO counters (name, seq) VALUES ('order_id', 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`

	var seq int64
	if err := ext.QueryRowxContext(ctx, query).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate order id: %w", err)
	}
	return fmt.Sprintf("ORD%03d", seq), nil
}

func rawDateText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
