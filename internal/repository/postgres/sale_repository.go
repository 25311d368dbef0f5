package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type saleRepository struct {
	db *DB
}

var _ repository.SaleRecorder = (*saleRepository)(nil)

func NewSaleRepository(db *DB) repository.SaleRecorder {
	return &saleRepository{db: db}
}

// CommitSale runs the deductions, the order id allocation and the order
// inserts in one transaction. The conditional update in adjustStock keeps
// concurrent sales from taking stock below zero.
func (r *saleRepository) CommitSale(ctx context.Context, deductions []domain.StockDeduction, lines []domain.OrderRecord) (string, error) {
	var orderID string

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range deductions {
			err := adjustStock(ctx, tx, d.IngID, d.Quantity.Neg())
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, d.IngID)
			}
			if err != nil {
				return err
			}
		}

		id, err := nextOrderID(ctx, tx)
		if err != nil {
			return err
		}
		for _, line := range lines {
			line.OrderID = id
			if err := insertOrder(ctx, tx, line); err != nil {
				return err
			}
		}
		orderID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return orderID, nil
}
