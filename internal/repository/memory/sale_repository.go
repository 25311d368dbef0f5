package memory

import (
	"context"
	"fmt"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/shopspring/decimal"
)

// SaleRepository commits sales across an order log and an inventory,
// holding both locks so a sale is applied entirely or not at all.
type SaleRepository struct {
	orders    *OrderRepository
	inventory *InventoryRepository
}

var _ repository.SaleRecorder = (*SaleRepository)(nil)

func NewSaleRepository(orders *OrderRepository, inventory *InventoryRepository) *SaleRepository {
	return &SaleRepository{orders: orders, inventory: inventory}
}

func (r *SaleRepository) CommitSale(ctx context.Context, deductions []domain.StockDeduction, lines []domain.OrderRecord) (string, error) {
	r.inventory.mu.Lock()
	defer r.inventory.mu.Unlock()
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	remaining := make(map[string]decimal.Decimal, len(deductions))
	for _, d := range deductions {
		current, ok := remaining[d.IngID]
		if !ok {
			rec, found := r.inventory.stock[d.IngID]
			if !found {
				return "", fmt.Errorf("%w: %s", domain.ErrInsufficientStock, d.IngID)
			}
			current = rec.Quantity
		}
		next := current.Sub(d.Quantity)
		if next.IsNegative() {
			return "", fmt.Errorf("%w: %s", domain.ErrInsufficientStock, d.IngID)
		}
		remaining[d.IngID] = next
	}

	if r.orders.InsertErr != nil {
		return "", r.orders.InsertErr
	}

	orderID := r.orders.nextIDLocked()
	for _, line := range lines {
		line.OrderID = orderID
		r.orders.orders = append(r.orders.orders, line)
	}
	for ingID, qty := range remaining {
		rec := r.inventory.stock[ingID]
		rec.Quantity = qty
		r.inventory.stock[ingID] = rec
	}
	return orderID, nil
}
