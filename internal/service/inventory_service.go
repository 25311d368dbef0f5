package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the exclusive upper bound for "low stock".
var LowStockThreshold = decimal.NewFromInt(10)

// StockHook runs after stock levels have changed.
type StockHook func(ctx context.Context)

type InventoryService struct {
	inventory repository.InventoryRepository
	items     repository.ItemRepository
	hooks     []StockHook
}

func NewInventoryService(inventory repository.InventoryRepository, items repository.ItemRepository) *InventoryService {
	return &InventoryService{inventory: inventory, items: items}
}

// AddStock increments the named ingredient, creating it when missing.
func (s *InventoryService) AddStock(ctx context.Context, name, itemType string, quantity decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}
	if err := s.inventory.AddStock(ctx, name, strings.TrimSpace(itemType), quantity); err != nil {
		return err
	}
	for _, hook := range s.hooks {
		hook(ctx)
	}
	return nil
}

// OnStockChange registers a hook called after every stock addition.
func (s *InventoryService) OnStockChange(hook StockHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.inventory.ListInventory(ctx)
}

func (s *InventoryService) Items(ctx context.Context) ([]domain.Item, error) {
	return s.items.ListItems(ctx)
}

func (s *InventoryService) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	records, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.InventoryStats{TotalItems: len(records)}
	for _, rec := range records {
		switch {
		case !rec.Quantity.IsPositive():
			stats.OutOfStock++
		case rec.Quantity.LessThan(LowStockThreshold):
			stats.LowStock++
		}
	}
	return stats, nil
}
