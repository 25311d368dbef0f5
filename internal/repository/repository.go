// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderRepository is the append-only order log.
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.OrderRecord, error)
	InsertOrder(ctx context.Context, order domain.OrderRecord) error
	// NextOrderID allocates the next sequential order id, e.g. "ORD007".
	NextOrderID(ctx context.Context) (string, error)
}

type ItemRepository interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	// GetItem returns domain.ErrNotFound when the id is unknown.
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	GetItemByName(ctx context.Context, name string) (*domain.Item, error)
}

type RecipeRepository interface {
	// GetRecipe returns every ingredient line of sku; an empty slice when the
	// sku has no recipe.
	GetRecipe(ctx context.Context, sku string) ([]domain.RecipeEntry, error)
}

type InventoryRepository interface {
	ListInventory(ctx context.Context) ([]domain.InventoryRecord, error)
	// GetInventory returns domain.ErrNotFound when no stock record exists.
	GetInventory(ctx context.Context, ingID string) (*domain.InventoryRecord, error)
	// Adjust atomically adds delta (which may be negative) to the stock of
	// ingID. It returns domain.ErrInsufficientStock, leaving the stock
	// unchanged, when the result would be negative.
	Adjust(ctx context.Context, ingID string, delta decimal.Decimal) error
	// AddStock increments the stock of the ingredient named name, creating it
	// when missing.
	AddStock(ctx context.Context, name, itemType string, delta decimal.Decimal) error
}

// PredictionRepository holds only the latest prediction snapshot.
type PredictionRepository interface {
	// Publish replaces every stored prediction with records.
	Publish(ctx context.Context, records []domain.PredictionRecord) error
	ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error)
}

// SaleRecorder commits a sale as a single unit: it allocates the order id,
// deducts every ingredient and appends the order lines with that id. When
// any deduction would take stock below zero it returns
// domain.ErrInsufficientStock and nothing is written.
type SaleRecorder interface {
	CommitSale(ctx context.Context, deductions []domain.StockDeduction, lines []domain.OrderRecord) (string, error)
}
