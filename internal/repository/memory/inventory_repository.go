package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/shopspring/decimal"
)

// InventoryRepository keeps ingredient stock keyed by ing_id.
type InventoryRepository struct {
	mu    sync.Mutex
	stock map[string]domain.InventoryRecord
}

var _ repository.InventoryRepository = (*InventoryRepository)(nil)

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{stock: make(map[string]domain.InventoryRecord)}
}

// Put stores rec, replacing any record with the same ing_id.
func (r *InventoryRepository) Put(rec domain.InventoryRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[rec.IngID] = rec
}

func (r *InventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.InventoryRecord, 0, len(r.stock))
	for _, rec := range r.stock {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngID < out[j].IngID })
	return out, nil
}

func (r *InventoryRepository) GetInventory(ctx context.Context, ingID string) (*domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.stock[ingID]
	if !ok {
		return nil, fmt.Errorf("inventory %s: %w", ingID, domain.ErrNotFound)
	}
	return &rec, nil
}

func (r *InventoryRepository) Adjust(ctx context.Context, ingID string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.stock[ingID]
	if !ok {
		return fmt.Errorf("inventory %s: %w", ingID, domain.ErrNotFound)
	}
	next := rec.Quantity.Add(delta)
	if next.IsNegative() {
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, ingID)
	}
	rec.Quantity = next
	r.stock[ingID] = rec
	return nil
}

func (r *InventoryRepository) AddStock(ctx context.Context, name, itemType string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.stock {
		if rec.Name == name {
			rec.Quantity = rec.Quantity.Add(delta)
			r.stock[id] = rec
			return nil
		}
	}
	// New ingredients are keyed by name until a catalog id is assigned.
	r.stock[name] = domain.InventoryRecord{
		IngID:    name,
		Name:     name,
		Quantity: delta,
		ItemType: itemType,
	}
	return nil
}
