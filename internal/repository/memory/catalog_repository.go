package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
)

// CatalogRepository stores items and their recipes in memory.
type CatalogRepository struct {
	mu        sync.RWMutex
	items     []domain.Item
	itemsByID map[string]int
	recipes   map[string][]domain.RecipeEntry
}

// Verify interface compliance
var _ repository.ItemRepository = (*CatalogRepository)(nil)
var _ repository.RecipeRepository = (*CatalogRepository)(nil)

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		itemsByID: make(map[string]int),
		recipes:   make(map[string][]domain.RecipeEntry),
	}
}

// AddItem adds or replaces an item.
func (r *CatalogRepository) AddItem(item domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.itemsByID[item.ItemID]; ok {
		r.items[i] = item
		return
	}
	r.itemsByID[item.ItemID] = len(r.items)
	r.items = append(r.items, item)
}

// AddRecipeEntry appends an ingredient line to the recipe of entry.SKU.
func (r *CatalogRepository) AddRecipeEntry(entry domain.RecipeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[entry.SKU] = append(r.recipes[entry.SKU], entry)
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Item(nil), r.items...), nil
}

func (r *CatalogRepository) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.itemsByID[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	item := r.items[i]
	return &item, nil
}

func (r *CatalogRepository) GetItemByName(ctx context.Context, name string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.ItemName == name {
			found := item
			return &found, nil
		}
	}
	return nil, fmt.Errorf("item %q: %w", name, domain.ErrNotFound)
}

func (r *CatalogRepository) GetRecipe(ctx context.Context, sku string) ([]domain.RecipeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.RecipeEntry{}, r.recipes[sku]...), nil
}
