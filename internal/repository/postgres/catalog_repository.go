package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
)

type catalogRepository struct {
	db *DB
}

// CatalogRepository serves both the item catalog and recipe lookups.
type CatalogRepository interface {
	repository.ItemRepository
	repository.RecipeRepository
	UpsertItem(ctx context.Context, item domain.Item) error
	UpsertRecipeEntry(ctx context.Context, entry domain.RecipeEntry) error
}

func NewCatalogRepository(db *DB) CatalogRepository {
	return &catalogRepository{db: db}
}

const itemColumns = `item_id, sku, item_name, item_cat, item_size, item_price`

func (r *catalogRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY item_id`

	var items []domain.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return items, nil
}

func (r *catalogRepository) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1`

	var item domain.Item
	err := r.db.GetContext(ctx, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting item %s: %w", itemID, err)
	}
	return &item, nil
}

func (r *catalogRepository) GetItemByName(ctx context.Context, name string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_name = $1 ORDER BY item_id LIMIT 1`

	var item domain.Item
	err := r.db.GetContext(ctx, &item, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting item %q: %w", name, err)
	}
	return &item, nil
}

func (r *catalogRepository) GetRecipe(ctx context.Context, sku string) ([]domain.RecipeEntry, error) {
	query := `
		SELECT sku, ing_id, quantity
		FROM recipe
		WHERE sku = $1
		ORDER BY id
	`

	entries := []domain.RecipeEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, sku); err != nil {
		return nil, fmt.Errorf("error getting recipe for %s: %w", sku, err)
	}
	return entries, nil
}

func (r *catalogRepository) UpsertItem(ctx context.Context, item domain.Item) error {
	query := `
		INSERT INTO items (item_id, sku, item_name, item_cat, item_size, item_price, updated_at)
		VALUES (:item_id, :sku, :item_name, :item_cat, :item_size, :item_price, NOW())
		ON CONFLICT (item_id)
		DO UPDATE SET
			sku = EXCLUDED.sku,
			item_name = EXCLUDED.item_name,
			item_cat = EXCLUDED.item_cat,
			item_size = EXCLUDED.item_size,
			item_price = EXCLUDED.item_price,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ItemID, err)
	}
	return nil
}

func (r *catalogRepository) UpsertRecipeEntry(ctx context.Context, entry domain.RecipeEntry) error {
	query := `
		INSERT INTO recipe (sku, ing_id, quantity)
		VALUES (:sku, :ing_id, :quantity)
		ON CONFLICT (sku, ing_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to upsert recipe %s/%s: %w", entry.SKU, entry.IngID, err)
	}
	return nil
}
