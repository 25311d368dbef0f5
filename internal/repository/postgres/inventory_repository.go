package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type inventoryRepository struct {
	db *DB
}

// InventoryRepository adds seeding to the core inventory contract.
type InventoryRepository interface {
	repository.InventoryRepository
	UpsertInventory(ctx context.Context, rec domain.InventoryRecord) error
}

func NewInventoryRepository(db *DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `ing_id, inv_id, name, quantity, unit, item_type`

func (r *inventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory ORDER BY ing_id`

	var recs []domain.InventoryRecord
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}
	return recs, nil
}

func (r *inventoryRepository) GetInventory(ctx context.Context, ingID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE ing_id = $1`

	var rec domain.InventoryRecord
	err := r.db.GetContext(ctx, &rec, query, ingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inventory %s: %w", ingID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting inventory %s: %w", ingID, err)
	}
	return &rec, nil
}

func (r *inventoryRepository) Adjust(ctx context.Context, ingID string, delta decimal.Decimal) error {
	return adjustStock(ctx, r.db, ingID, delta)
}

// adjustStock applies delta only when the stock stays non-negative.
func adjustStock(ctx context.Context, ext sqlx.ExtContext, ingID string, delta decimal.Decimal) error {
	query := `
		UPDATE inventory
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE ing_id = $2 AND quantity + $1 >= 0
	`

	res, err := ext.ExecContext(ctx, query, delta, ingID)
	if err != nil {
		return fmt.Errorf("error adjusting inventory %s: %w", ingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error adjusting inventory %s: %w", ingID, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := ext.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM inventory WHERE ing_id = $1)`, ingID).Scan(&exists); err != nil {
		return fmt.Errorf("error checking inventory %s: %w", ingID, err)
	}
	if !exists {
		return fmt.Errorf("inventory %s: %w", ingID, domain.ErrNotFound)
	}
	return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, ingID)
}

func (r *inventoryRepository) AddStock(ctx context.Context, name, itemType string, delta decimal.Decimal) error {
	query := `
		INSERT INTO inventory (ing_id, name, quantity, item_type, updated_at)
		VALUES ($1, $1, $2, $3, NOW())
		ON CONFLICT (name)
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, name, delta, itemType); err != nil {
		return fmt.Errorf("error adding stock for %q: %w", name, err)
	}
	return nil
}

func (r *inventoryRepository) UpsertInventory(ctx context.Context, rec domain.InventoryRecord) error {
	query := `
		INSERT INTO inventory (ing_id, inv_id, name, quantity, unit, item_type, updated_at)
		VALUES (:ing_id, :inv_id, :name, :quantity, :unit, :item_type, NOW())
		ON CONFLICT (ing_id)
		DO UPDATE SET
			inv_id = EXCLUDED.inv_id,
			name = EXCLUDED.name,
			quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit,
			item_type = EXCLUDED.item_type,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to upsert inventory %s: %w", rec.IngID, err)
	}
	return nil
}
