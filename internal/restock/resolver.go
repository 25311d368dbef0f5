package restock

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Resolver expands item predictions through recipes into ingredient
// shortages against current stock.
type Resolver struct {
	items     repository.ItemRepository
	recipes   repository.RecipeRepository
	inventory repository.InventoryRepository
	now       func() time.Time
}

// NewResolver creates a new restock resolver
func NewResolver(items repository.ItemRepository, recipes repository.RecipeRepository, inventory repository.InventoryRepository) *Resolver {
	return &Resolver{
		items:     items,
		recipes:   recipes,
		inventory: inventory,
		now:       time.Now,
	}
}

// Resolve builds the restock report for a prediction snapshot.
//
// An ingredient is reported at most once per call: the first prediction
// that needs it decides its shortage and later items needing the same
// ingredient are ignored for it, even when the first computation found no
// shortage. Ingredients without a stock record are skipped and stay
// eligible for later items.
func (r *Resolver) Resolve(ctx context.Context, predictions []domain.PredictionRecord) (*domain.RestockReport, error) {
	var (
		items []domain.Item
		stock []domain.InventoryRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = r.items.ListItems(gctx)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stock, err = r.inventory.ListInventory(gctx)
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := make(map[string]domain.Item, len(items))
	for _, it := range items {
		if _, dup := catalog[it.ItemID]; !dup {
			catalog[it.ItemID] = it
		}
	}
	onHand := make(map[string]domain.InventoryRecord, len(stock))
	for _, rec := range stock {
		onHand[rec.IngID] = rec
	}

	report := &domain.RestockReport{
		ItemSalesPredictions:      []domain.ItemSalesPrediction{},
		RestockingRecommendations: []domain.RestockRecommendation{},
		GeneratedAt:               r.now(),
	}
	seen := make(map[string]bool)
	skipped := 0

	for _, pred := range predictions {
		item, ok := catalog[pred.ItemID]
		if !ok {
			skipped++
			continue
		}

		report.ItemSalesPredictions = append(report.ItemSalesPredictions, domain.ItemSalesPrediction{
			ItemID:            item.ItemID,
			ItemName:          item.ItemName,
			ItemSize:          item.ItemSize,
			PredictedQuantity: pred.PredictedQuantity,
		})

		entries, err := r.recipes.GetRecipe(ctx, item.SKU)
		if err != nil {
			return nil, fmt.Errorf("load recipe %s: %w", item.SKU, err)
		}

		predicted := decimal.NewFromInt(int64(pred.PredictedQuantity))
		for _, entry := range entries {
			if seen[entry.IngID] {
				continue
			}
			rec, ok := onHand[entry.IngID]
			if !ok {
				continue
			}

			required := predicted.Mul(entry.Quantity)
			seen[entry.IngID] = true

			if suggestion := recommend(rec, required); suggestion != nil {
				report.RestockingRecommendations = append(report.RestockingRecommendations, *suggestion)
			}
		}
	}

	if skipped > 0 {
		log.Debug().Int("predictions", skipped).Msg("Skipped predictions for items missing from catalog")
	}

	return report, nil
}

// recommend returns a recommendation when required exceeds stock, nil otherwise.
func recommend(stock domain.InventoryRecord, required decimal.Decimal) *domain.RestockRecommendation {
	shortage := decimal.Max(decimal.Zero, required.Sub(stock.Quantity))
	if !shortage.IsPositive() {
		return nil
	}

	return &domain.RestockRecommendation{
		IngID:          stock.IngID,
		IngName:        stock.Name,
		InvID:          stock.InvID,
		CurrentStock:   stock.Quantity,
		PredictedUsage: required,
		Shortage:       shortage,
		Unit:           stock.Unit,
	}
}
