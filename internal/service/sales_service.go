package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/pipeline"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SalesService struct {
	orders  repository.OrderRepository
	sales   repository.SaleRecorder
	items   repository.ItemRepository
	recipes repository.RecipeRepository
	hooks   []StockHook
	now     func() time.Time
}

func NewSalesService(
	orders repository.OrderRepository,
	sales repository.SaleRecorder,
	items repository.ItemRepository,
	recipes repository.RecipeRepository,
) *SalesService {
	return &SalesService{
		orders:  orders,
		sales:   sales,
		items:   items,
		recipes: recipes,
		now:     time.Now,
	}
}

// OnStockChange registers a hook called after every recorded sale.
func (s *SalesService) OnStockChange(hook StockHook) {
	s.hooks = append(s.hooks, hook)
}

// RecordSale validates every line and resolves its recipe, then commits the
// ingredient deductions and one order record per line as a single unit
// under one order id.
func (s *SalesService) RecordSale(ctx context.Context, req domain.SaleRequest) (string, error) {
	custName := strings.TrimSpace(req.CustName)
	if custName == "" || len(req.Items) == 0 {
		return "", fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}
	channel, ok := domain.ParseChannel(req.InOrOut)
	if !ok {
		return "", fmt.Errorf("%w: unknown order channel %q", domain.ErrInvalidInput, req.InOrOut)
	}

	recordedAt := s.now().UTC().Format(time.RFC3339Nano)
	lines := make([]domain.OrderRecord, 0, len(req.Items))
	required := make(map[string]decimal.Decimal)
	var ingredientOrder []string

	for _, entry := range req.Items {
		if strings.TrimSpace(entry.ItemName) == "" || entry.Quantity <= 0 {
			return "", fmt.Errorf("%w: invalid item or quantity: %s", domain.ErrInvalidInput, entry.ItemName)
		}

		item, err := s.items.GetItemByName(ctx, entry.ItemName)
		if err != nil {
			return "", fmt.Errorf("item %s: %w", entry.ItemName, err)
		}
		if item.SKU == "" {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingRecipe, entry.ItemName)
		}

		recipe, err := s.recipes.GetRecipe(ctx, item.SKU)
		if err != nil {
			return "", fmt.Errorf("recipe %s: %w", item.SKU, err)
		}
		if len(recipe) == 0 {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingRecipe, entry.ItemName)
		}

		qty := decimal.NewFromInt(int64(entry.Quantity))
		for _, r := range recipe {
			if _, seen := required[r.IngID]; !seen {
				ingredientOrder = append(ingredientOrder, r.IngID)
			}
			required[r.IngID] = required[r.IngID].Add(r.Quantity.Mul(qty))
		}

		lines = append(lines, domain.OrderRecord{
			RowID:    uuid.NewString(),
			ItemID:   item.ItemID,
			ItemName: item.ItemName,
			RawDate:  recordedAt,
			Quantity: entry.Quantity,
			CustName: custName,
			InOrOut:  channel,
		})
	}

	deductions := make([]domain.StockDeduction, len(ingredientOrder))
	for i, ingID := range ingredientOrder {
		deductions[i] = domain.StockDeduction{IngID: ingID, Quantity: required[ingID]}
	}

	orderID, err := s.sales.CommitSale(ctx, deductions, lines)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("order_id", orderID).
		Int("lines", len(lines)).
		Str("channel", channel).
		Msg("Sale recorded")

	for _, hook := range s.hooks {
		hook(ctx)
	}
	return orderID, nil
}

// SalesStats sums sold quantities for the trailing seven days (keyed by
// weekday label), the current month, the current year and all time. Orders
// with an unparseable date are ignored; a missing quantity counts as one.
func (s *SalesService) SalesStats(ctx context.Context) (*domain.SalesStats, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -6)

	stats := &domain.SalesStats{
		WeeklySales: make(map[string]int, 7),
		WeekOrder:   make([]string, 0, 7),
	}
	for d := weekStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		label := d.Format("Mon")
		stats.WeeklySales[label] = 0
		stats.WeekOrder = append(stats.WeekOrder, label)
	}

	for _, order := range orders {
		nd := pipeline.NormalizeDate(order.RawDate)
		if !nd.Valid {
			continue
		}
		qty := order.Quantity
		if qty <= 0 {
			qty = 1
		}

		if !nd.Date.Before(weekStart) && !nd.Date.After(today) {
			stats.WeeklySales[nd.Date.Format("Mon")] += qty
		}
		if nd.Date.Year() == today.Year() {
			stats.SalesYear += qty
			if nd.Date.Month() == today.Month() {
				stats.SalesMonth += qty
			}
		}
		stats.SalesTotal += qty
	}

	return stats, nil
}

// Distribution counts order lines per known channel.
func (s *SalesService) Distribution(ctx context.Context) (map[string]int, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, order := range orders {
		if ch, ok := domain.ParseChannel(order.InOrOut); ok {
			counts[ch]++
		}
	}
	return counts, nil
}
