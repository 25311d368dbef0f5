package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRepository_PublishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository()
	snapshot := []domain.PredictionRecord{
		{ItemID: "A", PredictedQuantity: 3},
		{ItemID: "B", PredictedQuantity: 0},
	}

	require.NoError(t, repo.Publish(ctx, snapshot))
	require.NoError(t, repo.Publish(ctx, snapshot))

	got, err := repo.ListPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}

func TestPredictionRepository_PublishReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewPredictionRepository()
	require.NoError(t, repo.Publish(ctx, []domain.PredictionRecord{{ItemID: "A", PredictedQuantity: 3}}))
	require.NoError(t, repo.Publish(ctx, []domain.PredictionRecord{{ItemID: "C", PredictedQuantity: 1}}))

	got, err := repo.ListPredictions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PredictionRecord{{ItemID: "C", PredictedQuantity: 1}}, got)
}

func TestInventoryRepository_AddStockCreatesThenIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()

	require.NoError(t, repo.AddStock(ctx, "Sugar", "dry", decimal.NewFromInt(4)))
	require.NoError(t, repo.AddStock(ctx, "Sugar", "dry", decimal.NewFromInt(6)))

	list, err := repo.ListInventory(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sugar", list[0].Name)
	assert.True(t, list[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestInventoryRepository_Adjust(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository()
	repo.Put(domain.InventoryRecord{IngID: "ING1", Quantity: decimal.NewFromInt(5)})

	require.NoError(t, repo.Adjust(ctx, "ING1", decimal.RequireFromString("-1.5")))
	rec, err := repo.GetInventory(ctx, "ING1")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(decimal.RequireFromString("3.5")))

	err = repo.Adjust(ctx, "ING1", decimal.NewFromInt(-4))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	rec, err = repo.GetInventory(ctx, "ING1")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(decimal.RequireFromString("3.5")))

	err = repo.Adjust(ctx, "MISSING", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetInventory(ctx, "MISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_NextOrderID(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	first, err := repo.NextOrderID(ctx)
	require.NoError(t, err)
	second, err := repo.NextOrderID(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ORD001", first)
	assert.Equal(t, "ORD002", second)
}

func TestCatalogRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()
	repo.AddItem(domain.Item{ItemID: "I1", SKU: "S1", ItemName: "Latte"})
	repo.AddItem(domain.Item{ItemID: "I1", SKU: "S1", ItemName: "Flat white"})

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Flat white", items[0].ItemName)

	_, err = repo.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetItemByName(ctx, "Latte")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	recipe, err := repo.GetRecipe(ctx, "S1")
	require.NoError(t, err)
	assert.NotNil(t, recipe)
	assert.Empty(t, recipe)
}

func TestSaleRepository_CommitSale(t *testing.T) {
	ctx := context.Background()
	orders := NewOrderRepository()
	inventory := NewInventoryRepository()
	inventory.Put(domain.InventoryRecord{IngID: "MILK", Quantity: decimal.NewFromInt(2)})
	inventory.Put(domain.InventoryRecord{IngID: "BEAN", Quantity: decimal.NewFromInt(1)})
	sales := NewSaleRepository(orders, inventory)

	orderID, err := sales.CommitSale(ctx,
		[]domain.StockDeduction{
			{IngID: "MILK", Quantity: decimal.RequireFromString("0.5")},
			{IngID: "BEAN", Quantity: decimal.RequireFromString("0.1")},
		},
		[]domain.OrderRecord{{RowID: "r1", ItemID: "I1"}, {RowID: "r2", ItemID: "I2"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "ORD001", orderID)

	list, err := orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD001", list[0].OrderID)
	assert.Equal(t, "ORD001", list[1].OrderID)

	milk, err := inventory.GetInventory(ctx, "MILK")
	require.NoError(t, err)
	assert.True(t, milk.Quantity.Equal(decimal.RequireFromString("1.5")))
}

func TestSaleRepository_CommitSaleIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	lines := []domain.OrderRecord{{RowID: "r1", ItemID: "I1"}}

	tests := []struct {
		name       string
		deductions []domain.StockDeduction
		insertErr  error
		wantErr    error
	}{
		{
			name: "second ingredient short",
			deductions: []domain.StockDeduction{
				{IngID: "MILK", Quantity: decimal.NewFromInt(1)},
				{IngID: "BEAN", Quantity: decimal.NewFromInt(2)},
			},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name: "same ingredient twice exceeds stock",
			deductions: []domain.StockDeduction{
				{IngID: "MILK", Quantity: decimal.NewFromInt(1)},
				{IngID: "MILK", Quantity: decimal.NewFromInt(2)},
			},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name:       "unknown ingredient",
			deductions: []domain.StockDeduction{{IngID: "COCOA", Quantity: decimal.NewFromInt(1)}},
			wantErr:    domain.ErrInsufficientStock,
		},
		{
			name:       "order insert fails",
			deductions: []domain.StockDeduction{{IngID: "MILK", Quantity: decimal.NewFromInt(1)}},
			insertErr:  errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := NewOrderRepository()
			orders.InsertErr = tt.insertErr
			inventory := NewInventoryRepository()
			inventory.Put(domain.InventoryRecord{IngID: "MILK", Quantity: decimal.NewFromInt(2)})
			inventory.Put(domain.InventoryRecord{IngID: "BEAN", Quantity: decimal.NewFromInt(1)})

			_, err := NewSaleRepository(orders, inventory).CommitSale(ctx, tt.deductions, lines)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.ErrorIs(t, err, tt.insertErr)
			}

			milk, err := inventory.GetInventory(ctx, "MILK")
			require.NoError(t, err)
			assert.True(t, milk.Quantity.Equal(decimal.NewFromInt(2)))
			bean, err := inventory.GetInventory(ctx, "BEAN")
			require.NoError(t, err)
			assert.True(t, bean.Quantity.Equal(decimal.NewFromInt(1)))

			orders.InsertErr = nil
			list, err := orders.ListOrders(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}
