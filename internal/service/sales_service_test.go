package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salesFixture struct {
	orders    *memory.OrderRepository
	catalog   *memory.CatalogRepository
	inventory *memory.InventoryRepository
	service   *SalesService
}

func newSalesFixture(orders ...domain.OrderRecord) *salesFixture {
	catalog := memory.NewCatalogRepository()
	catalog.AddItem(domain.Item{ItemID: "I1", SKU: "LATTE", ItemName: "Latte"})
	catalog.AddItem(domain.Item{ItemID: "I2", SKU: "ESPRESSO", ItemName: "Espresso"})
	catalog.AddItem(domain.Item{ItemID: "I3", SKU: "", ItemName: "Cookie"})
	catalog.AddItem(domain.Item{ItemID: "I4", SKU: "TEA", ItemName: "Tea"})
	catalog.AddRecipeEntry(domain.RecipeEntry{SKU: "LATTE", IngID: "ING-MILK", Quantity: decimal.RequireFromString("0.25")})
	catalog.AddRecipeEntry(domain.RecipeEntry{SKU: "LATTE", IngID: "ING-BEAN", Quantity: decimal.RequireFromString("0.02")})
	catalog.AddRecipeEntry(domain.RecipeEntry{SKU: "ESPRESSO", IngID: "ING-BEAN", Quantity: decimal.RequireFromString("0.02")})

	inventory := memory.NewInventoryRepository()
	inventory.Put(domain.InventoryRecord{IngID: "ING-MILK", Name: "Milk", Quantity: decimal.NewFromInt(2)})
	inventory.Put(domain.InventoryRecord{IngID: "ING-BEAN", Name: "Beans", Quantity: decimal.NewFromInt(1)})

	orderRepo := memory.NewOrderRepository(orders...)
	return &salesFixture{
		orders:    orderRepo,
		catalog:   catalog,
		inventory: inventory,
		service:   NewSalesService(orderRepo, memory.NewSaleRepository(orderRepo, inventory), catalog, catalog),
	}
}

func (f *salesFixture) stock(t *testing.T, ingID string) decimal.Decimal {
	t.Helper()
	rec, err := f.inventory.GetInventory(context.Background(), ingID)
	require.NoError(t, err)
	return rec.Quantity
}

func TestRecordSale_DeductsStockAndAppendsOrders(t *testing.T) {
	f := newSalesFixture()
	f.service.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }

	orderID, err := f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "Dine In",
		Items: []domain.SaleLine{
			{ItemName: "Latte", Quantity: 2},
			{ItemName: "Espresso", Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD001", orderID)

	assert.True(t, f.stock(t, "ING-MILK").Equal(decimal.RequireFromString("1.5")))
	assert.True(t, f.stock(t, "ING-BEAN").Equal(decimal.RequireFromString("0.9")))

	orders, err := f.orders.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "ORD001", o.OrderID)
		assert.Equal(t, "Ana", o.CustName)
		assert.Equal(t, domain.ChannelDineIn, o.InOrOut)
		assert.Equal(t, "2024-03-15T09:30:00Z", o.RawDate)
		assert.NotEmpty(t, o.RowID)
	}
	assert.Equal(t, "I1", orders[0].ItemID)
	assert.Equal(t, 2, orders[0].Quantity)
	assert.Equal(t, "I2", orders[1].ItemID)
}

func TestRecordSale_ChecksAggregatedStockBeforeWriting(t *testing.T) {
	f := newSalesFixture()

	// Each line fits on its own (1.25 and 1.0 litres) but together they need 2.25.
	_, err := f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items: []domain.SaleLine{
			{ItemName: "Latte", Quantity: 5},
			{ItemName: "Latte", Quantity: 4},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stock(t, "ING-MILK").Equal(decimal.NewFromInt(2)))
	orders, err := f.orders.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRecordSale_FailedInsertLeavesStockUnchanged(t *testing.T) {
	f := newSalesFixture()
	f.orders.InsertErr = errors.New("orders table unavailable")

	_, err := f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 2}},
	})
	assert.ErrorContains(t, err, "orders table unavailable")

	assert.True(t, f.stock(t, "ING-MILK").Equal(decimal.NewFromInt(2)))
	assert.True(t, f.stock(t, "ING-BEAN").Equal(decimal.NewFromInt(1)))

	f.orders.InsertErr = nil
	orderID, err := f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD001", orderID)
}

func TestRecordSale_CallsStockHooksOnlyOnSuccess(t *testing.T) {
	f := newSalesFixture()
	calls := 0
	f.service.OnStockChange(func(ctx context.Context) { calls++ })

	_, err := f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 100}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, calls)

	_, err = f.service.RecordSale(context.Background(), domain.SaleRequest{
		CustName: "Ana",
		InOrOut:  "takeout",
		Items:    []domain.SaleLine{{ItemName: "Latte", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRecordSale_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  domain.SaleRequest
		want error
	}{
		{
			name: "missing customer",
			req:  domain.SaleRequest{InOrOut: "takeout", Items: []domain.SaleLine{{ItemName: "Latte", Quantity: 1}}},
			want: domain.ErrInvalidInput,
		},
		{
			name: "no items",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "takeout"},
			want: domain.ErrInvalidInput,
		},
		{
			name: "unknown channel",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "drive-thru", Items: []domain.SaleLine{{ItemName: "Latte", Quantity: 1}}},
			want: domain.ErrInvalidInput,
		},
		{
			name: "zero quantity",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "takeout", Items: []domain.SaleLine{{ItemName: "Latte", Quantity: 0}}},
			want: domain.ErrInvalidInput,
		},
		{
			name: "unknown item",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "takeout", Items: []domain.SaleLine{{ItemName: "Mocha", Quantity: 1}}},
			want: domain.ErrNotFound,
		},
		{
			name: "item without sku",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "takeout", Items: []domain.SaleLine{{ItemName: "Cookie", Quantity: 1}}},
			want: domain.ErrMissingRecipe,
		},
		{
			name: "item without recipe",
			req:  domain.SaleRequest{CustName: "Ana", InOrOut: "takeout", Items: []domain.SaleLine{{ItemName: "Tea", Quantity: 1}}},
			want: domain.ErrMissingRecipe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSalesFixture()
			_, err := f.service.RecordSale(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)

			orders, err := f.orders.ListOrders(context.Background())
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestSalesStats(t *testing.T) {
	f := newSalesFixture(
		domain.OrderRecord{RawDate: "14/03/24 09:00", Quantity: 2},       // Thu, this week
		domain.OrderRecord{RawDate: "2024-03-09T10:00:00Z", Quantity: 1}, // Sat, first day of the window
		domain.OrderRecord{RawDate: "2024-03-08", Quantity: 3},           // same month, outside the window
		domain.OrderRecord{RawDate: "2024-01-05", Quantity: 0},           // counts as one
		domain.OrderRecord{RawDate: "2023-12-31", Quantity: 4},
		domain.OrderRecord{RawDate: "garbage", Quantity: 9},
	)
	f.service.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }

	stats, err := f.service.SalesStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"}, stats.WeekOrder)
	assert.Equal(t, map[string]int{"Sat": 1, "Sun": 0, "Mon": 0, "Tue": 0, "Wed": 0, "Thu": 2, "Fri": 0}, stats.WeeklySales)
	assert.Equal(t, 6, stats.SalesMonth)
	assert.Equal(t, 7, stats.SalesYear)
	assert.Equal(t, 11, stats.SalesTotal)
}

func TestDistribution(t *testing.T) {
	f := newSalesFixture(
		domain.OrderRecord{InOrOut: "dine-in"},
		domain.OrderRecord{InOrOut: "Dine In"},
		domain.OrderRecord{InOrOut: "takeout"},
		domain.OrderRecord{InOrOut: "delivery"},
	)

	counts, err := f.service.Distribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{domain.ChannelDineIn: 2, domain.ChannelTakeout: 1}, counts)
}
