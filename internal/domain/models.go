// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one line of the append-only order log. RawDate holds
// whatever the source stored: a legacy "DD/MM/YY HH:MM" string, an ISO-8601
// string or a native time.Time.
type OrderRecord struct {
	RowID    string `json:"row_id" db:"row_id"`
	OrderID  string `json:"order_id" db:"order_id"`
	ItemID   string `json:"item_id" db:"item_id"`
	ItemName string `json:"item_name" db:"item_name"`
	RawDate  any    `json:"date" db:"-"`
	Quantity int    `json:"quantity" db:"quantity"`
	CustName string `json:"cust_name" db:"cust_name"`
	InOrOut  string `json:"in_or_out" db:"in_or_out"`
}

// Item is catalog reference data for a sellable item.
type Item struct {
	ItemID       string          `json:"item_id" db:"item_id"`
	SKU          string          `json:"sku" db:"sku"`
	ItemName     string          `json:"item_name" db:"item_name"`
	ItemCategory string          `json:"item_cat" db:"item_cat"`
	ItemSize     string          `json:"item_size" db:"item_size"`
	Price        decimal.Decimal `json:"item_price" db:"item_price"`
}

// DailySeriesRow is the per (date, item) order count. Item is nil when the
// order referenced an item missing from the catalog.
type DailySeriesRow struct {
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"day_of_week"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Item      *Item     `json:"-"`
}

// FeaturedRow is a series row with a full trailing history window.
type FeaturedRow struct {
	DailySeriesRow
	Lag1         float64 `json:"lag1"`
	RollingMean3 float64 `json:"rolling_mean_3"`
	RollingStd3  float64 `json:"rolling_std_3"`
}

// NextDayFeatureVector is the model input for one item. The trailing
// statistics are those of the latest observed day.
type NextDayFeatureVector struct {
	ItemID       string  `json:"item_id"`
	DayOfWeek    int     `json:"day_of_week"`
	ItemEncoded  int     `json:"item_encoded"`
	Lag1         float64 `json:"lag1"`
	RollingMean3 float64 `json:"rolling_mean_3"`
	RollingStd3  float64 `json:"rolling_std_3"`
}

// Features returns the vector in model column order.
func (v NextDayFeatureVector) Features() [5]float64 {
	return [5]float64{
		float64(v.DayOfWeek),
		float64(v.ItemEncoded),
		v.Lag1,
		v.RollingMean3,
		v.RollingStd3,
	}
}

// PredictionRecord is one published next-day prediction.
type PredictionRecord struct {
	ItemID            string `json:"item_id" db:"item_id"`
	PredictedQuantity int    `json:"predicted_quantity" db:"predicted_quantity"`
}

// RecipeEntry states how much of an ingredient one unit of a SKU consumes.
type RecipeEntry struct {
	SKU      string          `json:"sku" db:"sku"`
	IngID    string          `json:"ing_id" db:"ing_id"`
	Quantity decimal.Decimal `json:"quantity" db:"quantity"`
}

// InventoryRecord is the current stock of one ingredient.
type InventoryRecord struct {
	IngID    string          `json:"ing_id" db:"ing_id"`
	InvID    string          `json:"inv_id" db:"inv_id"`
	Name     string          `json:"name" db:"name"`
	Quantity decimal.Decimal `json:"quantity" db:"quantity"`
	Unit     string          `json:"unit" db:"unit"`
	ItemType string          `json:"item_type" db:"item_type"`
}

// ItemSalesPrediction is the catalog-resolved view of a prediction.
type ItemSalesPrediction struct {
	ItemID            string `json:"item_id"`
	ItemName          string `json:"item_name"`
	ItemSize          string `json:"item_size"`
	PredictedQuantity int    `json:"predicted_quantity"`
}

type RestockRecommendation struct {
	IngID          string          `json:"ing_id"`
	IngName        string          `json:"ing_name"`
	InvID          string          `json:"inv_id"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	PredictedUsage decimal.Decimal `json:"predicted_usage"`
	Shortage       decimal.Decimal `json:"shortage"`
	Unit           string          `json:"unit"`
}

type RestockReport struct {
	ItemSalesPredictions      []ItemSalesPrediction   `json:"item_sales_predictions"`
	RestockingRecommendations []RestockRecommendation `json:"restocking_recommendations"`
	GeneratedAt               time.Time               `json:"generated_at"`
}

// SaleLine is one requested item of a sale.
type SaleLine struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// StockDeduction is the amount of one ingredient a sale consumes.
type StockDeduction struct {
	IngID    string
	Quantity decimal.Decimal
}

type SaleRequest struct {
	CustName string     `json:"cust_name"`
	InOrOut  string     `json:"in_or_out"`
	Items    []SaleLine `json:"items"`
}

type InventoryStats struct {
	TotalItems int `json:"total_items"`
	OutOfStock int `json:"out_of_stock"`
	LowStock   int `json:"low_stock"`
}

type SalesStats struct {
	WeeklySales map[string]int `json:"weekly_sales"`
	// WeekOrder lists the WeeklySales keys oldest first.
	WeekOrder  []string `json:"week_order"`
	SalesMonth int      `json:"sales_month"`
	SalesYear  int      `json:"sales_year"`
	SalesTotal int      `json:"sales_total"`
}
