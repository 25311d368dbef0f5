package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// csvRow looks up fields by header name. The first matching alias wins.
type csvRow struct {
	header map[string]int
	record []string
}

func (r csvRow) get(names ...string) string {
	for _, name := range names {
		if idx, ok := r.header[name]; ok && idx < len(r.record) {
			return strings.TrimSpace(r.record[idx])
		}
	}
	return ""
}

func (r csvRow) decimal(names ...string) (decimal.Decimal, error) {
	raw := r.get(names...)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func readCSV(path string, fn func(row csvRow) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header of %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := fn(csvRow{header: index, record: record}); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
}

func readItems(path string) ([]domain.Item, error) {
	var items []domain.Item
	err := readCSV(path, func(row csvRow) error {
		price, err := row.decimal("item_price", "price")
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		items = append(items, domain.Item{
			ItemID:       row.get("item_id"),
			SKU:          row.get("sku"),
			ItemName:     row.get("item_name"),
			ItemCategory: row.get("item_cat", "item_category"),
			ItemSize:     row.get("item_size"),
			Price:        price,
		})
		return nil
	})
	return items, err
}

func readRecipe(path string) ([]domain.RecipeEntry, error) {
	var entries []domain.RecipeEntry
	err := readCSV(path, func(row csvRow) error {
		qty, err := row.decimal("quantity")
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		entries = append(entries, domain.RecipeEntry{
			SKU:      row.get("sku"),
			IngID:    row.get("ing_id"),
			Quantity: qty,
		})
		return nil
	})
	return entries, err
}

func readInventory(path string) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := readCSV(path, func(row csvRow) error {
		qty, err := row.decimal("quantity")
		if err != nil {
			return fmt.Errorf("invalid quantity: %w", err)
		}
		records = append(records, domain.InventoryRecord{
			IngID:    row.get("ing_id"),
			InvID:    row.get("inv_id"),
			Name:     row.get("name", "ing_name"),
			Quantity: qty,
			Unit:     row.get("unit", "ing_meas"),
			ItemType: row.get("item_type"),
		})
		return nil
	})
	return records, err
}

// readOrders keeps the date column as text; legacy exports use
// "DD/MM/YY HH:MM" and are parsed later by the forecast pipeline.
func readOrders(path string) ([]domain.OrderRecord, error) {
	var orders []domain.OrderRecord
	err := readCSV(path, func(row csvRow) error {
		qty := 1
		if raw := row.get("quantity"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", raw, err)
			}
			qty = n
		}
		rowID := row.get("row_id")
		if rowID == "" {
			rowID = uuid.NewString()
		}
		orders = append(orders, domain.OrderRecord{
			RowID:    rowID,
			OrderID:  row.get("order_id"),
			ItemID:   row.get("item_id"),
			ItemName: row.get("item_name"),
			RawDate:  row.get("created_at", "date"),
			Quantity: qty,
			CustName: row.get("cust_name"),
			InOrOut:  row.get("in_or_out"),
		})
		return nil
	})
	return orders, err
}
