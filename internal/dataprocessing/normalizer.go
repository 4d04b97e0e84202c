package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"thrive/internal/config"
	"thrive/pkg/contracts/domain"
)

// storeSuffixRe matches the region-code suffix appended to store
// names, e.g. "Thrive Uptown - RD12".
var storeSuffixRe = regexp.MustCompile(` - RD\d+`)

var currencyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// parseCurrency converts a currency-formatted cell ("$1,234.56") to a
// float. Empty cells are zero; anything else non-numeric is an error.
func parseCurrency(cell string) (float64, error) {
	cleaned := currencyReplacer.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid currency value %q", cell)
	}
	return value, nil
}

// parseQuantity is tolerant: unparsable quantities coerce to zero the
// way the rest of the export tooling treats them.
func parseQuantity(cell string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0
	}
	if n, err := strconv.Atoi(cleaned); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int(f)
	}
	return 0
}

// ParseSalesFile reads one sales export (CSV or XLSX) into cleaned,
// typed records. Only recognized columns are read, renamed through the
// fixed header mapping. A malformed currency cell fails the whole
// file; rows with unparsable timestamps are dropped silently.
func ParseSalesFile(path string) ([]domain.SalesRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s is empty", filepath.Base(path))
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	currency := make(map[string]bool, len(config.CurrencyFields))
	for _, field := range config.CurrencyFields {
		currency[field] = true
	}

	cell := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := make([]domain.SalesRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		completedAt, err := time.Parse(config.CompletedAtLayout, strings.TrimSpace(cell(row, "completed_at")))
		if err != nil {
			continue // unparsable timestamp drops the row, not the file
		}

		money := make(map[string]float64, len(config.CurrencyFields))
		for _, field := range config.CurrencyFields {
			value, err := parseCurrency(cell(row, field))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", field, err)
			}
			money[field] = value
		}

		rec := domain.SalesRecord{
			ReceiptID:    strings.TrimSpace(cell(row, "receipt_id")),
			OrderType:    strings.TrimSpace(cell(row, "order_type")),
			SoldBy:       strings.TrimSpace(cell(row, "sold_by")),
			CompletedAt:  completedAt,
			CustomerID:   strings.TrimSpace(cell(row, "customer_id")),
			CustomerName: strings.TrimSpace(cell(row, "customer_name")),
			Store:        strings.TrimSpace(storeSuffixRe.ReplaceAllString(cell(row, "store"), "")),
			Product:      strings.ToUpper(strings.TrimSpace(cell(row, "product"))),
			Brand:        strings.TrimSpace(cell(row, "brand")),
			Quantity:     parseQuantity(cell(row, "quantity")),

			PreDiscountRevenue: money["pre_discount_revenue"],
			Discounts:          money["discounts"],
			Taxes:              money["taxes"],
			ActualRevenue:      money["actual_revenue"],
			TotalCollected:     money["total_collected"],
			ReceiptTotal:       money["receipt_total"],
			NetProfit:          money["net_profit"],
			Cost:               money["cost"],
			CostPerItem:        money["cost_per_item"],

			DealsUsed:       strings.ToUpper(strings.TrimSpace(cell(row, "deals_used"))),
			InlineDiscounts: strings.ToUpper(strings.TrimSpace(cell(row, "inline_discounts"))),
		}

		if category := strings.ToUpper(strings.TrimSpace(cell(row, "category"))); category != "" {
			rec.Category = CanonicalCategory(category)
		} else {
			rec.Category = "UNKNOWN"
		}

		rec.HasDiscount = rec.Discounts > 0
		rec.SaleDate = time.Date(completedAt.Year(), completedAt.Month(), completedAt.Day(), 0, 0, 0, 0, time.UTC)
		rec.Year = int16(completedAt.Year())
		rec.Month = int8(completedAt.Month())

		records = append(records, rec)
	}

	return records, nil
}

// mapColumns resolves internal field names to column indexes using the
// fixed header rename table. Unrecognized columns are ignored.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, raw := range header {
		if field, ok := config.ColumnMap[strings.TrimSpace(raw)]; ok {
			cols[field] = i
		}
	}
	for _, required := range []string{"receipt_id", "completed_at", "product"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

// readRows loads the raw cell grid from a CSV or XLSX file.
func readRows(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readExcelRows(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports occasionally carry ragged rows
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readExcelRows finds the sheet carrying the export header and returns
// its rows. Some exports arrive as workbooks with a cover sheet first.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		header := strings.Join(rows[0], " ")
		if strings.Contains(header, "Receipt ID") && strings.Contains(header, "Completed At") {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("no sales data sheet found in %s", filepath.Base(path))
}
