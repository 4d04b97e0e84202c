// Package exporter writes query results as CSV, either streamed to an
// http.ResponseWriter for download or to a file on disk. Output starts
// with a UTF-8 BOM so Excel opens it with the right encoding.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"thrive/pkg/contracts/domain"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var salesHeader = []string{
	"receipt_id",
	"completed_at",
	"store",
	"sold_by",
	"customer_name",
	"brand",
	"category",
	"product",
	"quantity",
	"pre_discount_revenue",
	"discounts",
	"actual_revenue",
	"taxes",
	"cost",
	"cost_per_item",
	"net_profit",
	"transaction_type",
	"deal_type",
	"deals_used",
	"has_discount",
}

// WriteSales streams records to w as CSV, one line item per row.
func WriteSales(w io.Writer, records []domain.SalesRecord) error {
	if _, err := w.Write(bom); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(salesRow(&records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSalesFile writes records as CSV to path, creating parent
// directories as needed.
func WriteSalesFile(path string, records []domain.SalesRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := WriteSales(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func salesRow(r *domain.SalesRecord) []string {
	return []string{
		r.ReceiptID,
		r.CompletedAt.Format("2006-01-02 15:04:05"),
		r.Store,
		r.SoldBy,
		r.CustomerName,
		r.Brand,
		r.Category,
		r.Product,
		strconv.Itoa(r.Quantity),
		money(r.PreDiscountRevenue),
		money(r.Discounts),
		money(r.ActualRevenue),
		money(r.Taxes),
		money(r.Cost),
		money(r.CostPerItem),
		money(r.NetProfit),
		string(r.TransactionType),
		string(r.DealType),
		r.DealsUsed,
		strconv.FormatBool(r.HasDiscount),
	}
}

// money formats with exactly two decimal places so 13.4 exports as
// 13.40.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
