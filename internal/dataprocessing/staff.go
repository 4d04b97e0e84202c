package dataprocessing

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"thrive/pkg/contracts/domain"
)

// Staff-performance and customer-attribute exports are single files
// with no overlap, so they get straightforward parsing without the
// merge/dedup machinery.

// ParseStaffFile reads a staff-performance export. Currency and
// percent columns arrive formatted ("$1,234.56", "12.5%").
func ParseStaffFile(path string) ([]domain.StaffRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s is empty", filepath.Base(path))
	}

	cols := make(map[string]int, len(rows[0]))
	for i, raw := range rows[0] {
		switch strings.TrimSpace(raw) {
		case "Budtender", "Name", "Sold By":
			cols["name"] = i
		case "Store":
			cols["store"] = i
		case "Transactions":
			cols["transactions"] = i
		case "Average Cart Value (pre-tax)":
			cols["avg_cart_value"] = i
		case "Sales (pre-tax)":
			cols["sales"] = i
		case "Upsell Total Price":
			cols["upsell_price"] = i
		case "Upsell Total Profit":
			cols["upsell_profit"] = i
		case "% of Sales Discounted":
			cols["pct_discounted"] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("missing staff name column in %s", filepath.Base(path))
	}

	cell := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := make([]domain.StaffRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, "name"))
		if name == "" {
			continue
		}

		rec := domain.StaffRecord{
			Name:         name,
			Store:        strings.TrimSpace(cell(row, "store")),
			Transactions: parseQuantity(cell(row, "transactions")),
		}
		for field, dst := range map[string]*float64{
			"avg_cart_value": &rec.AvgCartValue,
			"sales":          &rec.Sales,
			"upsell_price":   &rec.UpsellPrice,
			"upsell_profit":  &rec.UpsellProfit,
		} {
			value, err := parseCurrency(cell(row, field))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", field, err)
			}
			*dst = value
		}
		rec.PctDiscounted, err = parsePercent(cell(row, "pct_discounted"))
		if err != nil {
			return nil, fmt.Errorf("column pct_discounted: %w", err)
		}

		records = append(records, rec)
	}
	return records, nil
}

func parsePercent(cell string) (float64, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(cell), "%")
	if cleaned == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent value %q", cell)
	}
	return value, nil
}

// ParseCustomerFile reads a customer-attributes export.
func ParseCustomerFile(path string) ([]domain.CustomerRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s is empty", filepath.Base(path))
	}

	cols := make(map[string]int, len(rows[0]))
	for i, raw := range rows[0] {
		switch strings.TrimSpace(raw) {
		case "ID":
			cols["customer_id"] = i
		case "Name":
			cols["name"] = i
		case "Groups":
			cols["groups"] = i
		case "Loyal":
			cols["is_loyal"] = i
		case "Loyalty Points":
			cols["loyalty_points"] = i
		}
	}

	cell := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := make([]domain.CustomerRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := strings.TrimSpace(cell(row, "customer_id"))
		name := strings.TrimSpace(cell(row, "name"))
		if id == "" && name == "" {
			continue
		}

		groups := strings.TrimSpace(cell(row, "groups"))
		loyal := strings.EqualFold(strings.TrimSpace(cell(row, "is_loyal")), "true") ||
			strings.TrimSpace(cell(row, "is_loyal")) == "1"

		records = append(records, domain.CustomerRecord{
			CustomerID:    id,
			Name:          name,
			Groups:        groups,
			IsLoyal:       loyal,
			LoyaltyPoints: parseQuantity(cell(row, "loyalty_points")),
			Segment:       SegmentFor(groups),
		})
	}
	return records, nil
}
