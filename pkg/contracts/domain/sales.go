package domain

import (
	"time"
)

// TransactionType labels how a line item was sold.
type TransactionType string

const (
	TransactionRegular TransactionType = "REGULAR"
	TransactionReward  TransactionType = "REWARD"
	TransactionMarkout TransactionType = "MARKOUT"
	TransactionTester  TransactionType = "TESTER"
	TransactionComp    TransactionType = "COMP"
)

// DealType labels the discount mechanism applied to a line item.
type DealType string

const (
	DealNone             DealType = "NO DEAL"
	DealBundle           DealType = "BUNDLE"
	DealPercentOff       DealType = "PERCENT OFF"
	DealCustomerDiscount DealType = "CUSTOMER DISCOUNT"
	DealPriceDeal        DealType = "PRICE DEAL"
	DealOther            DealType = "OTHER"
)

// SalesRecord represents a single line item of one sale after
// normalization. String fields are already cleaned: Store has the
// region-code suffix stripped, Product/Category/DealsUsed are
// uppercased, Brand is trimmed.
type SalesRecord struct {
	ReceiptID    string    `json:"receipt_id" validate:"required"`
	OrderType    string    `json:"order_type,omitempty"`
	SoldBy       string    `json:"sold_by,omitempty"`
	CompletedAt  time.Time `json:"completed_at" validate:"required"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	Store        string    `json:"store"`
	Product      string    `json:"product" validate:"required"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	Quantity     int       `json:"quantity" validate:"min=0"`

	PreDiscountRevenue float64 `json:"pre_discount_revenue"`
	Discounts          float64 `json:"discounts"`
	Taxes              float64 `json:"taxes"`
	ActualRevenue      float64 `json:"actual_revenue"`
	TotalCollected     float64 `json:"total_collected"`
	ReceiptTotal       float64 `json:"receipt_total"`
	NetProfit          float64 `json:"net_profit"`
	Cost               float64 `json:"cost"`
	CostPerItem        float64 `json:"cost_per_item"`

	// DealsUsed and InlineDiscounts are uppercased deal descriptions,
	// empty when the source column was absent or blank.
	DealsUsed       string `json:"deals_used,omitempty"`
	InlineDiscounts string `json:"inline_discounts,omitempty"`
	HasDiscount     bool   `json:"has_discount"`

	// SaleDate is CompletedAt truncated to midnight UTC. Year and Month
	// are kept as small integers for the period fast path.
	SaleDate time.Time `json:"sale_date"`
	Year     int16     `json:"year"`
	Month    int8      `json:"month"`

	// Assigned by the classification engine after the merge pass.
	TransactionType TransactionType `json:"transaction_type,omitempty"`
	DealType        DealType        `json:"deal_type,omitempty"`
}

// SalesKey uniquely identifies a logical sale line across overlapping
// exports: the same line item can appear in more than one rolling
// snapshot file.
type SalesKey struct {
	ReceiptID   string
	Product     string
	CompletedAt int64 // unix seconds
}

// Key returns the deduplication key for the record.
func (r *SalesRecord) Key() SalesKey {
	return SalesKey{
		ReceiptID:   r.ReceiptID,
		Product:     r.Product,
		CompletedAt: r.CompletedAt.Unix(),
	}
}

// YearMonth returns a single sortable grouping key (YYYYMM).
func (r *SalesRecord) YearMonth() int {
	return int(r.Year)*100 + int(r.Month)
}

// StaffRecord represents one row of a staff-performance export.
type StaffRecord struct {
	Name            string  `json:"name"`
	Store           string  `json:"store,omitempty"`
	Transactions    int     `json:"transactions"`
	AvgCartValue    float64 `json:"avg_cart_value"`
	Sales           float64 `json:"sales"`
	UpsellPrice     float64 `json:"upsell_price"`
	UpsellProfit    float64 `json:"upsell_profit"`
	PctDiscounted   float64 `json:"pct_discounted"`
}

// CustomerRecord represents one row of a customer-attributes export.
type CustomerRecord struct {
	CustomerID    string `json:"customer_id"`
	Name          string `json:"name"`
	Groups        string `json:"groups,omitempty"`
	IsLoyal       bool   `json:"is_loyal"`
	LoyaltyPoints int    `json:"loyalty_points"`
	Segment       string `json:"segment"`
}

// Period describes one (year, month) pair present in the dataset,
// with a human-readable label such as "January 2025".
type Period struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// CategoryRanking is one brand's revenue standing within a category.
type CategoryRanking struct {
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Revenue     float64 `json:"revenue"`
	Rank        int     `json:"rank"`
	TotalBrands int     `json:"total_brands"`
}
