package config

// Application constants and static business tables for the Thrive
// analytics core.
const (
	AppName    = "Thrive Analytics"
	AppVersion = "2.1.0"

	// CompletedAtLayout is the only timestamp format the point-of-sale
	// system emits, e.g. "01/31/2025 03:15:42 PM".
	CompletedAtLayout = "01/02/2006 03:04:05 PM"

	// CostCorrectionFloor is the cost-per-unit below which "conditional"
	// cost correction treats the source value as known-bad.
	CostCorrectionFloor = 1.00

	// CompRevenueCeiling is the actual-revenue threshold at or under
	// which an unlabeled row classifies as a COMP.
	CompRevenueCeiling = 1.00
)

// Filename keywords, matched case-insensitively against the file name.
// Sales discovery excludes anything matching the other two sets.
var (
	SalesKeywords    = []string{"margin", "line_item", "john", "sales performance"}
	StaffKeywords    = []string{"bt sales", "bt_sales", "budtender"}
	CustomerKeywords = []string{"customer"}
)

// ColumnMap renames raw point-of-sale export headers to internal field
// names. The mapping must be preserved exactly: downstream report
// builders depend on the internal names.
var ColumnMap = map[string]string{
	"Receipt ID":                    "receipt_id",
	"Order Type":                    "order_type",
	"Sold By":                       "sold_by",
	"Completed At":                  "completed_at",
	"Customer ID":                   "customer_id",
	"Customer Name":                 "customer_name",
	"Store":                         "store",
	"Product":                       "product",
	"Variant Type":                  "category",
	"Brand":                         "brand",
	"Quantity Sold":                 "quantity",
	"Pre-Discount, Pre-Tax Total":   "pre_discount_revenue",
	"Discounts":                     "discounts",
	"Taxes":                         "taxes",
	"Post-Discount, Pre-Tax Total":  "actual_revenue",
	"Total Collected (Post-Discount, Post-Tax, Post-Fees)": "total_collected",
	"Receipt Total Collected":       "receipt_total",
	"Net Profit":                    "net_profit",
	"Cost":                          "cost",
	"Cost Per Item":                 "cost_per_item",
	"Deals Used":                    "deals_used",
	"Inline/Cart Discounts Used":    "inline_discounts",
}

// CurrencyFields are the internal fields whose source cells carry
// currency formatting ("$1,234.56"). A parse failure in any of these
// fails the whole file.
var CurrencyFields = []string{
	"pre_discount_revenue",
	"discounts",
	"actual_revenue",
	"net_profit",
	"cost",
	"total_collected",
	"receipt_total",
	"cost_per_item",
	"taxes",
}

// CategoryAliases maps free-text category variants to canonical names.
// Lookups fall through to the raw value when no alias exists.
var CategoryAliases = map[string]string{
	"ACCESSORY":     "ACCESSORY",
	"PRE-ROLL":      "PRE ROLL",
	"PREROLL":       "PRE ROLL",
	"PRE-ROLLS":     "PRE ROLL",
	"PRE ROLLS":     "PRE ROLL",
	"PRE-ROLL PACK": "PRE ROLL PACK",
	"PREROLL PACK":  "PRE ROLL PACK",
	"VAPE":          "CARTRIDGE",
	"CART":          "CARTRIDGE",
	"CARTS":         "CARTRIDGE",
	"DISPOSABLE":    "DISPOSABLE VAPE",
	"DISPO":         "DISPOSABLE VAPE",
	"GUMMY":         "EDIBLE",
	"GUMMIES":       "EDIBLE",
	"EDIBLES":       "EDIBLE",
}

// BrandCost holds the per-unit replacement prices for one house brand.
type BrandCost struct {
	Default float64
	PreRoll float64
}

// InternalBrandCosts lists house brands whose point-of-sale cost data
// is unreliable for certain years. Keys are uppercase brand names.
var InternalBrandCosts = map[string]BrandCost{
	"HAUS":         {Default: 10.00, PreRoll: 4.00},
	"H&G":          {Default: 10.00, PreRoll: 4.00},
	"PISTOLA":      {Default: 8.63, PreRoll: 4.00},
	"GREEN & GOLD": {Default: 8.63, PreRoll: 4.00},
}

// CorrectionMode governs whether a year's costs are replaced outright
// or only when the recorded cost-per-unit is below the floor.
type CorrectionMode string

const (
	CorrectionConditional   CorrectionMode = "conditional"
	CorrectionUnconditional CorrectionMode = "unconditional"
)

// CostCorrectionYears is the per-year correction policy. Years absent
// from the table receive no correction: their costs are trusted.
var CostCorrectionYears = map[int]CorrectionMode{
	2024: CorrectionConditional,   // costs were $0 or pennies
	2025: CorrectionUnconditional, // costs were inflated
}

// PreRollCategories selects the pre-roll replacement price during cost
// correction. Canonical category names.
var PreRollCategories = map[string]bool{
	"PRE ROLL":      true,
	"PRE ROLL PACK": true,
}

// CustomerSegments maps group-membership keywords to segment names.
/// Order matters: first match wins.
var CustomerSegments = []struct {
	Keyword string
	Segment string
}{
	{"INDUSTRY", "Industry"},
	{"EMPLOYEE", "Employee"},
	{"VETERAN", "Veteran"},
	{"MILITARY", "Veteran"},
	{"SENIOR", "Senior"},
	{"VIP", "VIP"},
	{"MEDICAL", "Medical"},
	{"MED", "Medical"},
	{"LOCAL", "Locals"},
}
