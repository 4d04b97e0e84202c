package dataprocessing

import (
	"strings"

	"thrive/internal/config"
	"thrive/pkg/contracts/domain"
)

// The classification engine runs over the entire merged dataset in
// rule-major order: each rule makes one pass and labels only rows no
// earlier rule has claimed. This keeps the per-rule work branch-free
// and cache-friendly at multi-million-row scale, and makes the
// priority order explicit in the rule tables below.

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

var (
	rewardNeedles  = []string{"REWARD", "POINT", "REDEMPTION"}
	markoutNeedles = []string{"MARKOUT", "MARK OUT", "MARK-OUT"}
	bundleNeedles  = []string{
		"B1G", "B2G", "BOGO",
		"2 FOR", "3 FOR", "4 FOR", "5 FOR",
		"2/$", "3/$", "4/$", "5/$",
	}
	customerNeedles  = []string{"SENIOR", "VETERAN", "MILITARY", "MEDICAL", "INDUSTRY", "VIP", "EMPLOYEE"}
	priceDealNeedles = []string{"FOR $", "FOR$"}
)

// transactionRules assign the transaction type. First match wins;
// REGULAR is the fallback for anything left unlabeled.
var transactionRules = []struct {
	label domain.TransactionType
	match func(r *domain.SalesRecord) bool
}{
	{domain.TransactionReward, func(r *domain.SalesRecord) bool {
		return containsAny(r.DealsUsed, rewardNeedles)
	}},
	{domain.TransactionMarkout, func(r *domain.SalesRecord) bool {
		return containsAny(r.DealsUsed, markoutNeedles)
	}},
	{domain.TransactionTester, func(r *domain.SalesRecord) bool {
		return strings.Contains(r.Product, "TESTER") || strings.Contains(r.DealsUsed, "TESTER")
	}},
	{domain.TransactionComp, func(r *domain.SalesRecord) bool {
		return r.ActualRevenue <= config.CompRevenueCeiling && !strings.Contains(r.Product, "EXIT BAG")
	}},
}

// ClassifyTransactions assigns a transaction type to every record.
func ClassifyTransactions(records []domain.SalesRecord) {
	for _, rule := range transactionRules {
		for i := range records {
			if records[i].TransactionType == "" && rule.match(&records[i]) {
				records[i].TransactionType = rule.label
			}
		}
	}
	for i := range records {
		if records[i].TransactionType == "" {
			records[i].TransactionType = domain.TransactionRegular
		}
	}
}

// dealRules assign the deal type from the concatenation of the deal
// text and any inline-discount text. OTHER is the fallback.
var dealRules = []struct {
	label domain.DealType
	match func(r *domain.SalesRecord, combined string) bool
}{
	{domain.DealNone, func(r *domain.SalesRecord, _ string) bool {
		return r.DealsUsed == "" && r.InlineDiscounts == ""
	}},
	{domain.DealBundle, func(_ *domain.SalesRecord, combined string) bool {
		return containsAny(combined, bundleNeedles)
	}},
	{domain.DealPercentOff, func(_ *domain.SalesRecord, combined string) bool {
		return strings.Contains(combined, "%") || strings.Contains(combined, "PERCENT")
	}},
	{domain.DealCustomerDiscount, func(_ *domain.SalesRecord, combined string) bool {
		return containsAny(combined, customerNeedles)
	}},
	{domain.DealPriceDeal, func(_ *domain.SalesRecord, combined string) bool {
		return containsAny(combined, priceDealNeedles)
	}},
}

// ClassifyDeals assigns a deal type to every record.
func ClassifyDeals(records []domain.SalesRecord) {
	for _, rule := range dealRules {
		for i := range records {
			if records[i].DealType != "" {
				continue
			}
			combined := records[i].DealsUsed + " " + records[i].InlineDiscounts
			if rule.match(&records[i], combined) {
				records[i].DealType = rule.label
			}
		}
	}
	for i := range records {
		if records[i].DealType == "" {
			records[i].DealType = domain.DealOther
		}
	}
}
