package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"

	"thrive/internal/config"
	"thrive/pkg/contracts/domain"
)

// CorrectionCount reports how many rows one (brand, year) policy entry
// rewrote. Diagnostic only; not part of the functional contract.
type CorrectionCount struct {
	Brand string
	Year  int
	Mode  config.CorrectionMode
	Rows  int
}

// ApplyCostCorrections rewrites cost, cost-per-unit, and net profit
// for house brands whose point-of-sale cost data is known bad. For
// "conditional" years only rows whose recorded cost-per-unit is below
// the floor are touched; once corrected they sit above it, so a second
// conditional pass is a no-op. "Unconditional" years are recomputed
// from the fixed price table every time, which makes re-running
// idempotent.
func ApplyCostCorrections(records []domain.SalesRecord, logger *slog.Logger) []CorrectionCount {
	if len(records) == 0 {
		return nil
	}

	brands := make([]string, 0, len(config.InternalBrandCosts))
	for brand := range config.InternalBrandCosts {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	years := make([]int, 0, len(config.CostCorrectionYears))
	for year := range config.CostCorrectionYears {
		years = append(years, year)
	}
	sort.Ints(years)

	var counts []CorrectionCount
	for _, brand := range brands {
		prices := config.InternalBrandCosts[brand]
		for _, year := range years {
			mode := config.CostCorrectionYears[year]

			rows := 0
			for i := range records {
				r := &records[i]
				if int(r.Year) != year || !strings.EqualFold(r.Brand, brand) {
					continue
				}
				if mode == config.CorrectionConditional && r.CostPerItem >= config.CostCorrectionFloor {
					continue
				}

				perUnit := prices.Default
				if config.PreRollCategories[r.Category] {
					perUnit = prices.PreRoll
				}
				r.Cost = float64(r.Quantity) * perUnit
				r.CostPerItem = perUnit
				r.NetProfit = r.ActualRevenue - r.Cost
				rows++
			}

			if rows == 0 {
				continue
			}
			counts = append(counts, CorrectionCount{Brand: brand, Year: year, Mode: mode, Rows: rows})
			logger.Info("cost correction applied",
				slog.String("brand", brand),
				slog.Int("year", year),
				slog.String("mode", string(mode)),
				slog.Int("rows", rows))
		}
	}
	return counts
}
