package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"thrive/internal/dataprocessing"
	"thrive/internal/files"
	"thrive/internal/infrastructure"
	"thrive/pkg/contracts/domain"
)

// ErrNotLoaded distinguishes "no load has succeeded yet" from a query
// that legitimately matched nothing.
var ErrNotLoaded = errors.New("dataset not loaded")

// snapshot is one complete, immutable load result. Readers get it via
// a single atomic pointer load and never see a partially-built state.
type snapshot struct {
	records   []domain.SalesRecord
	regular   []domain.SalesRecord // precomputed REGULAR-only view
	staff     []domain.StaffRecord
	customers []domain.CustomerRecord
	stats     *dataprocessing.MergeStats
	loadedAt  time.Time
}

// Status describes the store for health and status endpoints.
type Status struct {
	Loaded       bool       `json:"loaded"`
	Loading      bool       `json:"loading"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
	RowCount     int        `json:"row_count"`
	RegularCount int        `json:"regular_count"`
	FilesMerged  int        `json:"files_merged"`
	FilesSkipped int        `json:"files_skipped"`
}

// Store holds the finished sales dataset and serves period-filtered
// queries against it. A reload builds a complete new snapshot off to
// the side and publishes it with one pointer swap, so the hot read
// path needs no locking.
type Store struct {
	discovery *files.Discovery
	merger    *dataprocessing.Merger
	logger    *slog.Logger
	metrics   *infrastructure.Metrics

	current atomic.Pointer[snapshot]
	loading atomic.Bool
	reloads singleflight.Group
}

// New creates a store over the given inbox discovery. Nothing is
// loaded until Load is called.
func New(discovery *files.Discovery, logger *slog.Logger, metrics *infrastructure.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		discovery: discovery,
		merger:    dataprocessing.NewMerger(discovery, logger, metrics),
		logger:    infrastructure.WithComponent(logger, "store"),
		metrics:   metrics,
	}
}

// Load fully rebuilds the dataset from the source files and publishes
// the result. Concurrent calls are coalesced into a single rebuild.
// If the context is cancelled before the build completes, nothing is
// published and any previous snapshot stays live.
func (s *Store) Load(ctx context.Context) error {
	_, err, _ := s.reloads.Do("load", func() (interface{}, error) {
		return nil, s.load(ctx)
	})
	return err
}

func (s *Store) load(ctx context.Context) error {
	start := time.Now()
	s.loading.Store(true)
	defer s.loading.Store(false)

	records, stats := s.merger.LoadAll(ctx)

	regular := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		if r.TransactionType == domain.TransactionRegular {
			regular = append(regular, r)
		}
	}

	next := &snapshot{
		records:  records,
		regular:  regular,
		stats:    stats,
		loadedAt: time.Now().UTC(),
	}

	// Staff performance and customer attributes come from the single
	// most recent file of each kind; a failure here is not fatal.
	if latest, ok := files.Latest(s.discovery.StaffExports()); ok {
		staff, err := dataprocessing.ParseStaffFile(latest.Path)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load staff performance file",
				slog.String("file", latest.Name),
				slog.String("error", err.Error()))
		} else {
			next.staff = staff
			s.logger.InfoContext(ctx, "loaded staff performance",
				slog.String("file", latest.Name),
				slog.Int("rows", len(staff)))
		}
	}
	if latest, ok := files.Latest(s.discovery.CustomerExports()); ok {
		customers, err := dataprocessing.ParseCustomerFile(latest.Path)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load customer attributes file",
				slog.String("file", latest.Name),
				slog.String("error", err.Error()))
		} else {
			next.customers = customers
			s.logger.InfoContext(ctx, "loaded customer attributes",
				slog.String("file", latest.Name),
				slog.Int("rows", len(customers)))
		}
	}

	if err := ctx.Err(); err != nil {
		if s.metrics != nil {
			s.metrics.LoadsTotal.WithLabelValues("aborted").Inc()
		}
		s.logger.WarnContext(ctx, "load aborted, keeping previous snapshot",
			slog.String("error", err.Error()))
		return fmt.Errorf("load aborted: %w", err)
	}

	s.current.Store(next)

	if s.metrics != nil {
		s.metrics.LoadsTotal.WithLabelValues("ok").Inc()
		s.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	}
	s.logger.InfoContext(ctx, "snapshot published",
		slog.Int("rows", len(records)),
		slog.Int("regular_rows", len(regular)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// IsLoaded reports whether a snapshot has been published.
func (s *Store) IsLoaded() bool {
	return s.current.Load() != nil
}

// GetStatus returns load state for status endpoints. It never returns
// ErrNotLoaded: asking "are we loaded" is always valid.
func (s *Store) GetStatus() Status {
	status := Status{Loading: s.loading.Load()}
	snap := s.current.Load()
	if snap == nil {
		return status
	}
	status.Loaded = true
	loadedAt := snap.loadedAt
	status.LoadedAt = &loadedAt
	status.RowCount = len(snap.records)
	status.RegularCount = len(snap.regular)
	if snap.stats != nil {
		status.FilesMerged = snap.stats.FilesProcessed
		status.FilesSkipped = snap.stats.FilesSkipped
	}
	return status
}

// Stats returns the merge statistics of the current snapshot.
func (s *Store) Stats() (*dataprocessing.MergeStats, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.stats, nil
}

func (s *Store) countQuery(operation string) {
	if s.metrics != nil {
		s.metrics.QueriesTotal.WithLabelValues(operation).Inc()
	}
}

// matchPeriod applies a period filter to one record. Whole-month,
// whole-quarter, whole-year, and all-time filters use the precomputed
// integer year/month fields; custom and multi-month ranges fall back
// to inclusive sale-date comparison.
func matchPeriod(r *domain.SalesRecord, f domain.PeriodFilter) bool {
	switch f.Type {
	case domain.PeriodAll, "":
		// no date constraint
	case domain.PeriodMonth:
		if f.Year != 0 && f.Month != 0 {
			if int(r.Year) != f.Year || int(r.Month) != f.Month {
				return false
			}
		}
	case domain.PeriodQuarter:
		if f.Year != 0 && f.Quarter != 0 {
			if int(r.Year) != f.Year {
				return false
			}
			months := f.QuarterMonths()
			if m := int(r.Month); m != months[0] && m != months[1] && m != months[2] {
				return false
			}
		}
	case domain.PeriodYear:
		if f.Year != 0 && int(r.Year) != f.Year {
			return false
		}
	default:
		start, end := f.Resolve()
		if !start.IsZero() && r.SaleDate.Before(start) {
			return false
		}
		if !end.IsZero() && r.SaleDate.After(end) {
			return false
		}
	}

	if f.Store != "" && r.Store != f.Store {
		return false
	}
	return true
}

func filterRecords(records []domain.SalesRecord, f domain.PeriodFilter) []domain.SalesRecord {
	if (f.Type == domain.PeriodAll || f.Type == "") && f.Store == "" {
		return records
	}
	var out []domain.SalesRecord
	for i := range records {
		if matchPeriod(&records[i], f) {
			out = append(out, records[i])
		}
	}
	return out
}

// GetSales returns all sales (including non-regular transactions) for
// a period. The returned slice is shared with the snapshot and must be
// treated as read-only.
func (s *Store) GetSales(period domain.PeriodFilter) ([]domain.SalesRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	s.countQuery("sales")
	return filterRecords(snap.records, period), nil
}

// GetRegular returns regular sales only, excluding rewards, markouts,
// testers, and comps. The REGULAR view is precomputed once per load.
func (s *Store) GetRegular(period domain.PeriodFilter) ([]domain.SalesRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	s.countQuery("regular")
	return filterRecords(snap.regular, period), nil
}

// GetBrand returns regular sales for one brand, case-insensitive.
func (s *Store) GetBrand(brand string, period domain.PeriodFilter) ([]domain.SalesRecord, error) {
	regular, err := s.GetRegular(period)
	if err != nil {
		return nil, err
	}
	var out []domain.SalesRecord
	for _, r := range regular {
		if strings.EqualFold(r.Brand, brand) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Staff returns the most recent staff-performance rows.
func (s *Store) Staff() ([]domain.StaffRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.staff, nil
}

// Customers returns the most recent customer-attribute rows.
func (s *Store) Customers() ([]domain.CustomerRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.customers, nil
}

// Stores returns the distinct cleaned store names, alphabetical.
func (s *Store) Stores() ([]string, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	seen := make(map[string]struct{})
	var stores []string
	for i := range snap.records {
		name := snap.records[i].Store
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			stores = append(stores, name)
		}
	}
	sort.Strings(stores)
	return stores, nil
}

// Brands returns the distinct brand names ordered by descending total
// REGULAR revenue. Downstream reports rely on this ordering; ties
// break by name for determinism.
func (s *Store) Brands() ([]string, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	revenue := make(map[string]float64)
	for i := range snap.regular {
		revenue[snap.regular[i].Brand] += snap.regular[i].ActualRevenue
	}
	brands := make([]string, 0, len(revenue))
	for brand := range revenue {
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		if revenue[brands[i]] != revenue[brands[j]] {
			return revenue[brands[i]] > revenue[brands[j]]
		}
		return brands[i] < brands[j]
	})
	return brands, nil
}

// Categories returns the distinct canonical category names,
// alphabetical.
func (s *Store) Categories() ([]string, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	seen := make(map[string]struct{})
	var categories []string
	for i := range snap.records {
		name := snap.records[i].Category
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// PeriodsAvailable returns the (year, month) pairs present in the
// dataset with human-readable labels, chronological.
func (s *Store) PeriodsAvailable() ([]domain.Period, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	seen := make(map[int]struct{})
	var periods []domain.Period
	for i := range snap.records {
		r := &snap.records[i]
		ym := r.YearMonth()
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		periods = append(periods, domain.Period{
			Year:  int(r.Year),
			Month: int(r.Month),
			Label: fmt.Sprintf("%s %d", time.Month(r.Month), r.Year),
		})
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})
	return periods, nil
}

// DateRange returns the min/max sale date of the regular view for a
// period, formatted as "2025-01-02 to 2025-03-31", or "N/A" when the
// period holds no data.
func (s *Store) DateRange(period domain.PeriodFilter) (string, error) {
	regular, err := s.GetRegular(period)
	if err != nil {
		return "", err
	}
	if len(regular) == 0 {
		return "N/A", nil
	}
	min, max := regular[0].SaleDate, regular[0].SaleDate
	for _, r := range regular[1:] {
		if r.SaleDate.Before(min) {
			min = r.SaleDate
		}
		if r.SaleDate.After(max) {
			max = r.SaleDate
		}
	}
	return min.Format("2006-01-02") + " to " + max.Format("2006-01-02"), nil
}

// RowCount returns the total number of unique rows.
func (s *Store) RowCount() (int, error) {
	snap := s.current.Load()
	if snap == nil {
		return 0, ErrNotLoaded
	}
	return len(snap.records), nil
}

// RegularCount returns the number of REGULAR rows.
func (s *Store) RegularCount() (int, error) {
	snap := s.current.Load()
	if snap == nil {
		return 0, ErrNotLoaded
	}
	return len(snap.regular), nil
}

// CategoryMargins returns the average margin percentage per category
// over the regular view for a period, rounded to one decimal.
// Categories with zero revenue are omitted. Recomputed per call.
func (s *Store) CategoryMargins(period domain.PeriodFilter) (map[string]float64, error) {
	regular, err := s.GetRegular(period)
	if err != nil {
		return nil, err
	}
	type totals struct{ revenue, cost float64 }
	byCategory := make(map[string]*totals)
	for i := range regular {
		r := &regular[i]
		t, ok := byCategory[r.Category]
		if !ok {
			t = &totals{}
			byCategory[r.Category] = t
		}
		t.revenue += r.ActualRevenue
		t.cost += r.Cost
	}

	s.countQuery("category_margins")
	margins := make(map[string]float64, len(byCategory))
	for category, t := range byCategory {
		if t.revenue == 0 {
			continue
		}
		margin := (t.revenue - t.cost) / t.revenue * 100
		margins[category] = math.Round(margin*10) / 10
	}
	return margins, nil
}

// BrandCategoryRankings returns every brand's revenue standing within
// each category for a period: dense rank by total revenue plus the
// number of brands active in the category. Recomputed per call.
func (s *Store) BrandCategoryRankings(period domain.PeriodFilter) ([]domain.CategoryRanking, error) {
	regular, err := s.GetRegular(period)
	if err != nil {
		return nil, err
	}
	type key struct{ category, brand string }
	revenue := make(map[key]float64)
	for i := range regular {
		r := &regular[i]
		revenue[key{r.Category, r.Brand}] += r.ActualRevenue
	}

	byCategory := make(map[string][]domain.CategoryRanking)
	for k, rev := range revenue {
		byCategory[k.category] = append(byCategory[k.category], domain.CategoryRanking{
			Category: k.category,
			Brand:    k.brand,
			Revenue:  rev,
		})
	}

	s.countQuery("brand_rankings")
	var out []domain.CategoryRanking
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		rankings := byCategory[category]
		sort.Slice(rankings, func(i, j int) bool {
			if rankings[i].Revenue != rankings[j].Revenue {
				return rankings[i].Revenue > rankings[j].Revenue
			}
			return rankings[i].Brand < rankings[j].Brand
		})
		rank := 0
		var prev float64
		for i := range rankings {
			if i == 0 || rankings[i].Revenue != prev {
				rank++
			}
			prev = rankings[i].Revenue
			rankings[i].Rank = rank
			rankings[i].TotalBrands = len(rankings)
		}
		out = append(out, rankings...)
	}
	return out, nil
}
