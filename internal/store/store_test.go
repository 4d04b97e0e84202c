package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrive/internal/files"
	"thrive/internal/infrastructure"
	"thrive/pkg/contracts/domain"
)

func testStore(t *testing.T, inbox string) *Store {
	t.Helper()
	return New(files.NewDiscovery(inbox), slog.Default(), infrastructure.NewMetrics())
}

// publish installs a snapshot directly, bypassing the file pipeline,
// for query-behavior tests.
func publish(s *Store, records ...domain.SalesRecord) {
	var regular []domain.SalesRecord
	for _, r := range records {
		if r.TransactionType == domain.TransactionRegular {
			regular = append(regular, r)
		}
	}
	s.current.Store(&snapshot{records: records, regular: regular, loadedAt: time.Now()})
}

func rec(receipt, store, brand, category string, year, month, day int, revenue, cost float64, tt domain.TransactionType) domain.SalesRecord {
	completed := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	return domain.SalesRecord{
		ReceiptID:       receipt,
		Product:         "PRODUCT " + receipt,
		CompletedAt:     completed,
		Store:           store,
		Brand:           brand,
		Category:        category,
		Quantity:        1,
		ActualRevenue:   revenue,
		Cost:            cost,
		SaleDate:        time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Year:            int16(year),
		Month:           int8(month),
		TransactionType: tt,
		DealType:        domain.DealNone,
	}
}

func TestStore_NotLoaded(t *testing.T) {
	s := testStore(t, t.TempDir())

	_, err := s.GetSales(domain.AllTime())
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.GetRegular(domain.AllTime())
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Brands()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.RowCount()
	assert.ErrorIs(t, err, ErrNotLoaded)

	status := s.GetStatus()
	assert.False(t, status.Loaded)
	assert.False(t, s.IsLoaded())
}

func TestStore_LoadFromFiles(t *testing.T) {
	inbox := t.TempDir()
	writeFixtureCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		fixtureRow("1", "01/10/2025 01:00:00 PM", ""),
		fixtureRow("2", "01/12/2025 01:00:00 PM", "REWARD - 100 POINTS - GUMMY"),
	)
	staffCSV := "Budtender,Sales (pre-tax)\nAlex,$100.00\n"
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "BT Sales 2025-01-01 2025-01-31.csv"), []byte(staffCSV), 0644))
	customerCSV := "ID,Name,Groups,Loyal,Loyalty Points\nC-1,Jamie,VIP,true,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "Customer List.csv"), []byte(customerCSV), 0644))

	s := testStore(t, inbox)
	require.NoError(t, s.Load(context.Background()))
	require.True(t, s.IsLoaded())

	total, err := s.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	regularCount, err := s.RegularCount()
	require.NoError(t, err)
	assert.Equal(t, 1, regularCount, "reward row excluded from regular view")

	staff, err := s.Staff()
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Alex", staff[0].Name)

	customers, err := s.Customers()
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "VIP", customers[0].Segment)

	status := s.GetStatus()
	assert.True(t, status.Loaded)
	assert.Equal(t, 2, status.RowCount)
	assert.Equal(t, 1, status.FilesMerged)
}

func TestStore_LoadEmptyInbox(t *testing.T) {
	s := testStore(t, filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, s.Load(context.Background()))

	assert.True(t, s.IsLoaded(), "an empty dataset is a valid loaded state")
	total, err := s.RowCount()
	require.NoError(t, err)
	assert.Zero(t, total)

	sales, err := s.GetSales(domain.AllTime())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestStore_AbortedLoadKeepsPreviousSnapshot(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s, rec("1", "Uptown", "HAUS", "FLOWER", 2025, 1, 10, 30, 10, domain.TransactionRegular))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Load(ctx)
	require.Error(t, err)

	total, err := s.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 1, total, "previous snapshot stays live after an aborted reload")
}

func TestStore_PeriodFastPathEquivalence(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 1, 10, 5, domain.TransactionRegular),
		rec("2", "Uptown", "A", "FLOWER", 2025, 1, 31, 10, 5, domain.TransactionRegular),
		rec("3", "Uptown", "A", "FLOWER", 2025, 2, 1, 10, 5, domain.TransactionRegular),
		rec("4", "Uptown", "A", "FLOWER", 2024, 1, 15, 10, 5, domain.TransactionRegular),
	)

	fast, err := s.GetRegular(domain.MonthOf(2025, 1))
	require.NoError(t, err)

	slow, err := s.GetRegular(domain.PeriodFilter{
		Type:      domain.PeriodCustom,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, slow, fast, "integer fast path matches resolved date range")
	require.Len(t, fast, 2)
}

func TestStore_QuarterAndYearFilters(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 10, 10, 5, domain.TransactionRegular),
		rec("2", "Uptown", "A", "FLOWER", 2025, 3, 31, 10, 5, domain.TransactionRegular),
		rec("3", "Uptown", "A", "FLOWER", 2025, 4, 1, 10, 5, domain.TransactionRegular),
		rec("4", "Uptown", "A", "FLOWER", 2024, 2, 10, 10, 5, domain.TransactionRegular),
	)

	q1, err := s.GetRegular(domain.PeriodFilter{Type: domain.PeriodQuarter, Year: 2025, Quarter: 1})
	require.NoError(t, err)
	assert.Len(t, q1, 2)

	year, err := s.GetRegular(domain.PeriodFilter{Type: domain.PeriodYear, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, year, 3)
}

func TestStore_StoreFilterComposesWithPeriod(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 10, 10, 5, domain.TransactionRegular),
		rec("2", "Downtown", "A", "FLOWER", 2025, 1, 11, 10, 5, domain.TransactionRegular),
		rec("3", "Uptown", "A", "FLOWER", 2025, 2, 10, 10, 5, domain.TransactionRegular),
	)

	filter := domain.MonthOf(2025, 1)
	filter.Store = "Uptown"
	got, err := s.GetRegular(filter)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ReceiptID)
}

func TestStore_BrandsOrderedByRegularRevenue(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 1, 300, 100, domain.TransactionRegular),
		rec("2", "Uptown", "B", "FLOWER", 2025, 1, 2, 500, 100, domain.TransactionRegular),
		rec("3", "Uptown", "C", "FLOWER", 2025, 1, 3, 100, 50, domain.TransactionRegular),
		// Non-regular revenue must not count toward the ordering
		rec("4", "Uptown", "C", "FLOWER", 2025, 1, 4, 900, 0, domain.TransactionReward),
	)

	brands, err := s.Brands()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, brands)
}

func TestStore_StoresAndCategories(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 1, 10, 5, domain.TransactionRegular),
		rec("2", "Downtown", "A", "EDIBLE", 2025, 1, 2, 10, 5, domain.TransactionRegular),
		rec("3", "Uptown", "A", "FLOWER", 2025, 1, 3, 10, 5, domain.TransactionComp),
	)

	stores, err := s.Stores()
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown", "Uptown"}, stores)

	categories, err := s.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"EDIBLE", "FLOWER"}, categories)
}

func TestStore_PeriodsAvailable(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 2, 1, 10, 5, domain.TransactionRegular),
		rec("2", "Uptown", "A", "FLOWER", 2024, 12, 2, 10, 5, domain.TransactionRegular),
		rec("3", "Uptown", "A", "FLOWER", 2025, 2, 9, 10, 5, domain.TransactionRegular),
	)

	periods, err := s.PeriodsAvailable()
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, domain.Period{Year: 2024, Month: 12, Label: "December 2024"}, periods[0])
	assert.Equal(t, domain.Period{Year: 2025, Month: 2, Label: "February 2025"}, periods[1])
}

func TestStore_DateRange(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 5, 10, 5, domain.TransactionRegular),
		rec("2", "Uptown", "A", "FLOWER", 2025, 3, 20, 10, 5, domain.TransactionRegular),
	)

	got, err := s.DateRange(domain.AllTime())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05 to 2025-03-20", got)

	empty, err := s.DateRange(domain.MonthOf(2023, 6))
	require.NoError(t, err)
	assert.Equal(t, "N/A", empty)
}

func TestStore_CategoryMargins(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 1, 100, 40, domain.TransactionRegular),
		rec("2", "Uptown", "B", "FLOWER", 2025, 1, 2, 100, 50, domain.TransactionRegular),
		rec("3", "Uptown", "A", "EDIBLE", 2025, 1, 3, 60, 45, domain.TransactionRegular),
		rec("4", "Uptown", "A", "ACCESSORY", 2025, 1, 4, 0, 10, domain.TransactionRegular),
	)

	margins, err := s.CategoryMargins(domain.AllTime())
	require.NoError(t, err)

	assert.Equal(t, 55.0, margins["FLOWER"], "(200-90)/200")
	assert.Equal(t, 25.0, margins["EDIBLE"])
	_, ok := margins["ACCESSORY"]
	assert.False(t, ok, "zero-revenue categories omitted")
}

func TestStore_BrandCategoryRankings(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "A", "FLOWER", 2025, 1, 1, 500, 100, domain.TransactionRegular),
		rec("2", "Uptown", "B", "FLOWER", 2025, 1, 2, 300, 100, domain.TransactionRegular),
		rec("3", "Uptown", "C", "FLOWER", 2025, 1, 3, 300, 100, domain.TransactionRegular),
		rec("4", "Uptown", "D", "FLOWER", 2025, 1, 4, 100, 50, domain.TransactionRegular),
		rec("5", "Uptown", "A", "EDIBLE", 2025, 1, 5, 80, 20, domain.TransactionRegular),
	)

	rankings, err := s.BrandCategoryRankings(domain.AllTime())
	require.NoError(t, err)

	byBrand := map[string]domain.CategoryRanking{}
	for _, r := range rankings {
		if r.Category == "FLOWER" {
			byBrand[r.Brand] = r
		}
	}
	require.Len(t, byBrand, 4)
	assert.Equal(t, 1, byBrand["A"].Rank)
	assert.Equal(t, 2, byBrand["B"].Rank)
	assert.Equal(t, 2, byBrand["C"].Rank, "equal revenue shares a rank")
	assert.Equal(t, 3, byBrand["D"].Rank, "dense rank does not skip")
	assert.Equal(t, 4, byBrand["A"].TotalBrands)
}

func TestStore_GetBrand(t *testing.T) {
	s := testStore(t, t.TempDir())
	publish(s,
		rec("1", "Uptown", "Haus", "FLOWER", 2025, 1, 1, 30, 10, domain.TransactionRegular),
		rec("2", "Uptown", "Acme", "FLOWER", 2025, 1, 2, 30, 10, domain.TransactionRegular),
	)

	got, err := s.GetBrand("HAUS", domain.AllTime())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ReceiptID)
}

func TestStore_ReloadReplacesSnapshot(t *testing.T) {
	inbox := t.TempDir()
	writeFixtureCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		fixtureRow("1", "01/10/2025 01:00:00 PM", ""),
	)
	s := testStore(t, inbox)
	require.NoError(t, s.Load(context.Background()))

	total, err := s.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	writeFixtureCSV(t, inbox, "Margin Report 2025-02-01 2025-02-28.csv",
		fixtureRow("2", "02/10/2025 01:00:00 PM", ""),
		fixtureRow("3", "02/11/2025 01:00:00 PM", ""),
	)
	require.NoError(t, s.Load(context.Background()))

	total, err = s.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, total, "reload is a full rebuild")
}

// Minimal sales CSV fixtures for pipeline-backed store tests.

var fixtureHeader = []string{
	"Receipt ID", "Completed At", "Store", "Product", "Variant Type", "Brand",
	"Quantity Sold", "Discounts", "Post-Discount, Pre-Tax Total", "Net Profit",
	"Cost", "Cost Per Item", "Deals Used",
}

func fixtureRow(receipt, completedAt, deals string) []string {
	return []string{
		receipt, completedAt, "Thrive Uptown - RD1", "PRODUCT " + receipt, "FLOWER",
		"Acme", "1", "$0.00", "$30.00", "$20.00", "$10.00", "$10.00", deals,
	}
}

func writeFixtureCSV(t *testing.T, dir, name string, rows ...[]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(fixtureHeader))
	require.NoError(t, w.WriteAll(rows))
	w.Flush()
	require.NoError(t, w.Error())
}

func TestStore_ConcurrentReadsDuringReload(t *testing.T) {
	inbox := t.TempDir()
	writeFixtureCSV(t, inbox, "Margin Report 2025-01-01 2025-01-31.csv",
		fixtureRow("1", "01/10/2025 01:00:00 PM", ""),
	)
	s := testStore(t, inbox)
	require.NoError(t, s.Load(context.Background()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = s.Load(context.Background())
		}
	}()

	// Readers must always see a complete snapshot: either count is
	// acceptable, a partial one is not.
	for i := 0; i < 200; i++ {
		sales, err := s.GetSales(domain.AllTime())
		require.NoError(t, err)
		assert.Len(t, sales, 1)
	}
	<-done
}

func ExampleStore_GetRegular() {
	s := New(files.NewDiscovery(os.TempDir()), slog.Default(), nil)
	publish(s,
		rec("r-1", "Uptown", "Haus", "FLOWER", 2025, 1, 10, 30, 10, domain.TransactionRegular),
	)
	regular, _ := s.GetRegular(domain.MonthOf(2025, 1))
	fmt.Println(len(regular))
	// Output: 1
}
