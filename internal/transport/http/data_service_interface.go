package http

import (
	"context"

	"thrive/internal/dataprocessing"
	"thrive/internal/store"
	"thrive/pkg/contracts/domain"
)

// DataService defines the dataset operations the HTTP layer depends on.
// The concrete implementation is *store.Store; the interface exists so
// handlers can be tested against a stub.
type DataService interface {
	Load(ctx context.Context) error
	IsLoaded() bool
	GetStatus() store.Status
	Stats() (*dataprocessing.MergeStats, error)

	GetSales(period domain.PeriodFilter) ([]domain.SalesRecord, error)
	GetRegular(period domain.PeriodFilter) ([]domain.SalesRecord, error)
	GetBrand(brand string, period domain.PeriodFilter) ([]domain.SalesRecord, error)

	Staff() ([]domain.StaffRecord, error)
	Customers() ([]domain.CustomerRecord, error)

	Stores() ([]string, error)
	Brands() ([]string, error)
	Categories() ([]string, error)
	PeriodsAvailable() ([]domain.Period, error)
	DateRange(period domain.PeriodFilter) (string, error)
	RowCount() (int, error)
	RegularCount() (int, error)

	CategoryMargins(period domain.PeriodFilter) (map[string]float64, error)
	BrandCategoryRankings(period domain.PeriodFilter) ([]domain.CategoryRanking, error)
}

var _ DataService = (*store.Store)(nil)
