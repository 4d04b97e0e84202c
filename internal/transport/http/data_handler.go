package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "thrive/internal/errors"
	"thrive/internal/exporter"
	"thrive/internal/store"
	"thrive/pkg/contracts/domain"
)

// DataHandler serves the sales dataset query endpoints with RFC 7807
// error responses.
type DataHandler struct {
	service      DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/sales", h.GetSales)
	r.Get("/sales/export", h.ExportSales)
	r.Get("/regular", h.GetRegular)
	r.Get("/margins", h.GetCategoryMargins)
	r.Get("/rankings", h.GetBrandRankings)
	r.Get("/staff", h.GetStaff)
	r.Get("/customers", h.GetCustomers)

	r.Route("/brand/{brand}", func(r chi.Router) {
		r.Use(h.BrandCtx)
		r.Get("/", h.GetBrandSales)
	})

	// Dataset metadata
	r.Get("/stores", h.GetStores)
	r.Get("/brands", h.GetBrands)
	r.Get("/categories", h.GetCategories)
	r.Get("/periods", h.GetPeriods)
	r.Get("/date-range", h.GetDateRange)
	r.Get("/counts", h.GetCounts)

	return r
}

// BrandCtx middleware validates the brand parameter
func (h *DataHandler) BrandCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		brand := chi.URLParam(r, "brand")
		if brand == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("brand", "Brand name is required"))
			return
		}
		if len(brand) > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("brand", "Brand name is too long"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleQueryError maps store errors to API errors before rendering
func (h *DataHandler) handleQueryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotLoaded) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotLoaded)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// recordsResponse renders the standard envelope for record queries
func recordsResponse(w http.ResponseWriter, r *http.Request, records []domain.SalesRecord, period domain.PeriodFilter) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
		"period": period.Label(),
	})
}

// GetSales handles GET /api/data/sales
func (h *DataHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	h.logger.InfoContext(r.Context(), "fetching sales",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("period", period.Label()),
	)

	records, err := h.service.GetSales(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}
	recordsResponse(w, r, records, period)
}

// ExportSales handles GET /api/data/sales/export, streaming the
// filtered rows as a CSV download.
func (h *DataHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	records, err := h.service.GetSales(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exporting sales",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("period", period.Label()),
		slog.Int("rows", len(records)),
	)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := exporter.WriteSales(w, records); err != nil {
		// Headers are already sent; log and drop the connection.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}

// GetRegular handles GET /api/data/regular
func (h *DataHandler) GetRegular(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	h.logger.InfoContext(r.Context(), "fetching regular sales",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("period", period.Label()),
	)

	records, err := h.service.GetRegular(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}
	recordsResponse(w, r, records, period)
}

// GetBrandSales handles GET /api/data/brand/{brand}
func (h *DataHandler) GetBrandSales(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	h.logger.InfoContext(r.Context(), "fetching brand sales",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("brand", brand),
		slog.String("period", period.Label()),
	)

	records, err := h.service.GetBrand(brand, period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
		"brand":  brand,
		"period": period.Label(),
	})
}

// GetCategoryMargins handles GET /api/data/margins
func (h *DataHandler) GetCategoryMargins(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	margins, err := h.service.CategoryMargins(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   margins,
		"count":  len(margins),
		"period": period.Label(),
	})
}

// GetBrandRankings handles GET /api/data/rankings
func (h *DataHandler) GetBrandRankings(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	rankings, err := h.service.BrandCategoryRankings(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rankings,
		"count":  len(rankings),
		"period": period.Label(),
	})
}

// GetStaff handles GET /api/data/staff
func (h *DataHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.Staff()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   staff,
		"count":  len(staff),
	})
}

// GetCustomers handles GET /api/data/customers
func (h *DataHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Customers()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   customers,
		"count":  len(customers),
	})
}

// GetStores handles GET /api/data/stores
func (h *DataHandler) GetStores(w http.ResponseWriter, r *http.Request) {
	h.listResponse(w, r, "stores", h.service.Stores)
}

// GetBrands handles GET /api/data/brands
func (h *DataHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	h.listResponse(w, r, "brands", h.service.Brands)
}

// GetCategories handles GET /api/data/categories
func (h *DataHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.listResponse(w, r, "categories", h.service.Categories)
}

func (h *DataHandler) listResponse(w http.ResponseWriter, r *http.Request, name string, fetch func() ([]string, error)) {
	values, err := fetch()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   values,
		"count":  len(values),
	})
}

// GetPeriods handles GET /api/data/periods
func (h *DataHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.PeriodsAvailable()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   periods,
		"count":  len(periods),
	})
}

// GetDateRange handles GET /api/data/date-range
func (h *DataHandler) GetDateRange(w http.ResponseWriter, r *http.Request) {
	period, apiErr := parsePeriodFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	dateRange, err := h.service.DateRange(period)
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"date_range": dateRange,
		"period":     period.Label(),
	})
}

// GetCounts handles GET /api/data/counts
func (h *DataHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.RowCount()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}
	regular, err := h.service.RegularCount()
	if err != nil {
		h.handleQueryError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"total_rows":   total,
			"regular_rows": regular,
			"excluded":     total - regular,
		},
	})
}

// describeStats is a helper used by the dataset handler for summaries
func describeStats(total, regular int) string {
	return fmt.Sprintf("%d rows (%d regular)", total, regular)
}
