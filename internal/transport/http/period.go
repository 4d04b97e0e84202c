package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "thrive/internal/errors"
	"thrive/pkg/contracts/domain"
)

var validate = validator.New()

const dateParamLayout = "2006-01-02"

// parsePeriodFilter builds a domain.PeriodFilter from query parameters.
// Absent parameters mean all-time. Returns an *apierrors.APIError on
// any malformed or inconsistent input.
//
// Supported parameters:
//
//	period      month|quarter|year|custom|range|all (default all)
//	year, month, quarter
//	start_date, end_date          (custom, "2006-01-02")
//	start_year, start_month,
//	end_year, end_month           (range)
//	store                          exact store name
func parsePeriodFilter(r *http.Request) (domain.PeriodFilter, *apierrors.APIError) {
	q := r.URL.Query()

	filter := domain.PeriodFilter{
		Type:  domain.PeriodType(q.Get("period")),
		Store: q.Get("store"),
	}
	if filter.Type == "" {
		filter.Type = domain.PeriodAll
	}

	var apiErr *apierrors.APIError
	intParam := func(name string) int {
		raw := q.Get(name)
		if raw == "" {
			return 0
		}
		value, err := strconv.Atoi(raw)
		if err != nil && apiErr == nil {
			apiErr = apierrors.ErrValidation(name, "must be an integer")
		}
		return value
	}
	dateParam := func(name string) time.Time {
		raw := q.Get(name)
		if raw == "" {
			return time.Time{}
		}
		value, err := time.Parse(dateParamLayout, raw)
		if err != nil && apiErr == nil {
			apiErr = apierrors.ErrValidation(name, "must be a date in 2006-01-02 format")
		}
		return value
	}

	filter.Year = intParam("year")
	filter.Month = intParam("month")
	filter.Quarter = intParam("quarter")
	filter.StartYear = intParam("start_year")
	filter.StartMonth = intParam("start_month")
	filter.EndYear = intParam("end_year")
	filter.EndMonth = intParam("end_month")
	filter.StartDate = dateParam("start_date")
	filter.EndDate = dateParam("end_date")
	if apiErr != nil {
		return domain.PeriodFilter{}, apiErr
	}

	if err := validate.Struct(filter); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return domain.PeriodFilter{}, apierrors.ErrValidation(fe.Field(), "failed "+fe.Tag()+" validation")
		}
		return domain.PeriodFilter{}, apierrors.InvalidRequestWithError(err)
	}

	if err := checkPeriodParams(filter); err != nil {
		return domain.PeriodFilter{}, err
	}
	return filter, nil
}

// checkPeriodParams enforces the parameters each period type requires,
// which per-field tags cannot express.
func checkPeriodParams(f domain.PeriodFilter) *apierrors.APIError {
	switch f.Type {
	case domain.PeriodMonth:
		if f.Year == 0 || f.Month == 0 {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"month period requires year and month parameters", nil)
		}
	case domain.PeriodQuarter:
		if f.Year == 0 || f.Quarter == 0 {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"quarter period requires year and quarter parameters", nil)
		}
	case domain.PeriodYear:
		if f.Year == 0 {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"year period requires a year parameter", nil)
		}
	case domain.PeriodCustom:
		if f.StartDate.IsZero() && f.EndDate.IsZero() {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"custom period requires start_date or end_date", nil)
		}
		if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"end_date must not be before start_date", nil)
		}
	case domain.PeriodRange:
		if f.StartYear == 0 || f.StartMonth == 0 || f.EndYear == 0 || f.EndMonth == 0 {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"range period requires start_year, start_month, end_year and end_month", nil)
		}
		if f.EndYear*100+f.EndMonth < f.StartYear*100+f.StartMonth {
			return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PERIOD",
				"range end must not be before range start", nil)
		}
	case domain.PeriodAll:
		// nothing to check
	}
	return nil
}
