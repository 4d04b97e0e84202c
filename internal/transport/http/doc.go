// Package http implements the HTTP handlers for the sales analytics
// service. Handlers stay thin: they parse and validate the request,
// call the dataset store, and render a JSON envelope or an RFC 7807
// problem response.
//
// All query endpoints accept the same period parameters (period, year,
// month, quarter, start_date, end_date, start_year, start_month,
// end_year, end_month, store); see parsePeriodFilter.
package http
