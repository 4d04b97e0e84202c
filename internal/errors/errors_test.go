package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
}

func TestAPIError_Render(t *testing.T) {
	err := ErrDatasetNotLoaded
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/data/sales", nil)

	require.NoError(t, err.Render(w, r))
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.Equal(t, "DATASET_NOT_LOADED", err.ErrorCode)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("month", "must be between 1 and 12")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "month", detail.Field)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "year", Message: "required"},
		{Field: "quarter", Message: "must be between 1 and 4"},
	})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("brand ACME")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "brand ACME not found", err.Message)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusServiceUnavailable, TypeDatasetNotLoaded,
		"Dataset Not Loaded", "load still running", "/api/data/sales").
		WithExtension("retry_after", 5).
		WithExtension("trace_id", "abc-123")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, TypeDatasetNotLoaded, decoded["type"])
	assert.Equal(t, "Dataset Not Loaded", decoded["title"])
	assert.Equal(t, float64(http.StatusServiceUnavailable), decoded["status"])
	assert.Equal(t, float64(5), decoded["retry_after"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
}

func TestProblemDetails_WithExtension_Chaining(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("a", 1).
		WithExtension("b", 2)

	assert.Equal(t, 1, pd.Extensions["a"])
	assert.Equal(t, 2, pd.Extensions["b"])
}
