package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stokku/inventory-service/internal/model"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrStoreNotFound, http.StatusNotFound},
		{model.ErrProductNotFound, http.StatusNotFound},
		{model.ErrTransferNotFound, http.StatusNotFound},
		{model.ErrInventoryNotFound, http.StatusNotFound},
		{model.ErrInsufficientStock, http.StatusConflict},
		{model.ErrInvalidTransition, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
		// Wrapped errors keep their mapping.
		{fmt.Errorf("%w: requested 10, available 3", model.ErrInsufficientStock), http.StatusConflict},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "error: %v", tt.err)
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestErrorEchoesDomainDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, fmt.Errorf("%w: quantity must be positive", model.ErrValidation))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity must be positive")
}
