package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stokku/inventory-service/internal/model"
)

// StatusOf maps domain errors onto HTTP statuses.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrStoreNotFound),
		errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrTransferNotFound),
		errors.Is(err, model.ErrInventoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientStock),
		errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes the standard error body for err. Internal errors are not
// echoed to the client.
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
