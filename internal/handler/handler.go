package handler

import (
	"errors"
	"net/http"

	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Anything not carrying
// a sentinel from pkg/apperror is treated as a bad request.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrAlreadyInState):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrSyncFailure):
		status = http.StatusInternalServerError
	}
	c.JSON(status, response.Error(status, err.Error()))
}
