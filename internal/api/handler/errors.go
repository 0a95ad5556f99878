package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/zubari_server/internal/pkg/response"
	"github.com/qs3c/zubari_server/internal/service"
)

// handleServiceError writes the envelope matching err's kind. Storage and
// unexpected errors never leak their text to the client.
func handleServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrAuthRequired):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		response.QuotaError(c, "")
	case errors.Is(err, service.ErrConflict):
		response.DuplicateError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
