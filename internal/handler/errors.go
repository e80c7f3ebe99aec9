package handler

import (
	"errors"
	"net/http"

	"kotoba-server/internal/transport/httpdto"
	kotoba_errors "kotoba-server/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps service-level sentinel errors onto HTTP responses.
// Unknown errors surface as a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, kotoba_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid input", "INVALID_INPUT"))
	case errors.Is(err, kotoba_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, kotoba_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
	case errors.Is(err, kotoba_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, kotoba_errors.ErrAlreadyExists), errors.Is(err, kotoba_errors.ErrConflict):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already exists", "CONFLICT"))
	case errors.Is(err, kotoba_errors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limited", "RATE_LIMITED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
