// README: Handler utilities (JSON helpers, domain error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/auth"
	"swiftcab/internal/modules/fare"
	"swiftcab/internal/modules/ride"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrBadRequest),
		errors.Is(err, account.ErrBadPhone),
		errors.Is(err, account.ErrDuplicateEmail),
		errors.Is(err, account.ErrDuplicatePhone),
		errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, fare.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrInvalidOTP), errors.Is(err, ride.ErrInvalidOTP):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrUnauthorized), errors.Is(err, auth.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrNotFound), errors.Is(err, ride.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrInvalidState), errors.Is(err, ride.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, fare.ErrUpstream):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
