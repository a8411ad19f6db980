package handlers

import (
	"errors"
	"net/http"

	"careline/pkg/errs"
	"careline/pkg/logger"
	"careline/pkg/utils"
)

// writeDomainError maps a service error to its HTTP response. notFoundMsg
// is the body used for the collapsed missing/forbidden case; invalid
// arguments echo their own message, anything else is a masked 500.
func writeDomainError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, notFoundMsg)
	default:
		logger.Error("request_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "server error")
	}
}
