package handlers

import (
	"errors"
	"net/http"

	"stockroom/internal/repository"
	"stockroom/internal/services"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

// writeServiceError maps the service taxonomy onto HTTP statuses:
// validation 400, ownership 403, unknown id 404, anything else 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var vErr *services.ErrValidation
	switch {
	case errors.As(err, &vErr):
		helpers.Error(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, services.ErrBadCredentials):
		helpers.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		helpers.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrResetTokenInvalid):
		helpers.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		helpers.Error(w, http.StatusNotFound, "not found")
	default:
		log.Error("unhandled service error", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
