package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/phonefeed-api/internal/domain"
	"github.com/rs/zerolog/hlog"
)

// routeErrors holds the messages one route reports for each domain failure.
type routeErrors struct {
	validation     string
	notFound       string
	notFoundStatus int
	forbidden      string
	internal       string
}

// httpError maps a service error onto the route's status and message. Anything
// that is not a domain sentinel is logged and reported as an opaque 500.
func httpError(w http.ResponseWriter, r *http.Request, err error, m routeErrors) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, m.validation)
	case errors.Is(err, domain.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, domain.ErrNotFound) && m.notFound != "":
		writeError(w, m.notFoundStatus, m.notFound)
	case errors.Is(err, domain.ErrForbidden) && m.forbidden != "":
		writeError(w, http.StatusForbidden, m.forbidden)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg(m.internal)
		writeError(w, http.StatusInternalServerError, m.internal)
	}
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
