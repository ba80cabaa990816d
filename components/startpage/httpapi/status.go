package httpapi

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/queries"
)

// StatusFor maps command and query errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commands.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrNotFound), errors.Is(err, queries.ErrNoLiveData):
		return http.StatusNotFound
	case errors.Is(err, ErrCommandUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
