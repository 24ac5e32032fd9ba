package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/easeops/elibrary/internal/errors"
)

// idParam parses an int64 URL parameter, mapping parse failures to 400.
func idParam(r *http.Request, name string) (int64, error) {
	val, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &errors.ErrorWithStatusCode{Message: "invalid " + name + ": must be an integer", StatusCode: http.StatusBadRequest}
	}
	return val, nil
}

// queryInt parses an optional integer query parameter, falling back to
// def when absent or unparseable.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
