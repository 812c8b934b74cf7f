package main

import (
	"errors"
	"net/http"
	"strconv"

	"partsdesk/internal/records"
	"partsdesk/internal/response"
)

// writeCoreErr maps record-service failures to HTTP status codes.
func writeCoreErr(w http.ResponseWriter, err error) {
	switch {
	case records.IsInvalidInput(err):
		response.Err(w, err.Error(), 400)
	case errors.Is(err, records.ErrNotFound):
		response.Err(w, err.Error(), 404)
	case records.IsDuplicateKey(err):
		response.Err(w, err.Error(), 409)
	case errors.Is(err, records.ErrBusy):
		response.Err(w, "database busy, try again", 503)
	case errors.Is(err, records.ErrConnection):
		response.Err(w, "database connection not available", 500)
	default:
		response.Err(w, "internal error", 500)
	}
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// pagination reads ?page= and ?limit= with the usual defaults.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return page, limit
}
