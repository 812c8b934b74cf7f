package main

import (
	"net/http"
	"strconv"

	"partsdesk/internal/audit"
	"partsdesk/internal/response"
)

func handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	entries, err := auditor.Recent(q.Get("user"), limit)
	if err != nil {
		response.Err(w, "failed to read activity log", 500)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	response.JSON(w, entries)
}
