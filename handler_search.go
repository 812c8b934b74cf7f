package main

import (
	"net/http"

	"partsdesk/internal/response"
)

func handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := svc.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, results)
}
