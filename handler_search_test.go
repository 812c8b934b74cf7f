package main

import (
	"testing"

	"partsdesk/internal/records"
)

func TestSearchOverHTTP(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedClientAndVIN(t, h, cookie)
	doRequest(t, h, "POST", "/api/parts",
		records.PartInput{ClientPhone: "8687775555", Name: "Brake Pad", Quantity: 1}, cookie)

	rec := doRequest(t, h, "GET", "/api/search?q=brake", nil, cookie)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var results records.SearchResults
	decodeData(t, rec, &results)
	if len(results.Parts) != 1 {
		t.Errorf("parts matches = %d, want 1", len(results.Parts))
	}

	rec = doRequest(t, h, "GET", "/api/search?q=868777", nil, cookie)
	decodeData(t, rec, &results)
	if len(results.Clients) != 1 {
		t.Errorf("client matches = %d, want 1", len(results.Clients))
	}

	// Empty query returns empty results, not everything.
	rec = doRequest(t, h, "GET", "/api/search?q=", nil, cookie)
	decodeData(t, rec, &results)
	if len(results.Clients)+len(results.VINs)+len(results.Parts) != 0 {
		t.Errorf("empty query returned results: %+v", results)
	}
}

func TestActivityLogOverHTTP(t *testing.T) {
	h := setupTestApp(t)
	admin := createTestUser(t, "root", "secret123", "admin")
	seedClientAndVIN(t, h, admin)

	rec := doRequest(t, h, "GET", "/api/activity", nil, admin)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []struct {
		Action   string `json:"action"`
		Username string `json:"username"`
	}
	decodeData(t, rec, &entries)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (add_client, add_vin)", len(entries))
	}
	// Newest first.
	if entries[0].Action != "add_vin" || entries[1].Action != "add_client" {
		t.Errorf("order wrong: %+v", entries)
	}

	rec = doRequest(t, h, "GET", "/api/activity?user=nobody", nil, admin)
	decodeData(t, rec, &entries)
	if len(entries) != 0 {
		t.Errorf("filter by unknown user returned %d entries", len(entries))
	}
}
