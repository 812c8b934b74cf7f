package main

import (
	"net/http"
	"strings"
	"testing"

	"partsdesk/internal/quote"
	"partsdesk/internal/records"
)

func seedQuoteFixture(t *testing.T, h http.Handler, cookie *http.Cookie) {
	t.Helper()
	seedClientAndVIN(t, h, cookie)
	doRequest(t, h, "POST", "/api/parts", records.PartInput{
		ClientPhone: "8687775555",
		VIN:         "1234567",
		Name:        "Brake Pad",
		Quantity:    4,
		Suppliers: []records.SupplierInput{
			{Name: "AutoZone", BuyingPrice: 10, SellingPrice: 15.50, DeliveryTime: "3 days"},
			{Name: "NAPA", BuyingPrice: 9, SellingPrice: 14, DeliveryTime: "7 days"},
		},
	}, cookie)
	doRequest(t, h, "POST", "/api/parts", records.PartInput{
		ClientPhone: "8687775555",
		VIN:         "1234567",
		Name:        "Oil Filter",
		Quantity:    1,
		Suppliers: []records.SupplierInput{
			{Name: "AutoZone", BuyingPrice: 3, SellingPrice: 5},
		},
	}, cookie)
}

func TestAssembleQuoteDocument(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "POST", "/api/documents", DocumentRequest{
		Kind:        "quote",
		ClientPhone: "8687775555",
		VIN:         "1234567",
		Parts: []DocumentPartSelection{
			{PartID: 1},
			{PartID: 2},
		},
	}, cookie)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var doc quote.Document
	decodeData(t, rec, &doc)

	// 4 x 15.50 + 1 x 5.00, default supplier is the first offer.
	if doc.Total != 67.0 {
		t.Errorf("total = %.2f, want 67.00", doc.Total)
	}
	if doc.VIN != "1234567" {
		t.Errorf("vin = %q", doc.VIN)
	}
	if doc.BillTo.Name != "John" {
		t.Errorf("bill-to defaults to client name, got %q", doc.BillTo.Name)
	}
	if doc.HasDeposit {
		t.Error("deposit present without manual deposit")
	}
	if !strings.HasSuffix(doc.Number, "-Q") {
		t.Errorf("quote number = %q, want -Q suffix", doc.Number)
	}
	if doc.Company.Name == "" {
		t.Error("company header block missing")
	}
}

func TestAssembleInvoiceWithDepositAndSupplierChoice(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "POST", "/api/documents", DocumentRequest{
		Kind:        "invoice",
		ClientPhone: "8687775555",
		Parts: []DocumentPartSelection{
			{PartID: 1, SupplierID: 2}, // NAPA at 14.00
		},
		Deposit: 20,
	}, cookie)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var doc quote.Document
	decodeData(t, rec, &doc)
	if doc.Total != 56.0 {
		t.Errorf("total = %.2f, want 56.00 (4 x 14.00)", doc.Total)
	}
	if !doc.HasDeposit || doc.Deposit != 20 || doc.Balance != 36.0 {
		t.Errorf("deposit math wrong: %+v", doc)
	}
	if !strings.HasSuffix(doc.Number, "-I") {
		t.Errorf("invoice number = %q, want -I suffix", doc.Number)
	}
}

func TestAssembleDocumentUnknownSupplier(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "POST", "/api/documents", DocumentRequest{
		ClientPhone: "8687775555",
		Parts:       []DocumentPartSelection{{PartID: 1, SupplierID: 99}},
	}, cookie)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAssembleDocumentRejectsEmptySelection(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "POST", "/api/documents",
		DocumentRequest{ClientPhone: "8687775555"}, cookie)
	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTextDocumentFormat(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "POST", "/api/documents/text", DocumentRequest{
		ClientPhone:  "8687775555",
		VIN:          "1234567",
		Parts:        []DocumentPartSelection{{PartID: 1, Condition: "Used"}},
		DeliveryTime: "3 days",
	}, cookie)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Number string `json:"number"`
		Text   string `json:"text"`
	}
	decodeData(t, rec, &resp)
	for _, want := range []string{
		"*SEE PRICES BELOW*",
		"*DELIVERY WITHIN 3 BUSINESS DAYS*",
		"*Vin #* 1234567",
		"1) Brake Pad - 4 - $15.50 (used item)",
		"*TOTAL: $62.00*",
	} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("text quote missing %q:\n%s", want, resp.Text)
		}
	}
}

func TestDeliveryOptionsEndpoint(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "alice", "secret123", "user")
	seedQuoteFixture(t, h, cookie)

	rec := doRequest(t, h, "GET", "/api/documents/delivery-options?parts=1,2", nil, cookie)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Options []string `json:"options"`
		Default string   `json:"default"`
	}
	decodeData(t, rec, &resp)
	if resp.Default != quote.InStock {
		t.Errorf("default = %q, want IN STOCK", resp.Default)
	}
	joined := strings.Join(resp.Options, "|")
	for _, want := range []string{"IN STOCK", "3 days", "7 days"} {
		if !strings.Contains(joined, want) {
			t.Errorf("options missing %q: %v", want, resp.Options)
		}
	}
}
