package main

import (
	"net/http"
	"strings"

	"partsdesk/internal/quote"
	"partsdesk/internal/records"
	"partsdesk/internal/response"
)

// buildParams resolves a DocumentRequest against stored records into
// assembler params.
func buildParams(req DocumentRequest) (quote.Params, error) {
	var p quote.Params

	switch req.Kind {
	case "", string(quote.KindQuote):
		p.Kind = quote.KindQuote
	case string(quote.KindInvoice):
		p.Kind = quote.KindInvoice
	default:
		return p, &records.InvalidInputError{Field: "kind", Reason: "must be quote or invoice"}
	}

	client, err := svc.GetClient(req.ClientPhone)
	if err != nil {
		return p, err
	}
	p.Client = *client
	p.VIN = req.VIN
	p.Company = cfg.Company
	p.ManualDeposit = req.Deposit
	p.DeliveryTime = req.DeliveryTime

	for _, sel := range req.Parts {
		part, err := svc.GetPart(sel.PartID)
		if err != nil {
			return p, err
		}
		sp := quote.SelectedPart{Part: *part, Condition: sel.Condition}
		if sp.Condition == "" {
			sp.Condition = "New"
		}
		if sel.SupplierID != 0 {
			for i := range part.Suppliers {
				if part.Suppliers[i].ID == sel.SupplierID {
					sp.Supplier = &part.Suppliers[i]
					break
				}
			}
			if sp.Supplier == nil {
				return p, records.ErrNotFound
			}
		} else if len(part.Suppliers) > 0 {
			// First offer is the default supplier.
			sp.Supplier = &part.Suppliers[0]
		}
		p.Parts = append(p.Parts, sp)
	}

	if req.BillToName != "" || req.BillToAddr != "" {
		p.BillTo = &quote.Party{Name: req.BillToName, Address: req.BillToAddr}
	}
	if req.ShipToName != "" || req.ShipToAddr != "" {
		p.ShipTo = &quote.Party{Name: req.ShipToName, Address: req.ShipToAddr}
	}
	return p, nil
}

func handleAssembleDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	p, err := buildParams(req)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	doc, err := quote.Assemble(p)
	if err != nil {
		response.Err(w, err.Error(), 400)
		return
	}
	response.JSON(w, doc)
}

func handleTextDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	p, err := buildParams(req)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	doc, err := quote.Assemble(p)
	if err != nil {
		response.Err(w, err.Error(), 400)
		return
	}
	response.JSON(w, map[string]string{"number": doc.Number, "text": doc.RenderText()})
}

// handleDeliveryOptions lists the distinct delivery labels across every
// supplier offer of the named parts, plus IN STOCK.
func handleDeliveryOptions(w http.ResponseWriter, r *http.Request) {
	idsParam := strings.TrimSpace(r.URL.Query().Get("parts"))
	var selections []quote.SelectedPart
	if idsParam != "" {
		for _, s := range strings.Split(idsParam, ",") {
			id, err := parseID(strings.TrimSpace(s))
			if err != nil {
				response.Err(w, "invalid part id list", 400)
				return
			}
			part, err := svc.GetPart(id)
			if err != nil {
				writeCoreErr(w, err)
				return
			}
			for i := range part.Suppliers {
				selections = append(selections, quote.SelectedPart{
					Part:     *part,
					Supplier: &part.Suppliers[i],
				})
			}
		}
	}
	options := quote.DeliveryOptions(selections)
	response.JSON(w, map[string]interface{}{
		"options": options,
		"default": quote.DefaultDelivery(options),
	})
}
