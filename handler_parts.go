package main

import (
	"net/http"

	"partsdesk/internal/records"
	"partsdesk/internal/response"
)

func handleListParts(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	// The service pages from zero; the API pages from one.
	parts, total, err := svc.ListParts(page-1, limit)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if parts == nil {
		parts = []records.Part{}
	}
	response.JSONMeta(w, parts, total, page, limit)
}

func handleAddPart(w http.ResponseWriter, r *http.Request) {
	var req records.PartInput
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	id, err := svc.AddPart(req, actor(r))
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	part, err := svc.GetPart(id)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(201)
	response.JSON(w, part)
}

func handleGetPart(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid part id", 400)
		return
	}
	part, err := svc.GetPart(id)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, part)
}

func handleUpdatePart(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid part id", 400)
		return
	}
	var req records.PartUpdate
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := svc.UpdatePart(id, req, actor(r)); err != nil {
		writeCoreErr(w, err)
		return
	}
	part, err := svc.GetPart(id)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, part)
}

func handleDeletePart(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid part id", 400)
		return
	}
	if err := svc.DeletePart(id, actor(r)); err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted"})
}

func handlePartSuppliers(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid part id", 400)
		return
	}
	offers, err := svc.SuppliersForPart(id)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if offers == nil {
		offers = []records.SupplierOffer{}
	}
	response.JSON(w, offers)
}

func handleAddSupplier(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid part id", 400)
		return
	}
	var req records.SupplierInput
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	offerID, err := svc.AddSupplierOffer(id, req, actor(r))
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(201)
	response.JSON(w, map[string]int64{"id": offerID})
}
