package main

import (
	"net/http"

	"partsdesk/internal/records"
	"partsdesk/internal/response"
	"partsdesk/internal/validation"
)

func handleAddVIN(w http.ResponseWriter, r *http.Request) {
	var req records.VINInput
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	inserted, err := svc.AddVIN(req, actor(r))
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if inserted {
		w.WriteHeader(201)
	}
	// inserted=false means the VIN key already exists; the first owner is
	// retained and the caller is told so it can warn.
	response.JSON(w, map[string]interface{}{"inserted": inserted, "vin_number": validation.NormalizeVIN(req.VIN)})
}

func handleGetVIN(w http.ResponseWriter, r *http.Request, vin string) {
	rec, err := svc.GetVIN(vin)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, rec)
}

func handleDeleteVIN(w http.ResponseWriter, r *http.Request, vin string) {
	if err := svc.DeleteVIN(vin, actor(r)); err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted"})
}

func handleVINParts(w http.ResponseWriter, r *http.Request, vin string) {
	parts, err := svc.PartsForVIN(vin)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if parts == nil {
		parts = []records.Part{}
	}
	response.JSON(w, parts)
}
