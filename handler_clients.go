package main

import (
	"net/http"

	"partsdesk/internal/records"
	"partsdesk/internal/response"
)

type ClientRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"client_name"`
}

func handleListClients(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	// The service pages from zero; the API pages from one.
	clients, total, err := svc.ListClients(page-1, limit)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if clients == nil {
		clients = []records.Client{}
	}
	response.JSONMeta(w, clients, total, page, limit)
}

func handleAddClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	phone, err := svc.AddClient(req.Phone, req.Name, actor(r))
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	client, err := svc.GetClient(phone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(201)
	response.JSON(w, client)
}

func handleGetClient(w http.ResponseWriter, r *http.Request, phone string) {
	client, err := svc.GetClient(phone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, client)
}

func handleUpdateClient(w http.ResponseWriter, r *http.Request, phone string) {
	var req ClientRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	newPhone := req.Phone
	if newPhone == "" {
		newPhone = phone
	}
	if err := svc.UpdateClient(phone, newPhone, req.Name, actor(r)); err != nil {
		writeCoreErr(w, err)
		return
	}
	client, err := svc.GetClient(newPhone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, client)
}

func handleDeleteClient(w http.ResponseWriter, r *http.Request, phone string) {
	if err := svc.DeleteClient(phone, actor(r)); err != nil {
		writeCoreErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "deleted"})
}

func handleClientVINs(w http.ResponseWriter, r *http.Request, phone string) {
	vins, err := svc.VINsForClient(phone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if vins == nil {
		vins = []records.VIN{}
	}
	response.JSON(w, vins)
}

func handleClientParts(w http.ResponseWriter, r *http.Request, phone string) {
	var parts []records.Part
	var err error
	if r.URL.Query().Get("without_vin") == "1" {
		parts, err = svc.PartsWithoutVIN(phone)
	} else {
		parts, err = svc.PartsForClient(phone)
	}
	if err != nil {
		writeCoreErr(w, err)
		return
	}
	if parts == nil {
		parts = []records.Part{}
	}
	response.JSON(w, parts)
}
