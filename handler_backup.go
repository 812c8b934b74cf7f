package main

import (
	"net/http"

	"partsdesk/internal/audit"
	"partsdesk/internal/backup"
	"partsdesk/internal/response"
)

func handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := backups.Create()
	if err != nil {
		response.Err(w, "backup failed", 500)
		return
	}
	auditor.Record(actor(r), audit.ActionBackup, info.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(201)
	response.JSON(w, info)
}

func handleListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := backups.List()
	if err != nil {
		response.Err(w, "list backups failed", 500)
		return
	}
	if infos == nil {
		infos = []backup.Info{}
	}
	response.JSON(w, infos)
}

type RestoreRequest struct {
	Name string `json:"name"`
}

func handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := response.DecodeBody(r, &req); err != nil || req.Name == "" {
		response.Err(w, "backup name required", 400)
		return
	}
	if err := backups.RestoreFile(req.Name); err != nil {
		response.Err(w, err.Error(), 400)
		return
	}
	auditor.Record(actor(r), audit.ActionRestore, req.Name)
	response.JSON(w, map[string]string{"status": "restored", "name": req.Name})
}

func handleMaintenance(w http.ResponseWriter, r *http.Request) {
	rep, err := runMaintenance()
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	response.JSON(w, rep)
}
