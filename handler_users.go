package main

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"partsdesk/internal/audit"
	"partsdesk/internal/response"
)

func handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := db.Query(`SELECT id, username, role, COALESCE(created_date,''), COALESCE(last_login,'')
		FROM users ORDER BY username`)
	if err != nil {
		response.Err(w, "failed to list users", 500)
		return
	}
	defer rows.Close()

	users := []UserResponse{}
	for rows.Next() {
		var u UserResponse
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedDate, &u.LastLogin); err != nil {
			response.Err(w, "failed to list users", 500)
			return
		}
		users = append(users, u)
	}
	response.JSON(w, users)
}

func handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 6 {
		response.Err(w, "username and a password of at least 6 characters are required", 400)
		return
	}
	if req.Role != "admin" {
		req.Role = "user"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Err(w, "failed to hash password", 500)
		return
	}
	res, err := db.Exec(`INSERT INTO users (username, password_hash, role, created_date)
		VALUES (?, ?, ?, datetime('now'))`, req.Username, string(hash), req.Role)
	if err != nil {
		response.Err(w, "username already exists", 409)
		return
	}
	id, _ := res.LastInsertId()
	auditor.Record(actor(r), audit.ActionAddUser, req.Username)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(201)
	response.JSON(w, UserResponse{ID: id, Username: req.Username, Role: req.Role})
}

func handleUpdateUser(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid user id", 400)
		return
	}
	var req UserRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var username string
	if err := db.QueryRow("SELECT username FROM users WHERE id = ?", id).Scan(&username); err != nil {
		response.Err(w, "user not found", 404)
		return
	}

	if req.Role == "admin" || req.Role == "user" {
		if _, err := db.Exec("UPDATE users SET role = ? WHERE id = ?", req.Role, id); err != nil {
			response.Err(w, "failed to update user", 500)
			return
		}
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			response.Err(w, "password must be at least 6 characters", 400)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			response.Err(w, "failed to hash password", 500)
			return
		}
		if _, err := db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hash), id); err != nil {
			response.Err(w, "failed to update user", 500)
			return
		}
	}
	auditor.Record(actor(r), audit.ActionUpdateUser, username)
	response.JSON(w, map[string]string{"status": "updated"})
}

func handleDeleteUser(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := parseID(idStr)
	if err != nil {
		response.Err(w, "invalid user id", 400)
		return
	}
	var username string
	if err := db.QueryRow("SELECT username FROM users WHERE id = ?", id).Scan(&username); err != nil {
		response.Err(w, "user not found", 404)
		return
	}
	if username == actor(r) {
		response.Err(w, "cannot delete your own account", 400)
		return
	}
	if _, err := db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		response.Err(w, "failed to delete user", 500)
		return
	}
	auditor.Record(actor(r), audit.ActionDeleteUser, username)
	response.JSON(w, map[string]string{"status": "deleted"})
}
