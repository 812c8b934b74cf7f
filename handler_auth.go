package main

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"partsdesk/internal/audit"
	"partsdesk/internal/response"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var id int64
	var passwordHash, role string
	err := db.QueryRow("SELECT id, password_hash, role FROM users WHERE username = ?", req.Username).
		Scan(&id, &passwordHash, &role)
	if err != nil {
		auditor.Record(req.Username, audit.ActionLoginFailed, "unknown username")
		response.Err(w, "Invalid username or password", 401)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		auditor.Record(req.Username, audit.ActionLoginFailed, "wrong password")
		response.Err(w, "Invalid username or password", 401)
		return
	}

	db.Exec("DELETE FROM sessions WHERE expires_at < datetime('now')")

	var token string
	expires := time.Now().Add(24 * time.Hour)
	for i := 0; i < 3; i++ {
		token = generateToken()
		_, err = db.Exec("INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
			token, id, expires.Format("2006-01-02 15:04:05"))
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		response.Err(w, "Failed to create session", 500)
		return
	}

	db.Exec("UPDATE users SET last_login = datetime('now') WHERE id = ?", id)
	auditor.Record(req.Username, audit.ActionLogin, "")

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	response.JSON(w, UserResponse{ID: id, Username: req.Username, Role: role})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil {
		var username string
		db.QueryRow(`SELECT u.username FROM sessions s JOIN users u ON s.user_id = u.id
			WHERE s.token = ?`, cookie.Value).Scan(&username)
		db.Exec("DELETE FROM sessions WHERE token = ?", cookie.Value)
		if username != "" {
			auditor.Record(username, audit.ActionLogout, "")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	response.JSON(w, map[string]string{"status": "ok"})
}

func handleMe(w http.ResponseWriter, r *http.Request) {
	username := actor(r)
	var u UserResponse
	err := db.QueryRow(`SELECT id, username, role, COALESCE(created_date,''), COALESCE(last_login,'')
		FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Role, &u.CreatedDate, &u.LastLogin)
	if err != nil {
		response.Err(w, "Unauthorized", 401)
		return
	}
	response.JSON(w, u)
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
