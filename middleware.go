package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"partsdesk/internal/response"
)

type contextKey string

const (
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "role"
)

const sessionCookie = "partsdesk_session"

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// requireAuth resolves the session cookie into username/role context values.
// Login and the websocket handshake are exempt.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api/auth/login" || path == "/api/auth/logout" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			response.Err(w, "Unauthorized", 401)
			return
		}

		var username, role string
		err = db.QueryRow(`SELECT u.username, u.role FROM sessions s
			JOIN users u ON s.user_id = u.id
			WHERE s.token = ? AND s.expires_at > datetime('now')`, cookie.Value).
			Scan(&username, &role)
		if err != nil {
			response.Err(w, "Unauthorized", 401)
			return
		}

		// Sliding window: extend the session on each authenticated request
		newExpiry := time.Now().Add(24 * time.Hour)
		db.Exec("UPDATE sessions SET expires_at = ? WHERE token = ?",
			newExpiry.Format("2006-01-02 15:04:05"), cookie.Value)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    cookie.Value,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  newExpiry,
		})

		ctx := context.WithValue(r.Context(), ctxUsername, username)
		ctx = context.WithValue(ctx, ctxRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAdminOnly reports whether the path is restricted to the admin role.
func isAdminOnly(path string) bool {
	switch {
	case strings.HasPrefix(path, "/api/backup"),
		strings.HasPrefix(path, "/api/maintenance"),
		strings.HasPrefix(path, "/api/activity"),
		strings.HasPrefix(path, "/api/users"):
		return true
	}
	return false
}

func requireRBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(ctxRole).(string)
		if role != "admin" && isAdminOnly(r.URL.Path) {
			response.Err(w, "Admin access required", 403)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actor returns the authenticated username for audit attribution.
func actor(r *http.Request) string {
	if u, ok := r.Context().Value(ctxUsername).(string); ok && u != "" {
		return u
	}
	return "unknown"
}
