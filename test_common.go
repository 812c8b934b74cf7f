package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"partsdesk/internal/audit"
	"partsdesk/internal/backup"
	"partsdesk/internal/records"
	ws "partsdesk/internal/websocket"
)

// setupTestApp wires an in-memory database through the production migrations
// and rebuilds the service globals. Single connection so every statement sees
// the same in-memory database.
func setupTestApp(t *testing.T) http.Handler {
	t.Helper()
	testDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	testDB.SetMaxOpenConns(1)
	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	db = testDB
	if err := runMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
		db = nil
	})

	cfg = defaultConfig()
	hub = ws.NewHub()
	auditor = &audit.Logger{DB: db, Hub: hub}
	svc = records.New(db, auditor)
	backups = backup.New(db, t.TempDir())

	return requireAuth(requireRBAC(buildRoutes()))
}

// createTestUser inserts a user and an active session, returning the session
// cookie for authenticated requests.
func createTestUser(t *testing.T, username, password, role string) *http.Cookie {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	res, err := db.Exec(`INSERT INTO users (username, password_hash, role, created_date)
		VALUES (?, ?, ?, datetime('now'))`, username, string(hash), role)
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	userID, _ := res.LastInsertId()

	token := generateToken()
	expires := time.Now().Add(time.Hour).Format("2006-01-02 15:04:05")
	if _, err := db.Exec("INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, expires); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: token}
}

// doRequest runs one request through the handler stack and returns the
// recorder. A nil body sends an empty request; a nil cookie is unauthenticated.
func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of the standard envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("Failed to decode data: %v (body: %s)", err, rec.Body.String())
	}
}
