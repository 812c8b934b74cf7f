package main

import (
	"testing"
)

func TestUserManagementOverHTTP(t *testing.T) {
	h := setupTestApp(t)
	admin := createTestUser(t, "root", "secret123", "admin")

	rec := doRequest(t, h, "POST", "/api/users",
		UserRequest{Username: "dave", Password: "hunter22", Role: "user"}, admin)
	if rec.Code != 201 {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created UserResponse
	decodeData(t, rec, &created)
	if created.Username != "dave" || created.Role != "user" {
		t.Errorf("unexpected user: %+v", created)
	}

	// Duplicate username.
	rec = doRequest(t, h, "POST", "/api/users",
		UserRequest{Username: "dave", Password: "hunter22"}, admin)
	if rec.Code != 409 {
		t.Errorf("duplicate: status = %d, want 409", rec.Code)
	}

	// New user can log in.
	rec = doRequest(t, h, "POST", "/api/auth/login",
		LoginRequest{Username: "dave", Password: "hunter22"}, nil)
	if rec.Code != 200 {
		t.Errorf("new user login: status = %d", rec.Code)
	}

	// Promote and change password.
	rec = doRequest(t, h, "PUT", "/api/users/2",
		UserRequest{Role: "admin", Password: "newpass99"}, admin)
	if rec.Code != 200 {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, h, "POST", "/api/auth/login",
		LoginRequest{Username: "dave", Password: "newpass99"}, nil)
	if rec.Code != 200 {
		t.Errorf("login after password change: status = %d", rec.Code)
	}

	rec = doRequest(t, h, "DELETE", "/api/users/2", nil, admin)
	if rec.Code != 200 {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, h, "POST", "/api/auth/login",
		LoginRequest{Username: "dave", Password: "newpass99"}, nil)
	if rec.Code != 401 {
		t.Errorf("deleted user can still log in")
	}
}

func TestAddUserValidation(t *testing.T) {
	h := setupTestApp(t)
	admin := createTestUser(t, "root", "secret123", "admin")

	rec := doRequest(t, h, "POST", "/api/users",
		UserRequest{Username: "", Password: "hunter22"}, admin)
	if rec.Code != 400 {
		t.Errorf("empty username: status = %d, want 400", rec.Code)
	}
	rec = doRequest(t, h, "POST", "/api/users",
		UserRequest{Username: "eve", Password: "shor"}, admin)
	if rec.Code != 400 {
		t.Errorf("short password: status = %d, want 400", rec.Code)
	}
}

func TestCannotDeleteOwnAccount(t *testing.T) {
	h := setupTestApp(t)
	admin := createTestUser(t, "root", "secret123", "admin")

	rec := doRequest(t, h, "DELETE", "/api/users/1", nil, admin)
	if rec.Code != 400 {
		t.Errorf("self-delete: status = %d, want 400", rec.Code)
	}
}
