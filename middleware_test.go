package main

import (
	"testing"
)

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := setupTestApp(t)

	for _, path := range []string{"/api/clients", "/api/parts", "/api/search?q=x", "/api/activity"} {
		rec := doRequest(t, h, "GET", path, nil, nil)
		if rec.Code != 401 {
			t.Errorf("GET %s unauthenticated: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestAdminOnlyEndpointsForbiddenForUsers(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "carol", "secret123", "user")

	cases := []struct{ method, path string }{
		{"GET", "/api/activity"},
		{"GET", "/api/users"},
		{"POST", "/api/backup"},
		{"GET", "/api/backup"},
		{"POST", "/api/maintenance"},
	}
	for _, c := range cases {
		rec := doRequest(t, h, c.method, c.path, nil, cookie)
		if rec.Code != 403 {
			t.Errorf("%s %s as user: status = %d, want 403", c.method, c.path, rec.Code)
		}
	}
}

func TestAdminEndpointsAllowedForAdmin(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "root", "secret123", "admin")

	rec := doRequest(t, h, "GET", "/api/activity", nil, cookie)
	if rec.Code != 200 {
		t.Errorf("GET /api/activity as admin: status = %d", rec.Code)
	}
	rec = doRequest(t, h, "GET", "/api/users", nil, cookie)
	if rec.Code != 200 {
		t.Errorf("GET /api/users as admin: status = %d", rec.Code)
	}
}

func TestRegularEndpointsAllowedForUsers(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "carol", "secret123", "user")

	rec := doRequest(t, h, "GET", "/api/clients", nil, cookie)
	if rec.Code != 200 {
		t.Errorf("GET /api/clients as user: status = %d", rec.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	h := setupTestApp(t)
	cookie := createTestUser(t, "carol", "secret123", "user")

	rec := doRequest(t, h, "GET", "/api/nonsense", nil, cookie)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
