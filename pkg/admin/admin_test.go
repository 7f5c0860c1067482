package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentflow-ai/agentflow-go/pkg/admin"
	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

func TestUsersList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/admin/users" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{
				{"id": 1, "email": "admin@example.com", "role": "admin", "is_active": true},
				{"id": 2, "email": "user@example.com", "role": "user", "is_active": false},
			},
			"total": 2,
		})
	}))
	defer srv.Close()

	users, err := admin.NewAPI(client.New(srv.URL)).Users(context.Background())
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 || !users[0].IsAdmin() || users[1].IsActive {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserActions(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok"})
	}))
	defer srv.Close()

	api := admin.NewAPI(client.New(srv.URL))
	ctx := context.Background()

	cases := []struct {
		name             string
		call             func() (*admin.ActionResult, error)
		method, wantPath string
	}{
		{"disable", func() (*admin.ActionResult, error) { return api.DisableUser(ctx, 7) },
			http.MethodPost, "/api/v1/admin/users/7/disable"},
		{"enable", func() (*admin.ActionResult, error) { return api.EnableUser(ctx, 7) },
			http.MethodPost, "/api/v1/admin/users/7/enable"},
		{"delete", func() (*admin.ActionResult, error) { return api.DeleteUser(ctx, 7) },
			http.MethodDelete, "/api/v1/admin/users/7"},
	}
	for _, tc := range cases {
		res, err := tc.call()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !res.Success {
			t.Fatalf("%s: expected success", tc.name)
		}
		if gotMethod != tc.method || gotPath != tc.wantPath {
			t.Fatalf("%s: hit %s %s, want %s %s", tc.name, gotMethod, gotPath, tc.method, tc.wantPath)
		}
	}
}

func TestForbiddenSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Admin access required"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := admin.NewAPI(client.New(srv.URL)).Users(context.Background())
	if err == nil {
		t.Fatal("expected a 403 error")
	}
}
