package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

type fakeCreds struct {
	token   string
	cleared bool
}

func (f *fakeCreds) Token() string { return f.token }
func (f *fakeCreds) Clear()        { f.cleared = true; f.token = "" }

func TestBearerHeaderInjected(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithCredentials(&fakeCreds{token: "tok123"}))
	if err := c.Do(context.Background(), http.MethodGet, "/skills", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bearer tok123" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestErrorDetailExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "skill name already exists"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	err := c.Do(context.Background(), http.MethodPost, "/skills", map[string]string{"name": "x"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !contains(got, "skill name already exists") {
		t.Fatalf("detail not extracted: %v", got)
	}
}

func TestErrorDetailFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>"))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	err := c.Do(context.Background(), http.MethodGet, "/workflows", nil, nil)
	if err == nil || !contains(err.Error(), "HTTP error! status: 500") {
		t.Fatalf("expected generic status message, got %v", err)
	}
}

func TestUnauthorizedClearsCredentialAndFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "token expired"}`))
	}))
	defer srv.Close()

	creds := &fakeCreds{token: "stale"}
	hookFired := false
	c := client.New(srv.URL,
		client.WithCredentials(creds),
		client.WithUnauthorizedHook(func() { hookFired = true }))

	err := c.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil)
	if !client.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if !creds.cleared {
		t.Fatal("401 must clear the stored credential")
	}
	if !hookFired {
		t.Fatal("401 must fire the unauthorized hook")
	}
}

func TestURLJoining(t *testing.T) {
	c := client.New("http://example.test/")
	if got := c.URL("skills"); got != "http://example.test/api/v1/skills" {
		t.Fatalf("unexpected URL %q", got)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
