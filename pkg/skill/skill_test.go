package skill_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/skill"
)

func TestValidateName(t *testing.T) {
	valid := []string{"translator", "code-review", "sum2", "a"}
	for _, name := range valid {
		if err := skill.ValidateName(name); err != nil {
			t.Errorf("%q should be valid: %v", name, err)
		}
	}

	invalid := []string{"", "Translator", "has space", "-leading", "trailing-", "double--hyphen", "под"}
	for _, name := range invalid {
		if err := skill.ValidateName(name); err == nil {
			t.Errorf("%q should be rejected", name)
		}
	}
}

func TestListSkills(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/skills" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"skills": []map[string]any{
				{"name": "translator", "description": "翻译文本", "has_inputs": true},
			},
			"total": 1,
		})
	}))
	defer srv.Close()

	skills, err := skill.NewAPI(client.New(srv.URL)).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(skills) != 1 || skills[0].Name != "translator" || !skills[0].HasInputs {
		t.Fatalf("unexpected list result: %+v", skills)
	}
}

func TestCreateRejectsBadNameLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := skill.NewAPI(client.New(srv.URL)).Create(context.Background(), "Bad Name", "# skill")
	if err == nil {
		t.Fatal("expected a name validation error")
	}
	if called {
		t.Fatal("invalid names must not reach the server")
	}
}

func TestGetSkill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/skills/translator" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":        "translator",
			"description": "翻译文本",
			"prompt":      "Translate {{text}}",
			"raw_content": "---\nname: translator\n---\nTranslate {{text}}",
			"inputs": []map[string]any{
				{"name": "text", "label": "原文", "required": true},
			},
		})
	}))
	defer srv.Close()

	s, err := skill.NewAPI(client.New(srv.URL)).Get(context.Background(), "translator")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Prompt != "Translate {{text}}" || len(s.Inputs) != 1 || !s.Inputs[0].Required {
		t.Fatalf("unexpected skill: %+v", s)
	}
}
