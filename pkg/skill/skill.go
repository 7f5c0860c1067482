// Package skill manages prompt-template skills: listing, editing, and
// streaming runs against the platform.
package skill

import (
	"context"
	"net/url"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

// API wraps the skill endpoints of the platform.
type API struct {
	client *client.Client
}

// NewAPI creates a skill API bound to c.
func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

type listResponse struct {
	Skills []Summary `json:"skills"`
	Total  int       `json:"total"`
}

// List returns summaries of all skills.
func (a *API) List(ctx context.Context) ([]Summary, error) {
	var out listResponse
	if err := a.client.Get(ctx, "/skills", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Skills, nil
}

// Get fetches the full definition of one skill.
func (a *API) Get(ctx context.Context, name string) (*Skill, error) {
	var out Skill
	if err := a.client.Get(ctx, "/skills/"+name, url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type createRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type updateRequest struct {
	Content string `json:"content"`
}

// Create registers a new skill from complete SKILL.md content. The name
// becomes the skill's folder on the server and must follow the naming
// rules checked by ValidateName.
func (a *API) Create(ctx context.Context, name, content string) (*Skill, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var out Skill
	if err := a.client.Do(ctx, "POST", "/skills", createRequest{Name: name, Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the SKILL.md content of an existing skill.
func (a *API) Update(ctx context.Context, name, content string) (*Skill, error) {
	var out Skill
	if err := a.client.Do(ctx, "PUT", "/skills/"+name, updateRequest{Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a skill.
func (a *API) Delete(ctx context.Context, name string) error {
	return a.client.Do(ctx, "DELETE", "/skills/"+name, nil, nil)
}
