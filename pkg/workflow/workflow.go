// Package workflow manages workflow definitions and their streamed
// executions.
package workflow

import (
	"context"
	"net/url"

	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

// API wraps the workflow endpoints of the platform.
type API struct {
	client *client.Client
}

// NewAPI creates a workflow API bound to c.
func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

type listResponse struct {
	Items []Workflow `json:"items"`
	Total int        `json:"total"`
}

// List returns all stored workflows without their graphs.
func (a *API) List(ctx context.Context) ([]Workflow, error) {
	var out listResponse
	if err := a.client.Get(ctx, "/workflows", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Get fetches one workflow with its full graph.
func (a *API) Get(ctx context.Context, id string) (*Workflow, error) {
	var out Workflow
	if err := a.client.Get(ctx, "/workflows/"+id, url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type savePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Graph       Graph  `json:"graph_data"`
}

// Create stores a new workflow and returns it with its server-assigned ID.
func (a *API) Create(ctx context.Context, name, description string, graph Graph) (*Workflow, error) {
	var out Workflow
	payload := savePayload{Name: name, Description: description, Graph: graph}
	if err := a.client.Do(ctx, "POST", "/workflows", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing workflow's name, description and graph.
func (a *API) Update(ctx context.Context, id string, name, description string, graph Graph) error {
	payload := savePayload{Name: name, Description: description, Graph: graph}
	return a.client.Do(ctx, "PUT", "/workflows/"+id, payload, nil)
}

// Delete removes a workflow.
func (a *API) Delete(ctx context.Context, id string) error {
	return a.client.Do(ctx, "DELETE", "/workflows/"+id, nil, nil)
}
