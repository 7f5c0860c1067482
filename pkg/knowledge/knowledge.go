// Package knowledge manages knowledge bases: document upload and
// indexing, and semantic search over the indexed chunks.
package knowledge

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/asyncx"
	"github.com/agentflow-ai/agentflow-go/pkg/client"
)

// Document indexing states reported by the platform.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// uploadWorkers bounds concurrent uploads in UploadAll.
const uploadWorkers = 3

// Base is one knowledge base.
type Base struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Document is one uploaded file and its indexing state.
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is one chunk matched by a semantic search.
type SearchResult struct {
	DocID      string  `json:"doc_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

// SupportedFile reports whether the platform can index the given filename.
func SupportedFile(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// API wraps the knowledge-base endpoints of the platform.
type API struct {
	client *client.Client
}

// NewAPI creates a knowledge API bound to c.
func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

type listResponse struct {
	Items []Base `json:"items"`
	Total int    `json:"total"`
}

// List returns all knowledge bases.
func (a *API) List(ctx context.Context) ([]Base, error) {
	var out listResponse
	if err := a.client.Get(ctx, "/knowledge", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

type createRequest struct {
	Name string `json:"name"`
}

// Create makes a new, empty knowledge base.
func (a *API) Create(ctx context.Context, name string) (*Base, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorRegistry.New(ErrNameRequired)
	}
	var out Base
	if err := a.client.Do(ctx, "POST", "/knowledge", createRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a knowledge base with all its documents and vectors.
func (a *API) Delete(ctx context.Context, kbID string) error {
	return a.client.Do(ctx, "DELETE", "/knowledge/"+kbID, nil, nil)
}

type documentsResponse struct {
	Documents []Document `json:"documents"`
}

// Documents lists the documents of one knowledge base.
func (a *API) Documents(ctx context.Context, kbID string) ([]Document, error) {
	var out documentsResponse
	if err := a.client.Get(ctx, "/knowledge/"+kbID+"/documents", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// DeleteDocument removes one document from a knowledge base.
func (a *API) DeleteDocument(ctx context.Context, kbID, docID string) error {
	return a.client.Do(ctx, "DELETE", "/knowledge/"+kbID+"/documents/"+docID, nil, nil)
}

// Upload sends one file for indexing. Indexing is asynchronous: the
// returned document starts in the pending state.
func (a *API) Upload(ctx context.Context, kbID, filename string, content io.Reader) (*Document, error) {
	if !SupportedFile(filename) {
		return nil, errorRegistry.NewWithMessage(ErrUnsupportedFile,
			"仅支持 .txt、.md、.pdf、.docx 文件")
	}
	var out Document
	if err := a.client.Upload(ctx, "/knowledge/"+kbID+"/upload", "file", filename, content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadFile uploads a file from disk.
func (a *API) UploadFile(ctx context.Context, kbID, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrUpload, err)
	}
	defer f.Close()
	return a.Upload(ctx, kbID, filepath.Base(path), f)
}

// UploadAll uploads the given files with bounded concurrency and returns
// one settled result per file, in input order.
func (a *API) UploadAll(ctx context.Context, kbID string, paths []string) []asyncx.Result[*Document] {
	return asyncx.PoolSettled(ctx, uploadWorkers, paths,
		func(ctx context.Context, path string) (*Document, error) {
			return a.UploadFile(ctx, kbID, path)
		})
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search retrieves the topK most relevant chunks for the query.
func (a *API) Search(ctx context.Context, kbID, query string, topK int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errorRegistry.New(ErrQueryRequired)
	}
	if topK <= 0 {
		topK = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))

	var out searchResponse
	if err := a.client.Get(ctx, "/knowledge/"+kbID+"/search", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
