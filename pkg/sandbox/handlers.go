package sandbox

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ── skills ────────────────────────────────────────────────────────────────

func (s *Server) handleListSkills(c *fiber.Ctx) error {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	skills := make([]*storedSkill, 0, len(s.state.skills))
	for _, sk := range s.state.skills {
		skills = append(skills, sk)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })

	items := make([]fiber.Map, len(skills))
	for i, sk := range skills {
		items[i] = fiber.Map{
			"name":               sk.Name,
			"description":        sk.Description,
			"inputs":             sk.Inputs,
			"has_inputs":         len(sk.Inputs) > 0,
			"has_knowledge_base": false,
			"updated_at":         sk.UpdatedAt,
		}
	}
	return c.JSON(fiber.Map{"skills": items, "total": len(items)})
}

func (s *Server) handleGetSkill(c *fiber.Ctx) error {
	s.state.mu.RLock()
	sk := s.state.skills[c.Params("name")]
	s.state.mu.RUnlock()
	if sk == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "skill not found")
	}
	return c.JSON(sk)
}

type skillWriteRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) handleCreateSkill(c *fiber.Ctx) error {
	var req skillWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid skill payload")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.skills[req.Name]; exists {
		return errorRegistry.NewWithMessage(ErrConflict, "skill already exists")
	}

	now := time.Now()
	sk := &storedSkill{
		Name:        req.Name,
		Description: firstLine(req.Content),
		Prompt:      req.Content,
		RawContent:  req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.state.skills[req.Name] = sk
	return c.Status(fiber.StatusCreated).JSON(sk)
}

func (s *Server) handleUpdateSkill(c *fiber.Ctx) error {
	var req skillWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid skill payload")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	sk := s.state.skills[c.Params("name")]
	if sk == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "skill not found")
	}
	sk.Prompt = req.Content
	sk.RawContent = req.Content
	sk.UpdatedAt = time.Now()
	return c.JSON(sk)
}

func (s *Server) handleDeleteSkill(c *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	name := c.Params("name")
	if _, exists := s.state.skills[name]; !exists {
		return errorRegistry.NewWithMessage(ErrNotFound, "skill not found")
	}
	delete(s.state.skills, name)
	return c.SendStatus(fiber.StatusNoContent)
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if line != "" && !strings.HasPrefix(line, "---") {
			return line
		}
	}
	return ""
}

// ── workflows ─────────────────────────────────────────────────────────────

type workflowWriteRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Graph       map[string]any `json:"graph_data"`
}

func (s *Server) handleListWorkflows(c *fiber.Ctx) error {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	items := make([]*storedWorkflow, 0, len(s.state.workflows))
	for _, wf := range s.state.workflows {
		items = append(items, wf)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return c.JSON(fiber.Map{"items": items, "total": len(items)})
}

func (s *Server) handleGetWorkflow(c *fiber.Ctx) error {
	s.state.mu.RLock()
	wf := s.state.workflows[c.Params("id")]
	s.state.mu.RUnlock()
	if wf == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "workflow not found")
	}
	return c.JSON(wf)
}

func (s *Server) handleCreateWorkflow(c *fiber.Ctx) error {
	var req workflowWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid workflow payload")
	}

	now := time.Now()
	wf := &storedWorkflow{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Graph:       req.Graph,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.state.mu.Lock()
	s.state.workflows[wf.ID] = wf
	s.state.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (s *Server) handleUpdateWorkflow(c *fiber.Ctx) error {
	var req workflowWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid workflow payload")
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	wf := s.state.workflows[c.Params("id")]
	if wf == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "workflow not found")
	}
	wf.Name = req.Name
	wf.Description = req.Description
	wf.Graph = req.Graph
	wf.UpdatedAt = time.Now()
	return c.JSON(wf)
}

func (s *Server) handleDeleteWorkflow(c *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	id := c.Params("id")
	if _, exists := s.state.workflows[id]; !exists {
		return errorRegistry.NewWithMessage(ErrNotFound, "workflow not found")
	}
	delete(s.state.workflows, id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ── knowledge ─────────────────────────────────────────────────────────────

func (s *Server) handleListKBs(c *fiber.Ctx) error {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	items := make([]fiber.Map, 0, len(s.state.kbs))
	for _, kb := range s.state.kbs {
		count := 0
		for _, d := range s.state.docs {
			if d.KBID == kb.ID {
				count++
			}
		}
		items = append(items, fiber.Map{
			"id":             kb.ID,
			"name":           kb.Name,
			"document_count": count,
			"created_at":     kb.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i]["created_at"].(time.Time).Before(items[j]["created_at"].(time.Time))
	})
	return c.JSON(fiber.Map{"items": items, "total": len(items)})
}

type kbCreateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateKB(c *fiber.Ctx) error {
	var req kbCreateRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return errorRegistry.NewWithMessage(ErrBadRequest, "knowledge base name is required")
	}

	kb := &storedKB{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name), CreatedAt: time.Now()}
	s.state.mu.Lock()
	s.state.kbs[kb.ID] = kb
	s.state.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": kb.ID, "name": kb.Name, "document_count": 0, "created_at": kb.CreatedAt,
	})
}

func (s *Server) handleDeleteKB(c *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	id := c.Params("id")
	if _, exists := s.state.kbs[id]; !exists {
		return errorRegistry.NewWithMessage(ErrNotFound, "knowledge base not found")
	}
	delete(s.state.kbs, id)
	for docID, d := range s.state.docs {
		if d.KBID == id {
			delete(s.state.docs, docID)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"documents": s.state.kbDocuments(c.Params("id"))})
}

func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	docID := c.Params("docId")
	if _, exists := s.state.docs[docID]; !exists {
		return errorRegistry.NewWithMessage(ErrNotFound, "document not found")
	}
	delete(s.state.docs, docID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	kbID := c.Params("id")
	s.state.mu.RLock()
	kb := s.state.kbs[kbID]
	s.state.mu.RUnlock()
	if kb == nil {
		return errorRegistry.NewWithMessage(ErrNotFound, "knowledge base not found")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "file field is required")
	}
	f, err := header.Open()
	if err != nil {
		return errorRegistry.WrapWith(ErrBadRequest, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return errorRegistry.WrapWith(ErrBadRequest, err)
	}

	// The sandbox indexes instantly; real backends report pending first.
	doc := &storedDoc{
		ID:        uuid.NewString(),
		KBID:      kbID,
		Filename:  header.Filename,
		Status:    "completed",
		FileSize:  header.Size,
		CreatedAt: time.Now(),
		content:   string(content),
	}
	s.state.mu.Lock()
	s.state.docs[doc.ID] = doc
	s.state.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return errorRegistry.NewWithMessage(ErrBadRequest, "query is required")
	}
	topK, _ := strconv.Atoi(c.Query("top_k", "5"))
	if topK <= 0 {
		topK = 5
	}

	type scored struct {
		doc   *storedDoc
		score float64
	}
	var matches []scored
	for _, d := range s.state.kbDocuments(c.Params("id")) {
		score := overlapScore(query, d.content)
		if score > 0 {
			matches = append(matches, scored{doc: d, score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]fiber.Map, len(matches))
	for i, m := range matches {
		results[i] = fiber.Map{
			"doc_id":      m.doc.ID,
			"filename":    m.doc.Filename,
			"chunk_index": 0,
			"score":       m.score,
			"text":        snippet(m.doc.content),
		}
	}
	return c.JSON(fiber.Map{"results": results})
}

// overlapScore is a toy relevance measure: the fraction of query terms
// present in the document.
func overlapScore(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return content
}

// ── chat sessions / admin ─────────────────────────────────────────────────

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	s.state.mu.Lock()
	delete(s.state.sessions, c.Params("id"))
	s.state.mu.Unlock()
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users := s.state.userList()
	return c.JSON(fiber.Map{"users": users, "total": len(users)})
}

func (s *Server) userByParam(c *fiber.Ctx) (*user, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, errorRegistry.NewWithMessage(ErrBadRequest, "invalid user id")
	}
	s.state.mu.RLock()
	u := s.state.users[id]
	s.state.mu.RUnlock()
	if u == nil {
		return nil, errorRegistry.NewWithMessage(ErrNotFound, "user not found")
	}
	return u, nil
}

func (s *Server) handleDisableUser(c *fiber.Ctx) error {
	u, err := s.userByParam(c)
	if err != nil {
		return err
	}
	if u.Role == "admin" {
		return errorRegistry.NewWithMessage(ErrBadRequest, "cannot disable an admin account")
	}
	s.state.mu.Lock()
	u.IsActive = false
	s.state.mu.Unlock()
	return c.JSON(fiber.Map{"success": true, "message": "user disabled"})
}

func (s *Server) handleEnableUser(c *fiber.Ctx) error {
	u, err := s.userByParam(c)
	if err != nil {
		return err
	}
	s.state.mu.Lock()
	u.IsActive = true
	s.state.mu.Unlock()
	return c.JSON(fiber.Map{"success": true, "message": "user enabled"})
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	u, err := s.userByParam(c)
	if err != nil {
		return err
	}
	if u.Role == "admin" {
		return errorRegistry.NewWithMessage(ErrBadRequest, "cannot delete an admin account")
	}
	s.state.mu.Lock()
	delete(s.state.users, u.ID)
	s.state.mu.Unlock()
	return c.JSON(fiber.Map{"success": true, "message": "user deleted"})
}
