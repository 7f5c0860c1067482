package sandbox

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// user is a sandbox account. Password is optional: accounts seeded
// without one accept any password, which keeps ad-hoc dev logins cheap.
type user struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	passwordHash []byte
}

type storedSkill struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Inputs      []skillInput   `json:"inputs,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Prompt      string         `json:"prompt"`
	RawContent  string         `json:"raw_content"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type skillInput struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
	Default  string `json:"default,omitempty"`
}

type storedWorkflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Graph       map[string]any `json:"graph_data"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type storedKB struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type storedDoc struct {
	ID        string    `json:"id"`
	KBID      string    `json:"-"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
	content   string
}

// state is the in-memory backing store of the sandbox. Everything resets
// on restart; that is the point.
type state struct {
	mu         sync.RWMutex
	users      map[int]*user
	nextUserID int
	skills     map[string]*storedSkill
	workflows  map[string]*storedWorkflow
	kbs        map[string]*storedKB
	docs       map[string]*storedDoc
	sessions   map[string]bool
}

func newState() *state {
	s := &state{
		users:      make(map[int]*user),
		nextUserID: 1,
		skills:     make(map[string]*storedSkill),
		workflows:  make(map[string]*storedWorkflow),
		kbs:        make(map[string]*storedKB),
		docs:       make(map[string]*storedDoc),
		sessions:   make(map[string]bool),
	}
	s.seed()
	return s
}

// seed loads the demo fixtures every fresh sandbox starts with.
func (s *state) seed() {
	now := time.Now()

	s.addUser("admin@example.com", "admin", "admin123")
	s.addUser("user@example.com", "user", "")

	s.skills["translator"] = &storedSkill{
		Name:        "translator",
		Description: "把输入文本翻译成目标语言",
		Inputs: []skillInput{
			{Name: "text", Label: "原文", Type: "textarea", Required: true},
			{Name: "target", Label: "目标语言", Default: "English"},
		},
		Prompt:     "Translate {{text}} into {{target}}.",
		RawContent: "---\nname: translator\n---\nTranslate {{text}} into {{target}}.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	wfID := uuid.NewString()
	s.workflows[wfID] = &storedWorkflow{
		ID:   wfID,
		Name: "示例流程",
		Graph: map[string]any{
			"nodes": []map[string]any{
				{"id": "1", "type": "start", "label": "开始", "position": map[string]any{"x": 100, "y": 100}},
				{"id": "2", "type": "llm", "label": "LLM", "position": map[string]any{"x": 300, "y": 100}},
				{"id": "3", "type": "end", "label": "结束", "position": map[string]any{"x": 500, "y": 100}},
			},
			"edges": []map[string]any{
				{"id": "e1", "source": "1", "target": "2"},
				{"id": "e2", "source": "2", "target": "3"},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	kbID := uuid.NewString()
	s.kbs[kbID] = &storedKB{ID: kbID, Name: "产品文档", CreatedAt: now}
	docID := uuid.NewString()
	s.docs[docID] = &storedDoc{
		ID:        docID,
		KBID:      kbID,
		Filename:  "getting-started.md",
		Status:    "completed",
		FileSize:  512,
		CreatedAt: now,
		content:   "AgentFlow 快速上手：先创建知识库，再上传文档，然后在聊天中选择它。",
	}
}

func (s *state) addUser(email, role, password string) *user {
	u := &user{
		ID:        s.nextUserID,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err == nil {
			u.passwordHash = hash
		}
	}
	s.nextUserID++
	s.users[u.ID] = u
	return u
}

func (s *state) findUserByEmail(email string) *user {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *state) userList() []*user {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *state) kbDocuments(kbID string) []*storedDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*storedDoc
	for _, d := range s.docs {
		if d.KBID == kbID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
