package skill

import (
	"regexp"
	"strings"
	"time"
)

// Input is one declared input variable of a skill. Skills interpolate
// inputs into their prompt template as {{name}}.
type Input struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"` // "text" or "textarea"
	Required    bool   `json:"required,omitempty"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// ModelConfig tunes the language model the skill runs on.
type ModelConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Summary is the lightweight list-view shape.
type Summary struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Inputs           []Input   `json:"inputs,omitempty"`
	HasInputs        bool      `json:"has_inputs"`
	HasKnowledgeBase bool      `json:"has_knowledge_base"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Skill is the full skill definition, including the prompt template and
// the raw SKILL.md source it was parsed from.
type Skill struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	License       string         `json:"license,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Inputs        []Input        `json:"inputs,omitempty"`
	KnowledgeBase string         `json:"knowledge_base,omitempty"`
	Model         *ModelConfig   `json:"model,omitempty"`
	Prompt        string         `json:"prompt"`
	RawContent    string         `json:"raw_content"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateName enforces the skill naming rules: lowercase letters, digits
// and hyphens, with no leading, trailing or doubled hyphen.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errorRegistry.NewWithMessage(ErrBadName, "skill name is required")
	case name != strings.ToLower(name):
		return errorRegistry.NewWithMessage(ErrBadName, "skill name must be lowercase")
	case !namePattern.MatchString(name):
		return errorRegistry.NewWithMessage(ErrBadName,
			"skill name can only contain lowercase letters, numbers, and hyphens")
	case strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-"):
		return errorRegistry.NewWithMessage(ErrBadName, "skill name cannot start or end with a hyphen")
	case strings.Contains(name, "--"):
		return errorRegistry.NewWithMessage(ErrBadName, "skill name cannot contain consecutive hyphens")
	}
	return nil
}
