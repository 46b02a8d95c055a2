// Package modules fetches the generated practice-module catalog for a
// skill: the four lesson cards a student picks from before a session.
package modules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/bandup/internal/llm"
	"github.com/abhisek/bandup/internal/profile"
)

// catalogSize is how many modules one skill page offers.
const catalogSize = 4

// Kind classifies a practice module.
type Kind string

const (
	KindTutorial Kind = "tutorial"
	KindPractice Kind = "practice"
	KindMock     Kind = "mock"
)

// Module is one practice-module card.
type Module struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        Kind   `json:"type"`
}

// Catalog generates module lists against the generation provider.
type Catalog struct {
	provider llm.Provider
}

// NewCatalog returns a catalog backed by the given provider.
func NewCatalog(provider llm.Provider) *Catalog {
	return &Catalog{provider: provider}
}

var catalogSchema = &llm.Schema{
	Name:        "practice-modules",
	Description: "Practice modules for one IELTS skill at the student's level.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"type":        map[string]any{"type": "string", "enum": []any{"tutorial", "practice", "mock"}},
					},
					"required": []any{"id", "title", "description", "type"},
				},
			},
		},
		"required": []any{"modules"},
	},
}

// ForSkill generates the module list for one skill at the student's band.
// A zero band means unassessed; the prompt asks for mixed-level material.
func (c *Catalog) ForSkill(ctx context.Context, skill profile.Skill, track profile.ExamTrack, band float64) ([]Module, error) {
	level := "a mix of levels"
	if band > 0 {
		level = fmt.Sprintf("Band %.1f", band)
	}

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, "practice-modules"), llm.Request{
		System: "You are an IELTS curriculum designer.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf(
				"Generate %d specific IELTS practice modules for %s (%s track) at %s. Mix tutorials, practice sets and one mock test. Titles must be concrete, not generic.",
				catalogSize, skill, track, level),
		}},
		Schema:    catalogSchema,
		MaxTokens: 2048,
	})
	if err != nil {
		return nil, fmt.Errorf("generating %s modules: %w", skill, err)
	}

	var payload struct {
		Modules []Module `json:"modules"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decoding %s modules: %w", skill, err)
	}
	if len(payload.Modules) == 0 {
		return nil, fmt.Errorf("module catalog for %s came back empty", skill)
	}
	return payload.Modules, nil
}
