// Package placement generates the onboarding proficiency test and turns a
// raw score into an estimated CEFR level and IELTS band.
package placement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/bandup/internal/llm"
)

// questionCount is how many multiple-choice questions a test holds.
const questionCount = 10

// Question is one multiple-choice placement question.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Assessment is the level estimate derived from a completed test.
type Assessment struct {
	// Level is a CEFR range such as "B1/B2".
	Level string `json:"level"`

	// Band is the estimated IELTS band, 4.0-9.0 in half steps.
	Band float64 `json:"band"`
}

// Service runs placement tests against the generation provider.
type Service struct {
	provider llm.Provider
}

// NewService returns a placement service backed by the given provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

var testSchema = &llm.Schema{
	Name:        "placement-questions",
	Description: "A set of multiple-choice IELTS placement questions.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":            map[string]any{"type": "string"},
						"text":          map[string]any{"type": "string"},
						"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correctAnswer": map[string]any{"type": "string"},
					},
					"required": []any{"id", "text", "options", "correctAnswer"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

var assessmentSchema = &llm.Schema{
	Name:        "level-assessment",
	Description: "CEFR level and IELTS band estimated from a placement score.",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level": map[string]any{"type": "string"},
			"band":  map[string]any{"type": "number"},
		},
		"required": []any{"level", "band"},
	},
}

// GenerateTest asks the model for a fresh question set. Questions without
// at least two options are dropped; an unusably small set is an error.
func (s *Service) GenerateTest(ctx context.Context) ([]Question, error) {
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "placement-test"), llm.Request{
		System: "You are an IELTS examiner writing a placement test.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf(
				"Generate %d multiple-choice IELTS placement test questions spanning grammar, vocabulary and reading comprehension, easiest first. Each question has exactly four options, one correct.",
				questionCount),
		}},
		Schema:    testSchema,
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("generating placement test: %w", err)
	}

	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decoding placement test: %w", err)
	}

	questions := payload.Questions[:0]
	for _, q := range payload.Questions {
		if len(q.Options) >= 2 {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("placement test came back empty")
	}
	return questions, nil
}

// Score counts answers matching each question's correct option.
func Score(questions []Question, answers map[string]string) int {
	score := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Assess converts a raw score into a level estimate. Callers fall back to
// DefaultAssessment when this fails; onboarding never blocks on it.
func (s *Service) Assess(ctx context.Context, score, total int) (Assessment, error) {
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "level-assessment"), llm.Request{
		System: "You are an IELTS examiner converting placement scores into band estimates.",
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("The student scored %d out of %d on the placement test. Estimate their CEFR level range and IELTS band.", score, total),
		}},
		Schema:    assessmentSchema,
		MaxTokens: 256,
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("assessing placement score: %w", err)
	}

	var a Assessment
	if err := json.Unmarshal(resp.Content, &a); err != nil {
		return Assessment{}, fmt.Errorf("decoding assessment: %w", err)
	}
	return a, nil
}

// DefaultAssessment is the fallback estimate when assessment fails.
func DefaultAssessment() Assessment {
	return Assessment{Level: "B2", Band: 6.0}
}
