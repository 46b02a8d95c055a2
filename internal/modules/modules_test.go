package modules

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/abhisek/bandup/internal/llm"
	"github.com/abhisek/bandup/internal/profile"
)

func TestForSkill(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"modules":[
			{"id":"m1","title":"Skimming Academic Passages","description":"Find main ideas fast","type":"tutorial"},
			{"id":"m2","title":"True/False/Not Given Drills","description":"Twelve statements","type":"practice"},
			{"id":"m3","title":"Matching Headings","description":"Paragraph-level gist","type":"practice"},
			{"id":"m4","title":"Full Reading Mock","description":"Timed three-passage test","type":"mock"}
		]}`),
	})

	mods, err := NewCatalog(mock).ForSkill(context.Background(), profile.SkillReading, profile.TrackAcademic, 6.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 4 {
		t.Fatalf("modules = %d, want 4", len(mods))
	}
	if mods[0].Type != KindTutorial || mods[3].Type != KindMock {
		t.Fatalf("kinds = %v ... %v", mods[0].Type, mods[3].Type)
	}

	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "practice-modules" {
		t.Fatal("request missing the catalog schema")
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "reading") || !strings.Contains(prompt, "Band 6.5") {
		t.Fatalf("prompt = %q", prompt)
	}
}

func TestForSkillUnassessedBand(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"modules":[{"id":"m1","title":"t","description":"d","type":"practice"}]}`),
	})

	if _, err := NewCatalog(mock).ForSkill(context.Background(), profile.SkillWriting, profile.TrackGeneral, 0); err != nil {
		t.Fatal(err)
	}
	if prompt := mock.Calls[0].Messages[0].Content; strings.Contains(prompt, "Band 0") {
		t.Fatalf("unassessed band leaked into the prompt: %q", prompt)
	}
}

func TestForSkillEmptyCatalogIsError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"modules":[]}`),
	})
	if _, err := NewCatalog(mock).ForSkill(context.Background(), profile.SkillReading, profile.TrackAcademic, 6); err == nil {
		t.Fatal("empty catalog must fail")
	}
}
