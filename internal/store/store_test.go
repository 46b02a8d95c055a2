package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/bandup/internal/profile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestProfileLoadMissing(t *testing.T) {
	s := openTestStore(t)
	p, err := s.Profiles().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile before first save, got %+v", p)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Profiles()
	ctx := context.Background()

	band := 6.5
	in := profile.UserProfile{
		Name:               "Priya",
		Track:              profile.TrackAcademic,
		TargetBand:         7.5,
		CurrentLevel:       "Band 6.5",
		EstimatedBand:      &band,
		OnboardingComplete: true,
		Progress: []profile.SkillProgress{
			{
				Skill:             profile.SkillReading,
				SessionsCompleted: 3,
				LastFeedback:      "Strong scanning work.",
				LearnedVocab:      []string{"provenance"},
				LearnedGrammar:    []string{"passive voice"},
			},
		},
		VocabVault: []profile.VocabularyItem{
			{Word: "provenance", SourceSkill: profile.SkillReading, DateAdded: time.Now().UTC(), Mastered: false},
		},
	}
	in.Normalize()

	if err := repo.Save(ctx, &in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("expected saved profile, got nil")
	}
	if out.Name != "Priya" || out.Track != profile.TrackAcademic {
		t.Errorf("identity fields lost: %+v", out)
	}
	if out.EstimatedBand == nil || *out.EstimatedBand != 6.5 {
		t.Errorf("estimated band lost: %v", out.EstimatedBand)
	}
	if len(out.Progress) != 1 || out.Progress[0].SessionsCompleted != 3 {
		t.Errorf("progress ledger lost: %+v", out.Progress)
	}
	if len(out.VocabVault) != 1 || out.VocabVault[0].Word != "provenance" {
		t.Errorf("vault lost: %+v", out.VocabVault)
	}
}

func TestProfileSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.Profiles()
	ctx := context.Background()

	first := profile.UserProfile{Name: "v1"}
	first.Normalize()
	if err := repo.Save(ctx, &first); err != nil {
		t.Fatalf("Save first: %v", err)
	}

	second := profile.UserProfile{Name: "v2"}
	second.Normalize()
	if err := repo.Save(ctx, &second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	out, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != "v2" {
		t.Errorf("expected latest blob to win, got %q", out.Name)
	}
}

func TestProfileCorruptBlobTreatedAsMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(
		"INSERT INTO profile (key, version, data, updated_at) VALUES (?, ?, ?, ?)",
		profileKey, profileVersion, "{not json", time.Now().UTC())
	if err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	p, err := s.Profiles().Load(ctx)
	if err != nil {
		t.Fatalf("Load should not fail on a corrupt blob: %v", err)
	}
	if p != nil {
		t.Fatalf("corrupt blob should read as absent, got %+v", p)
	}
}

func TestProfileOldBlobNormalized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A pre-vault blob has no vocabVault field at all.
	old := `{"name":"Ken","type":"general","targetBand":6.0,"completedOnboarding":true}`
	_, err := s.DB().Exec(
		"INSERT INTO profile (key, version, data, updated_at) VALUES (?, ?, ?, ?)",
		profileKey, 1, old, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed old blob: %v", err)
	}

	p, err := s.Profiles().Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p == nil {
		t.Fatal("expected profile")
	}
	if p.VocabVault == nil {
		t.Error("expected vault normalized to empty slice")
	}
	if p.ActivityLog == nil {
		t.Error("expected activity log normalized to empty slice")
	}
}

func TestProfileDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.Profiles()
	ctx := context.Background()

	p := profile.UserProfile{Name: "gone"}
	p.Normalize()
	if err := repo.Save(ctx, &p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	out, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != nil {
		t.Fatalf("expected profile gone after delete, got %+v", out)
	}

	// Deleting again is a no-op.
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestRequestAppendAndStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.Requests()
	ctx := context.Background()

	records := []RequestRecord{
		{Provider: "gemini", Model: "gemini-flash", Purpose: "tutoring", InputTokens: 100, OutputTokens: 50, LatencyMs: 800, Success: true},
		{Provider: "gemini", Model: "gemini-flash", Purpose: "placement", InputTokens: 40, OutputTokens: 200, LatencyMs: 1200, Success: true},
		{Provider: "gemini", Model: "gemini-flash", Purpose: "tutoring", Success: false, ErrorMessage: "timeout"},
	}
	for _, rec := range records {
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	st, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Requests != 3 {
		t.Errorf("Requests = %d, want 3", st.Requests)
	}
	if st.Failures != 1 {
		t.Errorf("Failures = %d, want 1", st.Failures)
	}
	if st.InputTokens != 140 || st.OutputTokens != 250 {
		t.Errorf("token sums = %d/%d, want 140/250", st.InputTokens, st.OutputTokens)
	}
}

func TestRequestStatsEmpty(t *testing.T) {
	s := openTestStore(t)

	st, err := s.Requests().Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Requests != 0 || st.InputTokens != 0 {
		t.Errorf("expected zero stats, got %+v", st)
	}
}
