package profile

import "time"

// Skill is one of the four IELTS exam skills.
type Skill string

const (
	SkillReading   Skill = "reading"
	SkillListening Skill = "listening"
	SkillWriting   Skill = "writing"
	SkillSpeaking  Skill = "speaking"
)

// AllSkills returns the four skills in their canonical display order.
func AllSkills() []Skill {
	return []Skill{SkillReading, SkillListening, SkillWriting, SkillSpeaking}
}

// ExamTrack selects between the two IELTS variants.
type ExamTrack string

const (
	TrackAcademic ExamTrack = "academic"
	TrackGeneral  ExamTrack = "general"
)

// UserProfile is the root aggregate for a learner. It is persisted as a
// single versioned JSON blob; the JSON keys match the stored shape and must
// not change without a store version bump.
type UserProfile struct {
	Name               string           `json:"name"`
	Track              ExamTrack        `json:"type"`
	TargetBand         float64          `json:"targetBand"`
	CurrentLevel       string           `json:"currentLevel"`
	EstimatedBand      *float64         `json:"estimatedBand"`
	OnboardingComplete bool             `json:"completedOnboarding"`
	Progress           []SkillProgress  `json:"progress"`
	ActivityLog        []ActivityRecord `json:"activityLog"`
	VocabVault         []VocabularyItem `json:"vocabVault"`
}

// SkillProgress is the per-skill ledger. One instance per skill actually
// practiced, created on the first completed session and never removed.
type SkillProgress struct {
	Skill             Skill    `json:"skill"`
	SessionsCompleted int      `json:"sessionsCompleted"`
	LastFeedback      string   `json:"lastFeedback"`
	LearnedVocab      []string `json:"learnedVocab"`
	LearnedGrammar    []string `json:"learnedGrammar"`
}

// VocabularyItem is one entry in the cross-skill vocabulary vault.
// Uniqueness is by lower-cased word across the whole vault.
type VocabularyItem struct {
	Word        string    `json:"word"`
	SourceSkill Skill     `json:"skill"`
	DateAdded   time.Time `json:"dateAdded"`
	Mastered    bool      `json:"mastered"`
	Context     string    `json:"context,omitempty"`
}

// ActivityRecord is one entry in the append-only activity log,
// most-recent-last.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"date"`
	Skill     Skill     `json:"skill"`
	Title     string    `json:"title"`
}

// ProgressFor returns the ledger for the given skill, or nil if the skill
// has never been practiced.
func (p *UserProfile) ProgressFor(skill Skill) *SkillProgress {
	for i := range p.Progress {
		if p.Progress[i].Skill == skill {
			return &p.Progress[i]
		}
	}
	return nil
}

// VaultEntry returns the vault item for the exact word, or nil.
func (p *UserProfile) VaultEntry(word string) *VocabularyItem {
	for i := range p.VocabVault {
		if p.VocabVault[i].Word == word {
			return &p.VocabVault[i]
		}
	}
	return nil
}

// Normalize back-fills collections that older stored profiles lack, so a
// blob saved before the vault existed loads with an empty vault instead of
// nil slices leaking through the app.
func (p *UserProfile) Normalize() {
	if p.Progress == nil {
		p.Progress = []SkillProgress{}
	}
	if p.ActivityLog == nil {
		p.ActivityLog = []ActivityRecord{}
	}
	if p.VocabVault == nil {
		p.VocabVault = []VocabularyItem{}
	}
}
