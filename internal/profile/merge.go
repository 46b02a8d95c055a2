// Package profile holds the learner aggregate and the session-merge rules.
// Every mutation is expressed as "new aggregate from old aggregate + event",
// so callers swap the whole profile in one step and no partial update is
// ever observable.
package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionOutcome is the extraction handed over by a completed tutoring
// session: what to fold into the per-skill ledger and the vault.
type SessionOutcome struct {
	Skill       Skill
	ModuleTitle string
	Vocab       []string
	Grammar     []string
	Feedback    string
}

// ApplySession folds one completed session into the profile and returns the
// new aggregate. In a single step it:
//
//  1. creates the skill ledger if absent,
//  2. increments sessionsCompleted by exactly one,
//  3. unions vocab and grammar into the ledger (exact-string sets),
//  4. replaces the feedback summary,
//  5. appends one activity record,
//  6. merges previously unseen words into the vault (case-insensitive).
//
// The ledger union is deliberately case-sensitive while the vault is not;
// the asymmetry is observable behavior and is kept.
func (p UserProfile) ApplySession(o SessionOutcome, now time.Time) UserProfile {
	next := p

	next.Progress = make([]SkillProgress, len(p.Progress))
	copy(next.Progress, p.Progress)

	idx := -1
	for i := range next.Progress {
		if next.Progress[i].Skill == o.Skill {
			idx = i
			break
		}
	}
	if idx == -1 {
		next.Progress = append(next.Progress, SkillProgress{Skill: o.Skill})
		idx = len(next.Progress) - 1
	}

	sp := &next.Progress[idx]
	sp.SessionsCompleted++
	sp.LearnedVocab = unionStrings(sp.LearnedVocab, o.Vocab)
	sp.LearnedGrammar = unionStrings(sp.LearnedGrammar, o.Grammar)
	sp.LastFeedback = o.Feedback

	next.ActivityLog = make([]ActivityRecord, len(p.ActivityLog), len(p.ActivityLog)+1)
	copy(next.ActivityLog, p.ActivityLog)
	next.ActivityLog = append(next.ActivityLog, ActivityRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Skill:     o.Skill,
		Title:     o.ModuleTitle,
	})

	next.VocabVault = mergeVault(p.VocabVault, o.Vocab, o.Skill, now)

	return next
}

// ToggleMastery flips the mastered flag on the vault entry matching word
// exactly. A word not in the vault is a no-op; the per-skill ledgers are
// never touched.
func (p UserProfile) ToggleMastery(word string) UserProfile {
	next := p
	next.VocabVault = make([]VocabularyItem, len(p.VocabVault))
	copy(next.VocabVault, p.VocabVault)
	for i := range next.VocabVault {
		if next.VocabVault[i].Word == word {
			next.VocabVault[i].Mastered = !next.VocabVault[i].Mastered
			break
		}
	}
	return next
}

// unionStrings appends the members of add that existing does not already
// contain, preserving first-occurrence order. Exact string comparison.
func unionStrings(existing, add []string) []string {
	out := make([]string, len(existing), len(existing)+len(add))
	copy(out, existing)
	seen := make(map[string]bool, len(existing)+len(add))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range add {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// mergeVault inserts a vault item for each word whose lower-cased form is
// not already present. Existing entries are never updated, so dateAdded
// always reflects the first encounter.
func mergeVault(vault []VocabularyItem, words []string, skill Skill, now time.Time) []VocabularyItem {
	out := make([]VocabularyItem, len(vault), len(vault)+len(words))
	copy(out, vault)
	seen := make(map[string]bool, len(vault)+len(words))
	for _, v := range vault {
		seen[strings.ToLower(v.Word)] = true
	}
	for _, w := range words {
		key := strings.ToLower(w)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, VocabularyItem{
			Word:        w,
			SourceSkill: skill,
			DateAdded:   now,
			Mastered:    false,
		})
	}
	return out
}
