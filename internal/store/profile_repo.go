package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/bandup/internal/profile"
)

// profileKey is the fixed storage key the aggregate lives under.
const profileKey = "user_profile"

// profileVersion is the current blob schema version. Older blobs load fine:
// fields added since their version default to empty collections.
const profileVersion = 4

// ProfileRepo persists the learner aggregate as one opaque versioned blob.
type ProfileRepo interface {
	// Load returns the last-saved profile, or nil when none exists.
	// An unparsable blob is treated as absence, never as a failure:
	// the learner re-enters onboarding instead of crashing.
	Load(ctx context.Context) (*profile.UserProfile, error)

	// Save durably writes the profile, replacing any previous blob.
	Save(ctx context.Context, p *profile.UserProfile) error

	// Delete removes the stored profile.
	Delete(ctx context.Context) error
}

type profileRepo struct {
	db *sqlx.DB
}

type profileRow struct {
	Key       string    `db:"key"`
	Version   int       `db:"version"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *profileRepo) Load(ctx context.Context) (*profile.UserProfile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, "SELECT key, version, data, updated_at FROM profile WHERE key = ?", profileKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var p profile.UserProfile
	if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
		// Corrupt blob: recover by starting over rather than failing.
		fmt.Fprintf(os.Stderr, "warning: stored profile unreadable, starting fresh: %v\n", err)
		return nil, nil
	}
	p.Normalize()
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, p *profile.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profile (key, version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			version    = excluded.version,
			data       = excluded.data,
			updated_at = excluded.updated_at`,
		profileKey, profileVersion, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM profile WHERE key = ?", profileKey); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
