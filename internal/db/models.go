package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Direction is a swipe judgment: right (like), left (skip), up (maybe).
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
	DirectionUp    Direction = "up"
)

// Valid reports whether d is one of the three known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionRight, DirectionLeft, DirectionUp:
		return true
	}
	return false
}

// Profile table. Soft-deleted rows stay in place so ledger references remain
// resolvable for audits, but never surface through queries.
type Profile struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	Gender     string  `gorm:"size:16;not null"`
	Age        int     `gorm:"not null"`
	Latitude   float64 `gorm:"not null;index:idx_profiles_lat_lng,priority:1"`
	Longitude  float64 `gorm:"not null;index:idx_profiles_lat_lng,priority:2"`
	Tags       string  `gorm:"size:512"` // comma-joined interest tags
	Preference string  `gorm:"size:32"`
	Ethnicity  string  `gorm:"size:32"`
	Education  string  `gorm:"size:64"`
	Smoker     bool    `gorm:"not null;default:false"`

	OnHiatus     bool `gorm:"not null;default:false"`
	BoostedUntil *time.Time

	Views         uint64 `gorm:"not null;default:0"`
	RightReceived uint64 `gorm:"not null;default:0"`
	LeftReceived  uint64 `gorm:"not null;default:0"`
	SuperReceived uint64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TagList splits the comma-joined Tags column.
func (p *Profile) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	out := parts[:0]
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Boosted reports whether the profile has an active boost at the given instant.
func (p *Profile) Boosted(now time.Time) bool {
	return p.BoostedUntil != nil && p.BoostedUntil.After(now)
}

// Swipe is a right-direction ledger entry.
//
// Composite PK (ActorID, TargetID) enforces at most one right swipe per
// ordered pair; the insert path relies on it as a conditional-insert-or-fail
// primitive. Left swipes are counter-only and never land here; up swipes live
// in maybe_entries.
type Swipe struct {
	ActorID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	TargetID  uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_swipes_target_created,priority:1"`
	SuperLike bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_swipes_target_created,priority:2,sort:desc"`
}

// MaybeEntry is membership of a target in a user's maybe list.
// Composite PK makes duplicate inserts fail the same way swipes do.
type MaybeEntry struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	TargetID  uint64    `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match is the unordered pair record, stored canonically with UserAID <
// UserBID. The unique index on the pair is what makes concurrent reciprocal
// swipes converge on a single row.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserAID   uint64    `gorm:"not null;uniqueIndex:idx_matches_pair,priority:1"`
	UserBID   uint64    `gorm:"not null;uniqueIndex:idx_matches_pair,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// LastSwipe is the per-user undo snapshot: the most recent reversible swipe.
// Upserted on every right/up swipe, cleared by a successful undo.
type LastSwipe struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false"`
	TargetID  uint64    `gorm:"not null"`
	Direction Direction `gorm:"size:8;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
