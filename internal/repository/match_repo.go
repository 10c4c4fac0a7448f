package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
)

// MatchRepository provides data access for Match rows.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// canonical orders an unordered pair so (a, b) and (b, a) address one row.
func canonical(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// CreateIfAbsent inserts a Match for the unordered pair exactly once.
//
// The unique index on (user_a_id, user_b_id) plus OnConflict DoNothing makes
// this safe under two concurrent reciprocal swipes: exactly one caller sees
// created == true, the other gets the winner's row back with created == false
// and no error.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b uint64) (*db.Match, bool, error) {
	ua, ub := canonical(a, b)

	match := db.Match{
		ID:      uuid.NewString(),
		UserAID: ua,
		UserBID: ub,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return &match, true, nil
	}

	existing, err := r.GetByPair(ctx, a, b)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByPair returns the Match for the unordered pair, or ErrNotFound.
func (r *MatchRepository) GetByPair(ctx context.Context, a, b uint64) (*db.Match, error) {
	ua, ub := canonical(a, b)

	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", ua, ub).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForUser returns every Match the user participates in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// CountForPair reports how many Match rows exist for the unordered pair.
// Exists for invariant checks; the schema guarantees it is 0 or 1.
func (r *MatchRepository) CountForPair(ctx context.Context, a, b uint64) (int64, error) {
	ua, ub := canonical(a, b)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", ua, ub).
		Count(&count).Error
	return count, err
}
