package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/utils/pagination"
)

// SwipeRepository provides data access for the swipe ledger, maybe lists and
// per-user last-swipe snapshots.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// InsertRight records a right swipe actor -> target.
//
// The composite PK on (actor_id, target_id) makes this a conditional insert:
// a second right swipe on the same pair affects zero rows and is reported as
// ErrDuplicateAction.
func (r *SwipeRepository) InsertRight(ctx context.Context, actorID, targetID uint64, superLike bool) error {
	swipe := db.Swipe{
		ActorID:   actorID,
		TargetID:  targetID,
		SuperLike: superLike,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&swipe)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrDuplicateAction
	}
	return nil
}

// DeleteRight removes the ledger entry for (actor, target). Returns whether a
// row actually existed; a missing row is not an error so undo can treat the
// end state as achieved.
func (r *SwipeRepository) DeleteRight(ctx context.Context, actorID, targetID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Delete(&db.Swipe{})
	return res.RowsAffected > 0, res.Error
}

// HasRight checks whether actor has a right swipe recorded on target.
func (r *SwipeRepository) HasRight(ctx context.Context, actorID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// AddMaybe inserts target into the user's maybe list.
// Duplicate membership is reported as ErrDuplicateAction.
func (r *SwipeRepository) AddMaybe(ctx context.Context, userID, targetID uint64) error {
	entry := db.MaybeEntry{UserID: userID, TargetID: targetID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrDuplicateAction
	}
	return nil
}

// RemoveMaybe drops target from the user's maybe list.
func (r *SwipeRepository) RemoveMaybe(ctx context.Context, userID, targetID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ?", userID, targetID).
		Delete(&db.MaybeEntry{})
	return res.RowsAffected > 0, res.Error
}

// ListMaybe returns the user's maybe list, newest first.
func (r *SwipeRepository) ListMaybe(ctx context.Context, userID uint64) ([]db.MaybeEntry, error) {
	var entries []db.MaybeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, target_id DESC").
		Find(&entries).Error
	return entries, err
}

// UpsertLastSwipe replaces the user's undo snapshot with the given action.
func (r *SwipeRepository) UpsertLastSwipe(ctx context.Context, userID, targetID uint64, direction db.Direction, at time.Time) error {
	snapshot := db.LastSwipe{
		UserID:    userID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"target_id", "direction", "created_at"}),
		}).
		Create(&snapshot).Error
}

// GetLastSwipe returns the user's undo snapshot, or nil when none exists.
func (r *SwipeRepository) GetLastSwipe(ctx context.Context, userID uint64) (*db.LastSwipe, error) {
	var snapshot db.LastSwipe
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearLastSwipe removes the user's undo snapshot, making undo single-shot.
func (r *SwipeRepository) ClearLastSwipe(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&db.LastSwipe{}).Error
}

// ListAdmirers returns right swipes received by the user, newest first.
// Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) ListAdmirers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ?", userID)
	return r.pageAdmirers(query, paginationToken, limit)
}

// ListNewAdmirers returns right swipes received by the user from actors the
// user has not matched with yet, newest first.
func (r *SwipeRepository) ListNewAdmirers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM matches m
				WHERE (m.user_a_id = s.actor_id AND m.user_b_id = ?)
				   OR (m.user_a_id = ? AND m.user_b_id = s.actor_id)
			)`, userID, userID)
	return r.pageAdmirers(query, paginationToken, limit)
}

// pageAdmirers applies ordering, cursoring and the limit+1 page probe shared
// by the admirer list queries.
func (r *SwipeRepository) pageAdmirers(
	query *gorm.DB,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query = query.
		Order("s.created_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	if cursor.UserID > 0 && cursor.SwipedUnix > 0 {
		ts := time.UnixMilli(cursor.SwipedUnix)
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var swipes []db.Swipe
	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:     last.ActorID,
			SwipedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountAdmirers returns how many users right-swiped the given user.
// Used in conjunction with the Redis cache (DB is the fallback).
func (r *SwipeRepository) CountAdmirers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("target_id = ?", userID).
		Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
