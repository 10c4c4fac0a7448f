package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/events"
	"github.com/kindled/match-engine/internal/repository"
)

// Service implements the swipe ledger, match detection and the undo window.
// It contains the business logic on top of the repository, cache and event
// layers; the surrounding transport calls RecordSwipe and UndoLastSwipe.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	swipes   *repository.SwipeRepository
	matches  *repository.MatchRepository

	undoWindow time.Duration
}

// NewService creates the swipe service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		profiles:   repository.NewProfileRepository(appCtx.DB),
		swipes:     repository.NewSwipeRepository(appCtx.DB),
		matches:    repository.NewMatchRepository(appCtx.DB),
		undoWindow: appCtx.Cfg.Engine.UndoWindow,
	}
}

// Result reports the outcome of a recorded swipe.
type Result struct {
	Direction db.Direction
	// Match is set when the swipe completed a mutual right pair. It may be a
	// pre-existing row if a concurrent reciprocal swipe won the creation race.
	Match *db.Match
}

// RecordSwipe records a directional judgment actor -> target.
//
// Behavior:
//   - actor == target fails with ErrSelfAction; a missing or deleted target
//     fails with ErrNotFound; an unknown direction fails with a plain
//     validation error.
//   - right: conditional ledger insert (duplicate -> ErrDuplicateAction),
//     counter bumps, undo snapshot update, then reciprocity check.
//   - up: conditional maybe-list insert (duplicate -> ErrDuplicateAction) and
//     undo snapshot update.
//   - left: target's left counter only; left swipes are not reversible and do
//     not arm the undo window.
func (s *Service) RecordSwipe(ctx context.Context, actorID, targetID uint64, direction db.Direction, superLike bool) (*Result, error) {
	log := s.appCtx.Logger
	log.Debug("RecordSwipe called", "actor", actorID, "target", targetID, "direction", direction, "super", superLike)

	if !direction.Valid() {
		return nil, fmt.Errorf("unknown swipe direction %q", direction)
	}
	if actorID == targetID {
		return nil, apperr.ErrSelfAction
	}
	if _, err := s.profiles.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("target %d: %w", targetID, err)
	}

	now := time.Now().UTC()
	result := &Result{Direction: direction}

	switch direction {
	case db.DirectionRight:
		if err := s.swipes.InsertRight(ctx, actorID, targetID, superLike); err != nil {
			return nil, err
		}
		s.bumpCounters(ctx, targetID, superLike)
		if err := s.swipes.UpsertLastSwipe(ctx, actorID, targetID, direction, now); err != nil {
			return nil, err
		}
		match, err := s.CheckReciprocity(ctx, actorID, targetID)
		if err != nil {
			return nil, err
		}
		result.Match = match

	case db.DirectionUp:
		if err := s.swipes.AddMaybe(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		if err := s.swipes.UpsertLastSwipe(ctx, actorID, targetID, direction, now); err != nil {
			return nil, err
		}

	case db.DirectionLeft:
		if err := s.profiles.IncrementCounter(ctx, targetID, repository.ColLeftReceived); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// bumpCounters applies the eventually-consistent side effects of a right
// swipe. Failures are logged, not propagated: the ledger entry is the source
// of truth and counters tolerate drift.
func (s *Service) bumpCounters(ctx context.Context, targetID uint64, superLike bool) {
	if err := s.profiles.IncrementCounter(ctx, targetID, repository.ColRightReceived); err != nil {
		s.appCtx.Logger.Warn("right counter increment failed", "target", targetID, "err", err)
	}
	if superLike {
		if err := s.profiles.IncrementCounter(ctx, targetID, repository.ColSuperReceived); err != nil {
			s.appCtx.Logger.Warn("super counter increment failed", "target", targetID, "err", err)
		}
	}
	if err := s.appCtx.RedisCache.IncrAdmirerCount(ctx, targetID); err != nil {
		s.appCtx.Logger.Warn("admirer cache increment failed", "target", targetID, "err", err)
	}
}

// CheckReciprocity looks for a reverse right swipe and, when present, ensures
// a single Match exists for the unordered pair. Only the caller whose insert
// actually created the row publishes the match_created event, so a race
// between two reciprocal swipes publishes exactly once.
func (s *Service) CheckReciprocity(ctx context.Context, actorID, targetID uint64) (*db.Match, error) {
	reciprocal, err := s.swipes.HasRight(ctx, targetID, actorID)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		return nil, nil
	}

	match, created, err := s.matches.CreateIfAbsent(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if created {
		s.appCtx.Logger.Info("match created", "match_id", match.ID, "user_a", match.UserAID, "user_b", match.UserBID)
		ev := events.NewMatchCreated(match.ID, match.UserAID, match.UserBID)
		if err := s.appCtx.Publisher.Publish(ctx, ev); err != nil {
			// The Match row is durable; delivery is the transport's concern.
			s.appCtx.Logger.Warn("match event publish failed", "match_id", match.ID, "err", err)
		}
	}

	return match, nil
}

// UndoLastSwipe reverses the user's most recent reversible swipe and returns
// the restored target id.
//
// Behavior:
//   - no snapshot -> ErrNoRecentAction; snapshot older than the undo window ->
//     ErrUndoExpired (the snapshot is left armed in that case).
//   - right: the ledger entry is deleted; if it is already gone (e.g. removed
//     by a profile deletion) the undo still succeeds, since the end state is
//     reached. A Match created by the undone swipe is left intact.
//   - up: the maybe-list entry is removed, absence tolerated the same way.
//   - the snapshot is always cleared on success, so undo is single-shot.
func (s *Service) UndoLastSwipe(ctx context.Context, userID uint64) (uint64, error) {
	log := s.appCtx.Logger
	log.Debug("UndoLastSwipe called", "user", userID)

	snapshot, err := s.swipes.GetLastSwipe(ctx, userID)
	if err != nil {
		return 0, err
	}
	if snapshot == nil {
		return 0, apperr.ErrNoRecentAction
	}
	if time.Now().UTC().Sub(snapshot.CreatedAt) > s.undoWindow {
		return 0, apperr.ErrUndoExpired
	}

	switch snapshot.Direction {
	case db.DirectionRight:
		removed, err := s.swipes.DeleteRight(ctx, userID, snapshot.TargetID)
		if err != nil {
			return 0, err
		}
		if removed {
			if err := s.profiles.DecrementCounter(ctx, snapshot.TargetID, repository.ColRightReceived); err != nil {
				log.Warn("right counter decrement failed", "target", snapshot.TargetID, "err", err)
			}
			if err := s.appCtx.RedisCache.DecrAdmirerCount(ctx, snapshot.TargetID); err != nil {
				log.Warn("admirer cache decrement failed", "target", snapshot.TargetID, "err", err)
			}
		}
	case db.DirectionUp:
		if _, err := s.swipes.RemoveMaybe(ctx, userID, snapshot.TargetID); err != nil {
			return 0, err
		}
	}

	if err := s.swipes.ClearLastSwipe(ctx, userID); err != nil {
		return 0, err
	}

	log.Info("swipe undone", "user", userID, "target", snapshot.TargetID, "direction", snapshot.Direction)
	return snapshot.TargetID, nil
}

// MaybeList returns the target ids the user has marked "up", newest first.
func (s *Service) MaybeList(ctx context.Context, userID uint64) ([]uint64, error) {
	entries, err := s.swipes.ListMaybe(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.TargetID
	}
	return ids, nil
}

// Matches returns the user's matches, newest first.
func (s *Service) Matches(ctx context.Context, userID uint64) ([]db.Match, error) {
	return s.matches.ListForUser(ctx, userID)
}
