package admirer

import (
	"context"
	"time"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/db"
	"github.com/kindled/match-engine/internal/repository"
)

// Admirer is one entry of a liked-you list.
type Admirer struct {
	UserID    uint64
	SwipedAt  time.Time
	SuperLike bool
}

// Page is a cursor-paginated slice of admirers.
type Page struct {
	Admirers  []Admirer
	NextToken *string
}

// Service exposes the liked-you views over the swipe ledger: who right-swiped
// a user, who among them is not matched yet, and a cache-first count.
type Service struct {
	appCtx *app.AppContext
	swipes *repository.SwipeRepository
}

// NewService creates the admirer service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		swipes: repository.NewSwipeRepository(appCtx.DB),
	}
}

// ListAdmirers returns users who right-swiped the given user, newest first,
// cursor-paginated.
func (s *Service) ListAdmirers(ctx context.Context, userID uint64, token *string, limit int) (*Page, error) {
	if limit <= 0 || limit > s.appCtx.Cfg.Engine.PageSize {
		limit = s.appCtx.Cfg.Engine.PageSize
	}
	swipes, next, err := s.swipes.ListAdmirers(ctx, userID, token, limit)
	if err != nil {
		return nil, err
	}
	return buildPage(swipes, next), nil
}

// ListNewAdmirers returns admirers the user has not matched with yet.
func (s *Service) ListNewAdmirers(ctx context.Context, userID uint64, token *string, limit int) (*Page, error) {
	if limit <= 0 || limit > s.appCtx.Cfg.Engine.PageSize {
		limit = s.appCtx.Cfg.Engine.PageSize
	}
	swipes, next, err := s.swipes.ListNewAdmirers(ctx, userID, token, limit)
	if err != nil {
		return nil, err
	}
	return buildPage(swipes, next), nil
}

// CountAdmirers returns how many users right-swiped the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis (admirers:count:userID).
//  2. On miss, falls back to a DB count.
//  3. Fills the cache with a 1h TTL on the way out.
func (s *Service) CountAdmirers(ctx context.Context, userID uint64) (int64, error) {
	if n, ok, err := s.appCtx.RedisCache.GetAdmirerCount(ctx, userID); err == nil && ok {
		return n, nil
	}

	count, err := s.swipes.CountAdmirers(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.appCtx.RedisCache.SetAdmirerCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("admirer count cache fill failed", "user", userID, "err", err)
	}
	return count, nil
}

func buildPage(swipes []db.Swipe, next *string) *Page {
	page := &Page{NextToken: next}
	for _, sw := range swipes {
		page.Admirers = append(page.Admirers, Admirer{
			UserID:    sw.ActorID,
			SwipedAt:  sw.CreatedAt,
			SuperLike: sw.SuperLike,
		})
	}
	return page
}
