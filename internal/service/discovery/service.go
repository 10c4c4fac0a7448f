package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/geo"
	"github.com/kindled/match-engine/internal/repository"
)

// defaultRadiusKm applies when a filter gives a center but no max distance.
const defaultRadiusKm = 100

// Filter is the flat set of optional candidate criteria. Only the center
// coordinate is mandatory.
type Filter struct {
	Lat      *float64 `validate:"required,latitude"`
	Lng      *float64 `validate:"required,longitude"`
	RadiusKm float64  `validate:"gte=0"`

	AgeMin     int `validate:"gte=0"`
	AgeMax     int `validate:"gte=0"`
	Gender     string
	Tags       []string // any-match
	Preference string
	Ethnicity  string
	Education  string
	Smoker     *bool

	// Limit is clamped to the configured page size; zero means a full page.
	Limit int `validate:"gte=0"`
}

// Candidate is a ranked discovery result.
type Candidate struct {
	Profile    db.Profile
	DistanceKm float64
}

// Service resolves discovery queries: geospatial radius plus attribute
// filtering over visible profiles, ranked nearest-first with boost priority.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	validate *validator.Validate
}

// NewService creates the discovery service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		validate: validator.New(),
	}
}

// FindCandidates returns a ranked, bounded page of profiles for the requester.
//
// Behavior:
//   - A filter without a valid center coordinate fails with ErrInvalidFilter.
//   - The requester's own profile and hiatus profiles are always excluded;
//     already-swiped profiles are not (callers may layer that on).
//   - Ordering is by effective distance: actual distance scaled by the boost
//     factor while a profile's boost is active, ties broken by id.
//   - Each invocation increments the requester's view counter.
//
// The query runs under the configured discovery timeout.
func (s *Service) FindCandidates(ctx context.Context, requesterID uint64, filter Filter) ([]Candidate, error) {
	log := s.appCtx.Logger
	log.Debug("FindCandidates called", "requester", requesterID, "filter", fmt.Sprintf("%+v", filter))

	if err := s.validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFilter, err)
	}

	requester, err := s.profiles.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("requester %d: %w", requesterID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.appCtx.Cfg.Engine.DiscoveryTimeout)
	defer cancel()

	radius := filter.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}

	limit := filter.Limit
	if limit <= 0 || limit > s.appCtx.Cfg.Engine.PageSize {
		limit = s.appCtx.Cfg.Engine.PageSize
	}

	rows, err := s.profiles.FindCandidates(ctx, repository.CandidateQuery{
		ExcludeID:  requester.ID,
		Lat:        *filter.Lat,
		Lng:        *filter.Lng,
		RadiusKm:   radius,
		AgeMin:     filter.AgeMin,
		AgeMax:     filter.AgeMax,
		Gender:     filter.Gender,
		Preference: filter.Preference,
		Ethnicity:  filter.Ethnicity,
		Education:  filter.Education,
		Smoker:     filter.Smoker,
		// Headroom for rows inside the bounding box but outside the radius,
		// and for tag culling below.
		FetchLimit: limit * 10,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ranked := make([]rankedCandidate, 0, len(rows))
	for _, p := range rows {
		dist := geo.DistanceKm(*filter.Lat, *filter.Lng, p.Latitude, p.Longitude)
		if dist > radius {
			continue
		}
		if len(filter.Tags) > 0 && !anyTagMatch(filter.Tags, p.TagList()) {
			continue
		}
		effective := dist
		if p.Boosted(now) {
			effective *= s.appCtx.Cfg.Engine.BoostFactor
		}
		ranked = append(ranked, rankedCandidate{
			Candidate: Candidate{Profile: p, DistanceKm: dist},
			score:     effective,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].Profile.ID < ranked[j].Profile.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Candidate, len(ranked))
	for i, rc := range ranked {
		out[i] = rc.Candidate
	}

	// Documented side effect: one view per invocation, not idempotent.
	if err := s.profiles.IncrementCounter(ctx, requesterID, repository.ColViews); err != nil {
		log.Warn("view counter increment failed", "requester", requesterID, "err", err)
	}

	log.Debug("FindCandidates result", "requester", requesterID, "count", len(out))
	return out, nil
}

type rankedCandidate struct {
	Candidate
	score float64
}

func anyTagMatch(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
