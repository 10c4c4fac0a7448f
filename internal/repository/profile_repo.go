package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/geo"
)

// ProfileRepository provides data access for Profile rows, including the
// geospatial candidate prefilter used by discovery.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByID returns the profile, or ErrNotFound. Soft-deleted rows are invisible.
func (r *ProfileRepository) GetByID(ctx context.Context, id uint64) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateAttributes persists the mutable profile attributes.
func (r *ProfileRepository) UpdateAttributes(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"gender":     profile.Gender,
			"age":        profile.Age,
			"tags":       profile.Tags,
			"preference": profile.Preference,
			"ethnicity":  profile.Ethnicity,
			"education":  profile.Education,
			"smoker":     profile.Smoker,
		}).Error
}

// UpdateLocation moves the profile's geolocation point.
func (r *ProfileRepository) UpdateLocation(ctx context.Context, id uint64, lat, lng float64) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lng}).Error
}

// SetHiatus toggles the visibility suppression flag.
func (r *ProfileRepository) SetHiatus(ctx context.Context, id uint64, on bool) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		Update("on_hiatus", on).Error
}

// Boost gives the profile ranking priority until the given instant.
func (r *ProfileRepository) Boost(ctx context.Context, id uint64, until time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		Update("boosted_until", until).Error
}

// Counter columns. Increments are single UPDATE statements so concurrent
// swipes never lose updates.
const (
	ColViews         = "views"
	ColRightReceived = "right_received"
	ColLeftReceived  = "left_received"
	ColSuperReceived = "super_received"
)

// IncrementCounter bumps one of the cumulative profile counters by one.
func (r *ProfileRepository) IncrementCounter(ctx context.Context, id uint64, column string) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// DecrementCounter lowers a counter by one, flooring at zero.
func (r *ProfileRepository) DecrementCounter(ctx context.Context, id uint64, column string) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("CASE WHEN "+column+" > 0 THEN "+column+" - 1 ELSE 0 END")).Error
}

// Delete soft-deletes the profile and hard-deletes its dependent rows: ledger
// entries and maybe memberships on either side, the undo snapshot, and every
// Match the user participates in.
func (r *ProfileRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("actor_id = ? OR target_id = ?", id, id).Delete(&db.Swipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR target_id = ?", id, id).Delete(&db.MaybeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&db.LastSwipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", id, id).Delete(&db.Match{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&db.Profile{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

// CandidateQuery is the store-level slice of a discovery filter: everything
// expressible as SQL predicates. Tag matching and exact distance ranking
// happen in the service on the prefiltered rows.
type CandidateQuery struct {
	ExcludeID uint64
	Lat       float64
	Lng       float64
	RadiusKm  float64

	AgeMin     int
	AgeMax     int
	Gender     string
	Preference string
	Ethnicity  string
	Education  string
	Smoker     *bool

	FetchLimit int
}

// FindCandidates returns visible profiles inside the bounding box of the
// radius, filtered by the optional attribute predicates and ordered by an
// approximate degree-space distance from the center. Rows outside the exact
// radius may still be returned; callers apply the haversine check.
func (r *ProfileRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]db.Profile, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(q.Lat, q.Lng, q.RadiusKm)

	query := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id <> ?", q.ExcludeID).
		Where("on_hiatus = ?", false).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng)

	if q.AgeMin > 0 {
		query = query.Where("age >= ?", q.AgeMin)
	}
	if q.AgeMax > 0 {
		query = query.Where("age <= ?", q.AgeMax)
	}
	if q.Gender != "" {
		query = query.Where("gender = ?", q.Gender)
	}
	if q.Preference != "" {
		query = query.Where("preference = ?", q.Preference)
	}
	if q.Ethnicity != "" {
		query = query.Where("ethnicity = ?", q.Ethnicity)
	}
	if q.Education != "" {
		query = query.Where("education = ?", q.Education)
	}
	if q.Smoker != nil {
		query = query.Where("smoker = ?", *q.Smoker)
	}
	// Order by squared-degree distance so a bounded fetch keeps the closest
	// rows; the exact haversine ranking downstream then sees the true nearest
	// candidates even when the box holds more rows than the limit.
	query = query.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL:                "(latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?)",
		Vars:               []interface{}{q.Lat, q.Lat, q.Lng, q.Lng},
		WithoutParentheses: true,
	}})
	if q.FetchLimit > 0 {
		query = query.Limit(q.FetchLimit)
	}

	var profiles []db.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
