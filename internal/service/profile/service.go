package profile

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/db"
	"github.com/kindled/match-engine/internal/repository"
)

// Service covers the profile store: registration, attribute and location
// updates, visibility flags, and deletion with its cascade.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
}

// NewService creates the profile service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
	}
}

// Registration carries the fields collected at sign-up.
type Registration struct {
	Username   string
	Email      string
	Password   string
	Gender     string
	Age        int
	Latitude   float64
	Longitude  float64
	Tags       string
	Preference string
	Ethnicity  string
	Education  string
	Smoker     bool
}

// Register creates a profile with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, reg Registration) (*db.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &db.Profile{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Gender:       reg.Gender,
		Age:          reg.Age,
		Latitude:     reg.Latitude,
		Longitude:    reg.Longitude,
		Tags:         reg.Tags,
		Preference:   reg.Preference,
		Ethnicity:    reg.Ethnicity,
		Education:    reg.Education,
		Smoker:       reg.Smoker,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("profile registered", "id", profile.ID, "username", profile.Username)
	return profile, nil
}

// Get returns the profile by id.
func (s *Service) Get(ctx context.Context, id uint64) (*db.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateAttributes persists the mutable filter attributes of a profile.
func (s *Service) UpdateAttributes(ctx context.Context, p *db.Profile) error {
	if _, err := s.profiles.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.profiles.UpdateAttributes(ctx, p)
}

// UpdateLocation moves the profile's geolocation point.
func (s *Service) UpdateLocation(ctx context.Context, id uint64, lat, lng float64) error {
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return err
	}
	return s.profiles.UpdateLocation(ctx, id, lat, lng)
}

// SetHiatus suppresses or restores the profile's discovery visibility.
func (s *Service) SetHiatus(ctx context.Context, id uint64, on bool) error {
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return err
	}
	return s.profiles.SetHiatus(ctx, id, on)
}

// Boost grants ranking priority for the given duration.
func (s *Service) Boost(ctx context.Context, id uint64, d time.Duration) error {
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return err
	}
	return s.profiles.Boost(ctx, id, time.Now().UTC().Add(d))
}

// Delete soft-deletes the account and cascades to its swipes, maybe entries,
// undo snapshot and matches.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.appCtx.Logger.Info("profile deleted", "id", id)
	return nil
}
