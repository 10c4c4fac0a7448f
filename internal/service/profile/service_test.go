package profile_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kindled/match-engine/internal/app"
	"github.com/kindled/match-engine/internal/cache"
	"github.com/kindled/match-engine/internal/config"
	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/events"
	"github.com/kindled/match-engine/internal/service/profile"
)

func setupService(t *testing.T) (*profile.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg), events.NewRecorder(), logger)

	return profile.NewService(appCtx), gdb
}

func register(t *testing.T, svc *profile.Service, username string) *db.Profile {
	t.Helper()
	p, err := svc.Register(context.Background(), profile.Registration{
		Username:  username,
		Email:     username + "@test.com",
		Password:  "hunter22",
		Gender:    "female",
		Age:       28,
		Latitude:  40.0,
		Longitude: -74.0,
		Tags:      "hiking,jazz",
	})
	require.NoError(t, err)
	return p
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := setupService(t)

	p := register(t, svc, "ada")
	assert.NotZero(t, p.ID)
	assert.NotEqual(t, "hunter22", p.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("hunter22")))
	assert.Equal(t, []string{"hiking", "jazz"}, p.TagList())
}

func TestGetUnknownProfile(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateAttributesAndLocation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	p := register(t, svc, "ada")

	p.Age = 29
	p.Tags = "hiking,jazz,pottery"
	p.Education = "masters"
	require.NoError(t, svc.UpdateAttributes(ctx, p))
	require.NoError(t, svc.UpdateLocation(ctx, p.ID, 41.5, -73.2))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, got.Age)
	assert.Equal(t, "masters", got.Education)
	assert.InDelta(t, 41.5, got.Latitude, 1e-9)
	assert.InDelta(t, -73.2, got.Longitude, 1e-9)

	missing := &db.Profile{Age: 30}
	missing.ID = 999
	assert.ErrorIs(t, svc.UpdateAttributes(ctx, missing), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateLocation(ctx, 999, 1, 1), apperr.ErrNotFound)
}

func TestHiatusAndBoost(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	p := register(t, svc, "ada")

	require.NoError(t, svc.SetHiatus(ctx, p.ID, true))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.OnHiatus)

	require.NoError(t, svc.SetHiatus(ctx, p.ID, false))
	require.NoError(t, svc.Boost(ctx, p.ID, time.Hour))

	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BoostedUntil)
	assert.True(t, got.Boosted(time.Now().UTC()))
	assert.False(t, got.Boosted(time.Now().UTC().Add(2*time.Hour)))

	assert.ErrorIs(t, svc.SetHiatus(ctx, 999, true), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Boost(ctx, 999, time.Hour), apperr.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	ada := register(t, svc, "ada")
	bob := register(t, svc, "bob")

	require.NoError(t, gdb.Create(&db.Swipe{ActorID: ada.ID, TargetID: bob.ID}).Error)
	require.NoError(t, gdb.Create(&db.Swipe{ActorID: bob.ID, TargetID: ada.ID}).Error)
	require.NoError(t, gdb.Create(&db.MaybeEntry{UserID: ada.ID, TargetID: bob.ID}).Error)
	require.NoError(t, gdb.Create(&db.LastSwipe{UserID: ada.ID, TargetID: bob.ID, Direction: db.DirectionRight}).Error)
	require.NoError(t, gdb.Create(&db.Match{ID: uuid.NewString(), UserAID: ada.ID, UserBID: bob.ID}).Error)

	require.NoError(t, svc.Delete(ctx, ada.ID))

	_, err := svc.Get(ctx, ada.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var n int64
	require.NoError(t, gdb.Model(&db.Swipe{}).Where("actor_id = ? OR target_id = ?", ada.ID, ada.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, gdb.Model(&db.MaybeEntry{}).Where("user_id = ?", ada.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, gdb.Model(&db.LastSwipe{}).Where("user_id = ?", ada.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, gdb.Model(&db.Match{}).Where("user_a_id = ? OR user_b_id = ?", ada.ID, ada.ID).Count(&n).Error)
	assert.Zero(t, n)

	_, err = svc.Get(ctx, bob.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 999), apperr.ErrNotFound)
}
