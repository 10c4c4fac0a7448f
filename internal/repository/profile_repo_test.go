package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindled/match-engine/internal/db"
	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/repository"
)

func newProfile(username string, lat, lng float64) *db.Profile {
	return &db.Profile{
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "x",
		Gender:       "female",
		Age:          30,
		Latitude:     lat,
		Longitude:    lng,
	}
}

func TestGetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(setupTestDB(t))

	_, err := repo.GetByID(ctx, 123)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCountersIncrementAndFloor(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(setupTestDB(t))

	p := newProfile("counters", 40.0, -74.0)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.IncrementCounter(ctx, p.ID, repository.ColRightReceived))
	require.NoError(t, repo.IncrementCounter(ctx, p.ID, repository.ColRightReceived))
	require.NoError(t, repo.DecrementCounter(ctx, p.ID, repository.ColRightReceived))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.RightReceived)

	// decrement floors at zero
	require.NoError(t, repo.DecrementCounter(ctx, p.ID, repository.ColRightReceived))
	require.NoError(t, repo.DecrementCounter(ctx, p.ID, repository.ColRightReceived))

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.RightReceived)
}

func TestFindCandidatesFilters(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewProfileRepository(gdb)

	near := newProfile("near", 40.01, -74.0)
	far := newProfile("far", 42.0, -74.0) // ~220km north
	hiatus := newProfile("hiatus", 40.01, -74.01)
	hiatus.OnHiatus = true
	young := newProfile("young", 40.02, -74.0)
	young.Age = 19
	self := newProfile("self", 40.0, -74.0)

	for _, p := range []*db.Profile{near, far, hiatus, young, self} {
		require.NoError(t, repo.Create(ctx, p))
	}

	rows, err := repo.FindCandidates(ctx, repository.CandidateQuery{
		ExcludeID: self.ID,
		Lat:       40.0,
		Lng:       -74.0,
		RadiusKm:  50,
		AgeMin:    21,
	})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, near.ID, rows[0].ID)
}

func TestFindCandidatesPrefetchKeepsNearest(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(setupTestDB(t))

	self := newProfile("self", 40.0, -74.0)
	require.NoError(t, repo.Create(ctx, self))

	// more rows in the box than the fetch limit, farthest first
	for i := 0; i < 5; i++ {
		p := newProfile(fmt.Sprintf("far%d", i), 40.45, -74.0) // ~50km north
		require.NoError(t, repo.Create(ctx, p))
	}
	near := newProfile("near", 40.009, -74.0) // ~1km north, inserted last
	require.NoError(t, repo.Create(ctx, near))

	rows, err := repo.FindCandidates(ctx, repository.CandidateQuery{
		ExcludeID:  self.ID,
		Lat:        40.0,
		Lng:        -74.0,
		RadiusKm:   100,
		FetchLimit: 3,
	})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, near.ID, rows[0].ID) // closest row survives the bound
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	profiles := repository.NewProfileRepository(gdb)
	swipes := repository.NewSwipeRepository(gdb)
	matches := repository.NewMatchRepository(gdb)

	p := newProfile("leaver", 40.0, -74.0)
	other := newProfile("stays", 40.0, -74.0)
	require.NoError(t, profiles.Create(ctx, p))
	require.NoError(t, profiles.Create(ctx, other))

	require.NoError(t, swipes.InsertRight(ctx, p.ID, other.ID, false))
	require.NoError(t, swipes.InsertRight(ctx, other.ID, p.ID, false))
	require.NoError(t, swipes.AddMaybe(ctx, other.ID, p.ID))
	require.NoError(t, swipes.UpsertLastSwipe(ctx, p.ID, other.ID, db.DirectionRight, time.Now().UTC()))
	_, _, err := matches.CreateIfAbsent(ctx, p.ID, other.ID)
	require.NoError(t, err)

	require.NoError(t, profiles.Delete(ctx, p.ID))

	_, err = profiles.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	has, err := swipes.HasRight(ctx, other.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, has)

	var maybeCount int64
	require.NoError(t, gdb.Model(&db.MaybeEntry{}).Count(&maybeCount).Error)
	assert.Equal(t, int64(0), maybeCount)

	snap, err := swipes.GetLastSwipe(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, snap)

	n, err := matches.CountForPair(ctx, p.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// soft delete keeps the row for audits
	var raw db.Profile
	require.NoError(t, gdb.Unscoped().First(&raw, p.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)

	// deleting a missing profile reports not found
	assert.ErrorIs(t, profiles.Delete(ctx, p.ID), apperr.ErrNotFound)
}
