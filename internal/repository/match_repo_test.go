package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/kindled/match-engine/internal/errors"
	"github.com/kindled/match-engine/internal/repository"
)

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	first, created, err := repo.CreateIfAbsent(ctx, 7, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(3), first.UserAID) // canonical ordering
	assert.Equal(t, uint64(7), first.UserBID)

	// same pair in the opposite order resolves to the existing row
	second, created, err := repo.CreateIfAbsent(ctx, 3, 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, err := repo.CountForPair(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetByPairNotFound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	_, err := repo.GetByPair(ctx, 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	_, _, err := repo.CreateIfAbsent(ctx, 1, 2)
	require.NoError(t, err)
	_, _, err = repo.CreateIfAbsent(ctx, 3, 1)
	require.NoError(t, err)
	_, _, err = repo.CreateIfAbsent(ctx, 2, 3)
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = repo.ListForUser(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, matches, 0)
}
