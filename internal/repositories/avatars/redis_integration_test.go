//go:build integration

package avatars_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/repositories/avatars"
	"github.com/KirkDiggler/avatar-forge/internal/testutils"
)

func TestRedisRepository_Integration(t *testing.T) {
	// Requires Redis on TEST_REDIS_ADDR or localhost:6379
	runRedisContract(t, testutils.CreateTestRedisClientOrSkip(t))
}

func TestRedisRepository_Container(t *testing.T) {
	runRedisContract(t, testutils.StartRedisContainer(t))
}

func runRedisContract(t *testing.T, client redis.UniversalClient) {
	repo := avatars.NewRedisRepository(&avatars.RedisRepoConfig{Client: client})
	ctx := context.Background()

	character := avatarDomain.NewCharacter()
	character.Name = "Pip"
	character.Equipped["hats"] = []string{"hat1"}

	t.Run("save and get", func(t *testing.T) {
		record := &avatars.Record{ID: "a1", OwnerID: "owner-1", Character: character}
		require.NoError(t, repo.Save(ctx, record))

		got, err := repo.Get(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "owner-1", got.OwnerID)
		assert.Equal(t, character, got.Character)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("latest follows the last save", func(t *testing.T) {
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, repo.Save(ctx, &avatars.Record{ID: "a2", OwnerID: "owner-1", Character: avatarDomain.NewCharacter()}))

		latest, err := repo.GetLatestByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "a2", latest.ID)

		list, err := repo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a2", list[0].ID)
	})

	t.Run("delete clears latest", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "a2"))

		_, err := repo.Get(ctx, "a2")
		assert.True(t, apperr.IsNotFound(err))

		_, err = repo.GetLatestByOwner(ctx, "owner-1")
		assert.True(t, apperr.IsNotFound(err))

		list, err := repo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "a1", list[0].ID)
	})
}
