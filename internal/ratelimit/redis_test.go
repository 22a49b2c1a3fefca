package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/avatar-forge/internal/ratelimit"
)

func TestRedisStore_Increment(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(client)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("ratelimit:user-1").SetVal(4)
	mock.ExpectExpireNX("ratelimit:user-1", time.Minute).SetVal(false)
	mock.ExpectTxPipelineExec()

	count, err := store.Increment(context.Background(), "user-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_IncrementError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(client)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("ratelimit:user-1").SetErr(errors.New("connection refused"))

	_, err := store.Increment(context.Background(), "user-1", time.Minute)
	assert.Error(t, err)
}

func TestRedisStore_Reset(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(client)

	mock.ExpectDel("ratelimit:user-1").SetVal(1)

	require.NoError(t, store.Reset(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisStore_RequiresClient(t *testing.T) {
	assert.Panics(t, func() {
		ratelimit.NewRedisStore(nil)
	})
}
