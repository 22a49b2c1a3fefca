package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/avatar-forge/internal/ratelimit"
	mockratelimit "github.com/KirkDiggler/avatar-forge/internal/ratelimit/mock"
)

func TestLimiter_Allow(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockratelimit.NewMockStore(ctrl)
	limiter := ratelimit.New(&ratelimit.Config{Store: store, MaxRequests: 2, Window: time.Minute})
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().Increment(ctx, "user-1", time.Minute).Return(1, nil),
		store.EXPECT().Increment(ctx, "user-1", time.Minute).Return(2, nil),
		store.EXPECT().Increment(ctx, "user-1", time.Minute).Return(3, nil),
	)

	assert.True(t, limiter.Allow(ctx, "user-1"))
	assert.True(t, limiter.Allow(ctx, "user-1"))
	assert.False(t, limiter.Allow(ctx, "user-1"))
	assert.Equal(t, time.Minute, limiter.Window())
}

func TestLimiter_StoreFailureAllows(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockratelimit.NewMockStore(ctrl)
	limiter := ratelimit.New(&ratelimit.Config{Store: store, MaxRequests: 1, Window: time.Minute})

	store.EXPECT().Increment(gomock.Any(), "user-1", time.Minute).Return(0, errors.New("redis down"))

	assert.True(t, limiter.Allow(context.Background(), "user-1"))
}

func TestLimiter_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockratelimit.NewMockStore(ctrl)
	// No calls expected
	limiter := ratelimit.New(&ratelimit.Config{Store: store})

	assert.True(t, limiter.Allow(context.Background(), "user-1"))
}

func TestLimiter_EmptyKeySkipsCounting(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockratelimit.NewMockStore(ctrl)
	limiter := ratelimit.New(&ratelimit.Config{Store: store, MaxRequests: 1, Window: time.Minute})

	assert.True(t, limiter.Allow(context.Background(), ""))
}

func TestNew_RequiresWindow(t *testing.T) {
	assert.Panics(t, func() {
		ratelimit.New(&ratelimit.Config{MaxRequests: 1})
	})
}
