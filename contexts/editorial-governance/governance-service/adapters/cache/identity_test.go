package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type identityMock struct {
	mock.Mock
}

func (m *identityMock) IsReviewer(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *identityMock) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestIdentityCacheMemoizesAnswers(t *testing.T) {
	ctx := context.Background()
	upstream := &identityMock{}
	upstream.On("IsReviewer", ctx, "rev-1").Return(true, nil).Once()
	upstream.On("IsAdmin", ctx, "rev-1").Return(false, nil).Once()

	cache := NewIdentityCache(upstream, time.Minute)
	for i := 0; i < 3; i++ {
		reviewer, err := cache.IsReviewer(ctx, " rev-1 ")
		require.NoError(t, err)
		assert.True(t, reviewer)
		admin, err := cache.IsAdmin(ctx, "rev-1")
		require.NoError(t, err)
		assert.False(t, admin)
	}
	upstream.AssertExpectations(t)
}

func TestIdentityCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	upstream := &identityMock{}
	upstream.On("IsAdmin", ctx, "admin-1").Return(false, errors.New("directory down")).Once()
	upstream.On("IsAdmin", ctx, "admin-1").Return(true, nil).Once()

	cache := NewIdentityCache(upstream, time.Minute)
	_, err := cache.IsAdmin(ctx, "admin-1")
	require.Error(t, err)

	admin, err := cache.IsAdmin(ctx, "admin-1")
	require.NoError(t, err)
	assert.True(t, admin)
	upstream.AssertNumberOfCalls(t, "IsAdmin", 2)
}

func TestIdentityCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	upstream := &identityMock{}
	upstream.On("IsReviewer", ctx, "rev-2").Return(false, nil).Once()
	upstream.On("IsReviewer", ctx, "rev-2").Return(true, nil).Once()

	cache := NewIdentityCache(upstream, 0)
	reviewer, err := cache.IsReviewer(ctx, "rev-2")
	require.NoError(t, err)
	assert.False(t, reviewer)

	cache.Invalidate("rev-2")
	reviewer, err = cache.IsReviewer(ctx, "rev-2")
	require.NoError(t, err)
	assert.True(t, reviewer)
	upstream.AssertExpectations(t)
}
