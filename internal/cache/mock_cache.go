package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pdf-reader/internal/scripts"
)

// MockCache is a mock implementation of Cache using testify/mock.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetQuery(ctx context.Context, key string) (*scripts.QueryResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scripts.QueryResult), args.Error(1)
}

func (m *MockCache) SetQuery(ctx context.Context, key string, result *scripts.QueryResult, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
