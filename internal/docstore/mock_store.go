package docstore

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, name string, content []byte) (SavedFile, error) {
	args := m.Called(ctx, name, content)
	return args.Get(0).(SavedFile), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]FileInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]FileInfo), args.Error(1)
}

func (m *MockStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) OpenAudio(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) AbsolutePath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}
