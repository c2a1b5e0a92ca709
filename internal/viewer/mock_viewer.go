package viewer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAdapter is a mock implementation of Adapter using testify/mock.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) SelectedText(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAdapter) GoToPage(ctx context.Context, page int) (bool, error) {
	args := m.Called(ctx, page)
	return args.Bool(0), args.Error(1)
}

// MockTransport is a mock implementation of Transport using testify/mock.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Play(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) Pause(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransport) Seek(ctx context.Context, position float64) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

func (m *MockTransport) Duration(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}
