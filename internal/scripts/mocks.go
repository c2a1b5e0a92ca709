package scripts

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIngester is a mock implementation of Ingester using testify/mock.
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, paths []string) (IngestReport, error) {
	args := m.Called(ctx, paths)
	return args.Get(0).(IngestReport), args.Error(1)
}

// MockQuerier is a mock implementation of Querier using testify/mock.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Query(ctx context.Context, text string) (QueryResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(QueryResult), args.Error(1)
}

// MockInsighter is a mock implementation of Insighter using testify/mock.
type MockInsighter struct {
	mock.Mock
}

func (m *MockInsighter) Insights(ctx context.Context, text string) (Insights, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Insights), args.Error(1)
}

// MockPodcastGenerator is a mock implementation of PodcastGenerator using
// testify/mock.
type MockPodcastGenerator struct {
	mock.Mock
}

func (m *MockPodcastGenerator) Generate(ctx context.Context, text, voice string) (Podcast, error) {
	args := m.Called(ctx, text, voice)
	return args.Get(0).(Podcast), args.Error(1)
}
