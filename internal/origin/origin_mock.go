package origin

import (
	"context"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of Fetcher for testing.
type MockFetcher struct {
	mock.Mock
}

var _ contract.Fetcher = &MockFetcher{} // Compile-time check

// Fetch implements the Fetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, req schema.Request) (*schema.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*schema.Response)
	return resp, args.Error(1)
}
