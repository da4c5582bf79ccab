package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/huangsam/swcache/schema"
)

// Intercept answers a request cache-first. It waits while an activation is
// pending, then serves a GET from any cache holding its key and otherwise
// fetches from the origin without storing the response.
func (m *Manager) Intercept(ctx context.Context, req schema.Request) (*schema.Response, error) {
	if err := m.waitGate(ctx); err != nil {
		return nil, err
	}

	key := schema.NormalizeKey(req.Path)
	if req.IsGet() {
		cached, ok, err := m.store.Match(ctx, key)
		switch {
		case err != nil:
			Logger().Warn("cache lookup failed, using network", zap.String("key", key), zap.Error(err))
		case ok:
			Logger().Debug("cache hit", zap.String("key", key))
			cached.Source = schema.SourceCache
			return cached, nil
		}
	}

	Logger().Debug("cache miss", zap.String("key", key), zap.String("method", req.Method))
	req.Path = key
	resp, err := m.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInterceptFetch, key, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s: origin returned no response", ErrInterceptFetch, key)
	}
	resp.Source = schema.SourceNetwork
	return resp, nil
}
