package origin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// HTTPFetcher fetches resources relative to a base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

var _ contract.Fetcher = &HTTPFetcher{} // Compile-time check

// NewHTTPFetcher validates the base URL. A nil client uses http.DefaultClient.
func NewHTTPFetcher(base string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid origin URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin URL %q must use http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin URL %q has no host", base)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{base: u, client: client}, nil
}

// resolve joins the request path and query onto the base URL.
// Request paths are decoded; one that still carries valid escapes is decoded
// first so the path is escaped exactly once on the wire.
func (f *HTTPFetcher) resolve(requestPath string) string {
	p, query, _ := strings.Cut(requestPath, "?")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	u := *f.base
	u.Path = strings.TrimSuffix(f.base.Path, "/") + "/" + strings.TrimPrefix(p, "/")
	u.RawPath = ""
	u.RawQuery = query
	return u.String()
}

// Fetch performs the request. Any HTTP status is a response; only transport failures are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, req schema.Request) (*schema.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := f.resolve(req.Path)

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", target, err)
	}

	return &schema.Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
	}, nil
}
