// Package origin fetches resources from where the web application is hosted:
// an HTTP server, a local build directory or an S3 bucket.
package origin

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// Options tune how an origin is reached.
type Options struct {
	Timeout    time.Duration // HTTP client timeout; 0 means none
	AWSRegion  string
	AWSProfile string
}

// New returns the fetcher matching the origin's spelling:
// http(s)://host/base, s3://bucket/prefix, or a directory path.
func New(ctx context.Context, origin string, opts Options) (contract.Fetcher, error) {
	switch contract.OriginKindOf(origin) {
	case schema.HTTPOrigin:
		return NewHTTPFetcher(origin, &http.Client{Timeout: opts.Timeout})
	case schema.S3Origin:
		bucket, prefix := contract.SplitS3Origin(origin)
		if bucket == "" {
			return nil, fmt.Errorf("S3 origin %q has no bucket", origin)
		}
		client, err := LoadS3Client(ctx, opts.AWSRegion, opts.AWSProfile)
		if err != nil {
			return nil, err
		}
		return NewS3Fetcher(client, bucket, prefix), nil
	default:
		info, err := os.Stat(origin)
		if err != nil {
			return nil, fmt.Errorf("origin directory %q is not readable: %w", origin, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("origin %q is not a directory", origin)
		}
		return NewDirFetcher(os.DirFS(origin)), nil
	}
}

// objectName maps a request path onto a slash-separated object name.
// The root and directory paths resolve to their index.html. Query strings are dropped.
func objectName(requestPath string) string {
	p, _, _ := strings.Cut(requestPath, "?")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// simpleResponse builds a bodyless response such as a 404.
func simpleResponse(status int) *schema.Response {
	body := []byte(http.StatusText(status))
	return &schema.Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
		Body:   body,
	}
}
