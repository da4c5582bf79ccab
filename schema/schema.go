// Package schema has the models and constants shared by all parts of swcache.
package schema

import (
	"net/http"
	"strings"
	"time"
)

// Request describes an outbound resource request handed to the cache manager.
type Request struct {
	Method string      // HTTP method; empty means GET
	Path   string      // Decoded request path, optionally with a raw query string
	Header http.Header // Request headers forwarded to the origin
	Body   []byte      // Request body forwarded to the origin
}

// Response is a stored or fetched resource.
type Response struct {
	Status   int            `json:"status"`
	Header   http.Header    `json:"header,omitempty"`
	Body     []byte         `json:"-"`
	StoredAt time.Time      `json:"stored_at"`
	Source   ResponseSource `json:"source"`
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// ContentType returns the Content-Type header value, if any.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Clone returns a deep copy so callers cannot mutate stored entries.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Header = r.Header.Clone()
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	return &clone
}

// CacheEntry is a key/response pair written into a named cache.
type CacheEntry struct {
	Key      string
	Hash     string
	Response *Response
}

// GetRequest builds a GET request for a manifest path.
func GetRequest(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

// IsGet reports whether the request may be answered from a cache.
func (r Request) IsGet() bool {
	return r.Method == "" || strings.EqualFold(r.Method, http.MethodGet)
}

// NormalizeKey turns a manifest path or request path into a cache key.
// Keys are absolute request paths: "index.html" becomes "/index.html"
// and "/" stays "/". Query strings are kept.
func NormalizeKey(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
