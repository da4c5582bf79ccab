package origin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves GetObject from a map of key to body.
type fakeS3 struct {
	objects map[string]string
	err     error
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	modified := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(strings.NewReader(body)),
		ContentType:  aws.String("text/html"),
		ETag:         aws.String(`"etag"`),
		LastModified: &modified,
	}, nil
}

func TestS3Fetcher(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"site/v1/index.html": "<html></html>",
	}}
	f := NewS3Fetcher(client, "bucket", "site/v1")

	resp, err := f.Fetch(t.Context(), schema.GetRequest("/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<html></html>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType())
	assert.Equal(t, `"etag"`, resp.Header.Get("ETag"))
	assert.NotEmpty(t, resp.Header.Get("Last-Modified"))

	resp, err = f.Fetch(t.Context(), schema.GetRequest("/missing.js"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	assert.Equal(t, []string{"site/v1/index.html", "site/v1/missing.js"}, client.keys)

	resp, err = f.Fetch(t.Context(), schema.Request{Method: http.MethodDelete, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
}

func TestS3FetcherError(t *testing.T) {
	f := NewS3Fetcher(&fakeS3{err: errors.New("access denied")}, "bucket", "")
	_, err := f.Fetch(t.Context(), schema.GetRequest("/index.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/index.html")
}
