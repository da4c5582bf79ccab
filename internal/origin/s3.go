package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// S3API is the part of the S3 client the fetcher needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads resources from objects under a bucket prefix.
type S3Fetcher struct {
	client S3API
	bucket string
	prefix string
}

var _ contract.Fetcher = &S3Fetcher{} // Compile-time check

// NewS3Fetcher returns a fetcher for s3://bucket/prefix.
func NewS3Fetcher(client S3API, bucket, prefix string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket, prefix: prefix}
}

// LoadS3Client builds an S3 client from the shared AWS config chain.
// Empty region and profile inherit AWS_REGION, AWS_PROFILE and ~/.aws/config.
func LoadS3Client(ctx context.Context, region, profile string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Fetch reads the object behind the request path. A missing key is a 404 response.
func (f *S3Fetcher) Fetch(ctx context.Context, req schema.Request) (*schema.Response, error) {
	if !req.IsGet() {
		return simpleResponse(http.StatusMethodNotAllowed), nil
	}
	key := path.Join(f.prefix, objectName(req.Path))

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return simpleResponse(http.StatusNotFound), nil
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", f.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", f.bucket, key, err)
	}

	header := http.Header{}
	if ct := aws.ToString(out.ContentType); ct != "" {
		header.Set("Content-Type", ct)
	}
	if etag := aws.ToString(out.ETag); etag != "" {
		header.Set("ETag", etag)
	}
	if out.LastModified != nil {
		header.Set("Last-Modified", out.LastModified.UTC().Format(http.TimeFormat))
	}
	header.Set("Content-Length", strconv.Itoa(len(data)))

	return &schema.Response{
		Status: http.StatusOK,
		Header: header,
		Body:   data,
	}, nil
}
