package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client reads objects from an S3-compatible bucket, such as the listing
// fixtures published next to the property data exports.
type Client struct {
	bucket string
	client *minio.Client
	logger *slog.Logger
}

// NewClient configures a client using the provided endpoint and credentials.
func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*Client, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &Client{bucket: bucket, client: minioClient, logger: logger}, nil
}

// Open streams the object stored under key. The caller closes the reader.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return nil, errors.New("s3: object key is required")
	}
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("s3: stat %s/%s: %w", c.bucket, key, err)
	}
	if c.logger != nil {
		c.logger.Info("s3 object opened", "bucket", c.bucket, "key", key, "size", info.Size)
	}
	return obj, nil
}

// Location renders bucket/key for logs.
func (c *Client) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", c.bucket, strings.TrimLeft(key, "/"))
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
