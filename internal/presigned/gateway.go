package presigned

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/abduss/filegate/internal/metrics"
	"github.com/minio/minio-go/v7"
)

// URLExpiry is the validity window of every pre-signed URL.
const URLExpiry = 5 * time.Minute

// ErrStoreUnavailable wraps any failure reported by the object store.
var ErrStoreUnavailable = errors.New("object store unavailable")

// objectClient is the subset of *minio.Client used by the gateway.
type objectClient interface {
	PresignHeader(ctx context.Context, method, bucketName, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Gateway issues scoped pre-signed URLs and performs direct deletes against the object store.
// No call is retried.
type Gateway struct {
	client objectClient
	ttl    time.Duration
}

// NewGateway wraps an object store client. *minio.Client satisfies objectClient.
func NewGateway(client objectClient) *Gateway {
	return &Gateway{client: client, ttl: URLExpiry}
}

// UploadURL returns a pre-signed PUT URL bound to the given content type.
func (g *Gateway) UploadURL(ctx context.Context, bucket, key, contentType string) (string, error) {
	headers := make(http.Header)
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	u, err := g.client.PresignHeader(ctx, http.MethodPut, bucket, key, g.ttl, nil, headers)
	if err != nil {
		return "", fmt.Errorf("%w: presign put %s: %v", ErrStoreUnavailable, key, err)
	}
	metrics.ObservePresigned("put")
	return u.String(), nil
}

// DownloadURL returns a pre-signed GET URL.
func (g *Gateway) DownloadURL(ctx context.Context, bucket, key string) (string, error) {
	u, err := g.client.PresignedGetObject(ctx, bucket, key, g.ttl, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("%w: presign get %s: %v", ErrStoreUnavailable, key, err)
	}
	metrics.ObservePresigned("get")
	return u.String(), nil
}

// DeleteObject removes the object. Not-found is not distinguished from other failures.
func (g *Gateway) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := g.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// ObjectExists reports whether the key is present. Only an explicit NoSuchKey
// answer counts as absent; any other failure is returned as an error.
func (g *Gateway) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := g.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %v", ErrStoreUnavailable, key, err)
}
