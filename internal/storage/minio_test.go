package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abduss/filegate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucketStub answers the two S3 calls EnsureBucket makes: HEAD and PUT on /<bucket>.
type bucketStub struct {
	mu       sync.Mutex
	exists   bool
	headCode int
	requests []string
}

func (s *bucketStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		switch {
		case s.headCode != 0:
			w.WriteHeader(s.headCode)
		case s.exists:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		s.exists = true
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *bucketStub) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func stubConfig(srv *httptest.Server) config.ObjectStoreConfig {
	return config.ObjectStoreConfig{
		Endpoint:        srv.URL,
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
		Bucket:          "uploads",
		Region:          "us-east-1",
	}
}

func TestNewObjectStoreClientStripsScheme(t *testing.T) {
	client, err := NewObjectStoreClient(config.ObjectStoreConfig{Endpoint: "http://localhost:9000", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", client.EndpointURL().Host)

	_, err = NewObjectStoreClient(config.ObjectStoreConfig{Endpoint: "https://"})
	assert.Error(t, err)
}

func TestEnsureBucketCreatesMissingBucket(t *testing.T) {
	stub := &bucketStub{}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	cfg := stubConfig(srv)
	client, err := NewObjectStoreClient(cfg)
	require.NoError(t, err)

	require.NoError(t, EnsureBucket(context.Background(), client, cfg.Bucket, cfg.Region))
	assert.Contains(t, stub.seen(), "HEAD /uploads/")
	assert.Contains(t, stub.seen(), "PUT /uploads/")
}

func TestEnsureBucketLeavesExistingBucket(t *testing.T) {
	stub := &bucketStub{exists: true}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	cfg := stubConfig(srv)
	client, err := NewObjectStoreClient(cfg)
	require.NoError(t, err)

	require.NoError(t, EnsureBucket(context.Background(), client, cfg.Bucket, cfg.Region))
	assert.Contains(t, stub.seen(), "HEAD /uploads/")
	assert.NotContains(t, stub.seen(), "PUT /uploads/")
}

func TestEnsureBucketReportsAccessErrors(t *testing.T) {
	stub := &bucketStub{headCode: http.StatusForbidden}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	cfg := stubConfig(srv)
	client, err := NewObjectStoreClient(cfg)
	require.NoError(t, err)

	err = EnsureBucket(context.Background(), client, cfg.Bucket, cfg.Region)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check bucket existence")
	assert.NotContains(t, stub.seen(), "PUT /uploads/")
}
