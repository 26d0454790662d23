package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Driver:          "s3",
		Bucket:          "test-bucket",
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignTTL:      10 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("access key without secret returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set together")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, testStorageConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "test-bucket", s.Bucket())
		assert.Equal(t, 10*time.Minute, s.presignExpiration)
	})

	t.Run("zero presign ttl falls back to default", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PresignTTL = 0
		s, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})
}

func TestS3ObjectStorage_PresignDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, testStorageConfig())
	require.NoError(t, err)

	t.Run("signs a path-style url with attachment disposition", func(t *testing.T) {
		before := time.Now()
		u, expiresAt, err := s.PresignDownload(ctx, "firms/abc/documents/x.pdf", "contract.pdf", 5*time.Minute)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(u, "http://localhost:9000/test-bucket/firms/abc/documents/x.pdf?"))
		assert.Contains(t, u, "X-Amz-Signature=")
		assert.Contains(t, u, "X-Amz-Expires=300")
		assert.Contains(t, u, "response-content-disposition=")
		assert.WithinDuration(t, before.Add(5*time.Minute), expiresAt, 2*time.Second)
	})

	t.Run("uses configured ttl when none given", func(t *testing.T) {
		u, _, err := s.PresignDownload(ctx, "k", "", 0)
		require.NoError(t, err)
		assert.Contains(t, u, "X-Amz-Expires=600")
		assert.NotContains(t, u, "response-content-disposition")
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.PresignDownload(ctx, "", "a.pdf", time.Minute)
		assert.ErrorIs(t, err, ErrKeyRequired)
	})
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, testStorageConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Put(ctx, "", bytes.NewReader(nil), 0, "text/plain"), ErrKeyRequired)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrKeyRequired)
	_, err = s.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = s.Open(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

// Runs against a local MinIO when LEX_TEST_S3_ENDPOINT is set
func TestIntegration_S3RoundTrip(t *testing.T) {
	endpoint := os.Getenv("LEX_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("LEX_TEST_S3_ENDPOINT not set")
	}
	ctx := context.Background()
	cfg := testStorageConfig()
	cfg.Endpoint = endpoint
	cfg.Bucket = "lexdesk-integration"
	cfg.AccessKeyID = os.Getenv("LEX_TEST_S3_ACCESS_KEY")
	cfg.SecretAccessKey = os.Getenv("LEX_TEST_S3_SECRET_KEY")

	s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx))

	key := "integration/round-trip.txt"
	data := []byte("engagement letter")
	require.NoError(t, s.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "text/plain"))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
