package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"no such key", miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusOK}, errs.ErrKindNotFound},
		{"no such bucket", miniogo.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"access denied", miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied},
		{"bad signature", miniogo.ErrorResponse{Code: "SignatureDoesNotMatch"}, errs.ErrKindPermissionDenied},
		{"bad key", miniogo.ErrorResponse{Code: "KeyTooLongError"}, errs.ErrKindInvalidInput},
		{"slow down", miniogo.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, errs.ErrKindTimeout},
		{"status only 404", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"status only 401", miniogo.ErrorResponse{StatusCode: http.StatusUnauthorized}, errs.ErrKindPermissionDenied},
		{"status only 400", miniogo.ErrorResponse{StatusCode: http.StatusBadRequest}, errs.ErrKindInvalidInput},
		{"server error", miniogo.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}, errs.ErrKindConnectionFailed},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), errs.ErrKindTimeout},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "failed")
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
		})
	}

	assert.Nil(t, mapError(nil, "failed"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{Endpoint: "localhost:9000"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestNew_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	endpoint := srv.Listener.Addr().String()
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, &filestore.Config{
		Endpoint:  endpoint,
		AccessKey: "k",
		SecretKey: "s",
		Bucket:    "dbee",
	})
	require.Error(t, err)
	kind := errs.KindOf(err)
	assert.Contains(t, []errs.ErrKind{errs.ErrKindConnectionFailed, errs.ErrKindTimeout}, kind)
}

// TestLive_PutGet runs against a real MinIO server when DBEE_TEST_MINIO_ENDPOINT
// is set (credentials default to minioadmin/minioadmin).
func TestLive_PutGet(t *testing.T) {
	endpoint := os.Getenv("DBEE_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("DBEE_TEST_MINIO_ENDPOINT not set")
	}
	ctx := context.Background()

	d, err := New(ctx, &filestore.Config{
		Provider:  filestore.ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: envOr("DBEE_TEST_MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("DBEE_TEST_MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    "dbee-test",
	})
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Ping(ctx))

	_, err = d.Get(ctx, "missing.json")
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, d.Put(ctx, "editor-tabs.json", []byte(`{"connections":{}}`)))
	got, err := d.Get(ctx, "editor-tabs.json")
	require.NoError(t, err)
	assert.Equal(t, `{"connections":{}}`, string(got))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
