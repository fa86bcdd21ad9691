package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filestore.ProviderLocal, cfg.FileStore().Provider)
	assert.Equal(t, int32(5), cfg.Pool().MaxConns)
	assert.Equal(t, 60*time.Second, cfg.Assistant.Timeout)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errs.IsNotFound(err))
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbee.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
log:
  level: debug
  format: console
database:
  maxConns: 2
  connectTimeout: 3s
storage:
  provider: minio
  minio:
    endpoint: localhost:9000
    accessKey: minioadmin
    secretKey: minioadmin
assistant:
  timeout: 90s
  openaiEndpoint: http://localhost:1234/v1/chat/completions
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset fields keep their defaults")
	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "console", cfg.Logger().Format)

	pool := cfg.Pool()
	assert.Equal(t, int32(2), pool.MaxConns)
	assert.Equal(t, 3*time.Second, pool.ConnectTimeout)
	assert.Equal(t, 30*time.Minute, pool.MaxConnLifetime)

	fs := cfg.FileStore()
	assert.Equal(t, filestore.ProviderMinIO, fs.Provider)
	assert.Equal(t, "localhost:9000", fs.Endpoint)
	assert.Equal(t, "dbee", fs.Bucket)

	assert.Equal(t, 90*time.Second, cfg.Assistant.Timeout)
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", cfg.Assistant.OpenAIEndpoint)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse(nil, cfg))
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind errs.ErrKind
	}{
		{"malformed", "server: [", errs.ErrKindSerialization},
		{"unknown key", "server:\n  port: 80\n", errs.ErrKindSerialization},
		{"bad duration", "database:\n  connectTimeout: soon\n", errs.ErrKindSerialization},
		{"bad level", "log:\n  level: loud\n", errs.ErrKindInvalidInput},
		{"bad format", "log:\n  format: xml\n", errs.ErrKindInvalidInput},
		{"empty addr", "server:\n  addr: \"\"\n", errs.ErrKindInvalidInput},
		{"zero max conns", "database:\n  maxConns: 0\n", errs.ErrKindInvalidInput},
		{"min above max", "database:\n  maxConns: 2\n  minConns: 3\n", errs.ErrKindInvalidInput},
		{"unknown provider", "storage:\n  provider: s3\n", errs.ErrKindInvalidInput},
		{"minio without endpoint", "storage:\n  provider: minio\n", errs.ErrKindInvalidInput},
		{"zero assistant timeout", "assistant:\n  timeout: 0s\n", errs.ErrKindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.yaml), Default())
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}
