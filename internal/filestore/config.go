package filestore

import (
	"os"
	"path/filepath"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderMinIO Provider = "minio"
)

// Config holds all settings needed to reach a file storage backend.
type Config struct {
	// Provider is the storage backend. Empty means ProviderLocal.
	Provider Provider

	// Dir is the directory the local backend reads and writes.
	Dir string

	// Endpoint is the host:port of the MinIO server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket holds every object the application stores. It is created
	// on first use when missing.
	Bucket string
}

// DefaultConfig returns a local store rooted at ~/.dbee.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderLocal,
		Dir:      DefaultDir(),
		Bucket:   "dbee",
	}
}

// DefaultDir is ~/.dbee, or .dbee in the working directory when the home
// directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dbee"
	}
	return filepath.Join(home, ".dbee")
}
