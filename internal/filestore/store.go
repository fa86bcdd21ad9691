// Package filestore defines the storage interface behind dbee's settings
// files.
//
// Every stored file is a small document addressed by a flat key such as
// "connections.json", read in full and rewritten in full. Backends live
// in sub-packages (local, minio); callers depend only on this package.
//
// Usage:
//
//	store, err := local.New(filestore.DefaultConfig())
//	if err != nil { ... }
//	defer store.Close()
//
//	data, err := store.Get(ctx, "connections.json")
//	if errs.IsNotFound(err) { ... }
package filestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/dbee/internal/errs"
)

// Store is the single interface all file storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// Get returns the full content stored under key.
	// A missing key is reported as errs.ErrKindNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the content stored under key.
	Put(ctx context.Context, key string, data []byte) error
}

// ValidateKey rejects keys that are empty or could escape the store's
// namespace.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return errs.New(errs.ErrKindInvalidInput, "key cannot be empty")
	case key == "." || key == "..",
		strings.ContainsAny(key, `/\`),
		strings.ContainsRune(key, 0):
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid key %q", key))
	}
	return nil
}
