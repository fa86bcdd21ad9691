// Package local provides a filesystem implementation of filestore.Store.
// Each key is one file directly inside the configured directory.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Driver is a directory-backed implementation of filestore.Store.
// Writes go through a temp file and rename, so readers never see a
// half-written file.
type Driver struct {
	dir string
}

// New returns a Driver rooted at cfg.Dir. The directory is created on the
// first Put, not here.
func New(cfg *filestore.Config) (*Driver, error) {
	if cfg.Dir == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "storage directory cannot be empty")
	}
	return &Driver{dir: cfg.Dir}, nil
}

// --- filestore.Store implementation ---

// Ping succeeds when the directory is usable: either it does not exist
// yet, or it exists and is a directory.
func (d *Driver) Ping(ctx context.Context) error {
	info, err := os.Stat(d.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return mapError(err, "ping failed")
	case !info.IsDir():
		return errs.New(errs.ErrKindInvalidInput, d.dir+" is not a directory")
	}
	return nil
}

func (d *Driver) Close() error {
	return nil
}

func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	if err := filestore.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, mapError(err, "failed to read "+key)
	}

	data, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, mapError(err, "failed to read "+key)
	}
	return data, nil
}

func (d *Driver) Put(ctx context.Context, key string, data []byte) error {
	if err := filestore.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return mapError(err, "failed to write "+key)
	}

	if err := os.MkdirAll(d.dir, dirPerm); err != nil {
		return mapError(err, "failed to create storage directory")
	}

	tmp, err := os.CreateTemp(d.dir, "."+key+".*")
	if err != nil {
		return mapError(err, "failed to write "+key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return mapError(err, "failed to write "+key)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return mapError(err, "failed to write "+key)
	}
	if err := tmp.Close(); err != nil {
		return mapError(err, "failed to write "+key)
	}
	if err := os.Rename(tmp.Name(), d.path(key)); err != nil {
		return mapError(err, "failed to write "+key)
	}
	return nil
}

func (d *Driver) path(key string) string {
	return filepath.Join(d.dir, key)
}

// mapError translates filesystem errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	default:
		return errs.Wrap(errs.ErrKindUnknown, msg, err)
	}
}
