// Package minio provides a MinIO implementation of filestore.Store.
//
// Usage:
//
//	cfg := &filestore.Config{
//		Provider:  filestore.ProviderMinIO,
//		Endpoint:  "localhost:9000",
//		AccessKey: "minioadmin",
//		SecretKey: "minioadmin",
//		Bucket:    "dbee",
//	}
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const contentType = "application/json"

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	bucket string
	region string
}

// New connects to MinIO using the provided Config and returns a Driver.
// The bucket is created when it does not exist yet.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	if cfg.Bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "bucket cannot be empty")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	d := &Driver{client: client, bucket: cfg.Bucket, region: cfg.Region}

	if err := d.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) ensureBucket(ctx context.Context) error {
	ok, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "failed to check bucket "+d.bucket)
	}
	if ok {
		return nil
	}

	err = d.client.MakeBucket(ctx, d.bucket, miniogo.MakeBucketOptions{Region: d.region})
	if err != nil {
		// Another process may have created it in between.
		if resp := miniogo.ToErrorResponse(err); resp.Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return mapError(err, "failed to create bucket "+d.bucket)
	}
	return nil
}

// --- filestore.Store implementation ---

// Ping verifies the MinIO server is reachable and the bucket is visible.
func (d *Driver) Ping(ctx context.Context) error {
	ok, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.New(errs.ErrKindNotFound, "bucket "+d.bucket+" does not exist")
	}
	return nil
}

// Close is a no-op for MinIO; the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// Get downloads the whole object stored under key.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	if err := filestore.ValidateKey(key); err != nil {
		return nil, err
	}

	obj, err := d.client.GetObject(ctx, d.bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get "+key)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err, "failed to get "+key)
	}
	return data, nil
}

// Put uploads data as the object stored under key, replacing any
// previous version.
func (d *Driver) Put(ctx context.Context, key string, data []byte) error {
	if err := filestore.ValidateKey(key); err != nil {
		return err
	}

	_, err := d.client.PutObject(ctx, d.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return mapError(err, "failed to put "+key)
	}
	return nil
}
