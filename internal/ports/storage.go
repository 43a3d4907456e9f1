// Package ports declares the contracts between the clipforge core and its
// infrastructure adapters.
package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// ObjectKey is the provider-side key: the original key on localfs, the
	// real file id on gdrive (needed to read/delete later).
	ObjectKey string
	// URL is durably retrievable by a client polling the job record.
	URL  string
	Size int64
}

// StorageProvider moves artifacts into durable object storage. PutObject must
// be idempotent under key reuse: writing the same key twice overwrites.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
	DeleteObject(ctx context.Context, objectKey string) error
}
