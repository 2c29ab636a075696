package fsx

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist is returned by readers when the object is missing
var ErrNotExist = errors.New("fsx: file does not exist")

// WriteOptions describes how an object is stored
type WriteOptions struct {
	ContentType string
	Metadata    map[string]string
}

// WriteOption mutates WriteOptions
type WriteOption func(*WriteOptions)

// WithContentType sets the stored content type
func WithContentType(contentType string) WriteOption {
	return func(o *WriteOptions) { o.ContentType = contentType }
}

// WithMetadata attaches descriptive metadata to the stored object
func WithMetadata(metadata map[string]string) WriteOption {
	return func(o *WriteOptions) {
		if o.Metadata == nil {
			o.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			o.Metadata[k] = v
		}
	}
}

// ApplyOptions folds opts into a WriteOptions value
func ApplyOptions(opts ...WriteOption) WriteOptions {
	var o WriteOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FileReader reads whole objects
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// FileWriter writes whole objects in a single shot
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte, opts ...WriteOption) error
	WriteFileStream(ctx context.Context, path string, r io.Reader, opts ...WriteOption) error
}

// FileSystem is the object store abstraction used by services
type FileSystem interface {
	FileReader
	FileWriter
	DeleteFile(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Join(elem ...string) string
}

// URLSigner produces time-limited read URLs for stored objects
type URLSigner interface {
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
