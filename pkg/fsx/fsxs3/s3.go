package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3FileSystem stores objects in an S3 bucket, or in any S3-interoperable
// store reachable through the client's endpoint (GCS XML API, MinIO).
type S3FileSystem struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	basePrefix string
}

var (
	_ fsx.FileSystem = (*S3FileSystem)(nil)
	_ fsx.URLSigner  = (*S3FileSystem)(nil)
)

// NewS3FileSystem creates a file system rooted at basePrefix inside bucket.
// An empty basePrefix stores keys exactly as given.
func NewS3FileSystem(client *s3.Client, bucket, basePrefix string) *S3FileSystem {
	return &S3FileSystem{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     bucket,
		basePrefix: strings.Trim(basePrefix, "/"),
	}
}

// Bucket returns the bucket name
func (fs *S3FileSystem) Bucket() string {
	return fs.bucket
}

func (fs *S3FileSystem) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if fs.basePrefix == "" {
		return p
	}
	return path.Join(fs.basePrefix, p)
}

// Join joins path elements with forward slashes
func (fs *S3FileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// WriteFile uploads data in a single PutObject call
func (fs *S3FileSystem) WriteFile(ctx context.Context, p string, data []byte, opts ...fsx.WriteOption) error {
	o := fsx.ApplyOptions(opts...)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(fs.bucket),
		Key:           aws.String(fs.key(p)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if o.ContentType != "" {
		input.ContentType = aws.String(o.ContentType)
	}
	if len(o.Metadata) > 0 {
		input.Metadata = o.Metadata
	}

	if _, err := fs.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", p, err)
	}
	return nil
}

// WriteFileStream buffers r and uploads it in one shot
func (fs *S3FileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader, opts ...fsx.WriteOption) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stream for %s: %w", p, err)
	}
	return fs.WriteFile(ctx, p, data, opts...)
}

// ReadFile downloads a whole object
func (fs *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", fsx.ErrNotExist, p)
		}
		return nil, fmt.Errorf("get object %s: %w", p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", p, err)
	}
	return data, nil
}

// DeleteFile removes an object
func (fs *S3FileSystem) DeleteFile(ctx context.Context, p string) error {
	_, err := fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", p, err)
	}
	return nil
}

// Exists checks for an object with HeadObject
func (fs *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", p, err)
}

// SignedURL presigns a GET request for the object
func (fs *S3FileSystem) SignedURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	req, err := fs.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", p, err)
	}
	return req.URL, nil
}
