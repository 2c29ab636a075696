package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPublish_SequentialKeysAreUnique(t *testing.T) {
	store := newMemoryStore()
	p := NewPublisher(store, nil, PublisherConfig{Bucket: "hv"})
	p.now = fixedClock(time.UnixMilli(1700000000000))

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		a, err := p.Publish(context.Background(), minimalPDF, "12345", "hoja_vida")
		require.NoError(t, err)
		assert.False(t, seen[a.StorageKey], a.StorageKey)
		seen[a.StorageKey] = true
	}
	assert.True(t, seen["12345/hoja_vida_1700000000000.pdf"])
	assert.True(t, seen["12345/hoja_vida_1700000000004.pdf"])
}

func TestPublish_StoresContentTypeAndMetadata(t *testing.T) {
	store := newMemoryStore()
	p := NewPublisher(store, nil, PublisherConfig{Bucket: "hv"})

	a, err := p.Publish(context.Background(), minimalPDF, "12345", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.StorageKey, "12345/document_"))
	opts := store.options[a.StorageKey]
	assert.Equal(t, ContentTypePDF, opts.ContentType)
	assert.Equal(t, "12345", opts.Metadata["subject-id"])
	assert.Equal(t, "hojavida", opts.Metadata["source"])
	assert.NotEmpty(t, opts.Metadata["created-at"])
	assert.Equal(t, int64(len(minimalPDF)), a.SizeBytes)
}

func TestPublish_SignedURL(t *testing.T) {
	p := NewPublisher(newMemoryStore(), stubSigner{url: "https://signed.example/"}, PublisherConfig{Bucket: "hv", URLExpiry: time.Hour})
	p.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	a, err := p.Publish(context.Background(), minimalPDF, "12345", "hoja_vida")
	require.NoError(t, err)

	assert.True(t, a.Signed)
	assert.Equal(t, "https://signed.example/"+a.StorageKey, a.AccessURL)
	require.NotNil(t, a.ExpiresAt)
	assert.Equal(t, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), *a.ExpiresAt)
}

func TestPublish_SigningFailureFallsBackToPublicURL(t *testing.T) {
	p := NewPublisher(newMemoryStore(), stubSigner{err: errors.New("no credentials")}, PublisherConfig{
		Bucket:     "hojas_vida_logyser",
		PublicHost: "storage.googleapis.com",
	})

	a, err := p.Publish(context.Background(), minimalPDF, "12345", "hoja_vida")
	require.NoError(t, err)

	assert.False(t, a.Signed)
	assert.Nil(t, a.ExpiresAt)
	assert.Equal(t, "https://storage.googleapis.com/hojas_vida_logyser/"+a.StorageKey, a.AccessURL)
}

func TestPublish_EmptyDataIsUploadFailure(t *testing.T) {
	store := newMemoryStore()
	p := NewPublisher(store, nil, PublisherConfig{Bucket: "hv"})

	_, err := p.Publish(context.Background(), nil, "12345", "hoja_vida")

	assert.True(t, errx.IsCode(err, CodeUploadFailed))
	assert.Empty(t, store.objects)
}

func TestPublish_EmptySubjectIsValidationError(t *testing.T) {
	p := NewPublisher(newMemoryStore(), nil, PublisherConfig{Bucket: "hv"})

	_, err := p.Publish(context.Background(), minimalPDF, " ", "hoja_vida")

	assert.True(t, errx.IsCode(err, CodeValidation))
}

func TestPublish_WriteFailure(t *testing.T) {
	store := newMemoryStore()
	store.writeErr = errors.New("403 forbidden")
	p := NewPublisher(store, nil, PublisherConfig{Bucket: "hv"})

	_, err := p.Publish(context.Background(), minimalPDF, "12345", "hoja_vida")

	require.True(t, errx.IsCode(err, CodeUploadFailed))
	e, _ := errx.As(err)
	assert.Contains(t, e.Details["storage_key"], "12345/hoja_vida_")
}

func TestPublicURL_EscapesSegments(t *testing.T) {
	p := NewPublisher(newMemoryStore(), nil, PublisherConfig{Bucket: "b", PublicHost: "h"})
	assert.Equal(t, "https://h/b/12345/foto%20perfil.jpg", p.PublicURL("12345/foto perfil.jpg"))
}

func TestPublicURL_IncludesStoragePrefix(t *testing.T) {
	p := NewPublisher(newMemoryStore(), nil, PublisherConfig{Bucket: "b", PublicHost: "h", Prefix: "/prod/hv/"})
	assert.Equal(t, "https://h/b/prod/hv/12345/hoja_vida_1.pdf", p.PublicURL("12345/hoja_vida_1.pdf"))
	assert.Equal(t, "https://h/b/prod/hv/12345/hoja_vida_1.pdf", p.PublicURL("/12345/hoja_vida_1.pdf"))
}
