package document

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
)

const (
	ContentTypePDF   = "application/pdf"
	DefaultKeyPrefix = "document"
	sourceTag        = "hojavida"
)

// PublishedArtifact describes an object written to the store
type PublishedArtifact struct {
	StorageKey string     `json:"storage_key"`
	AccessURL  string     `json:"access_url"`
	SizeBytes  int64      `json:"size_bytes"`
	Signed     bool       `json:"signed"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	PageCount  int        `json:"page_count,omitempty"`
}

// Object is a caller-keyed upload
type Object struct {
	Key         string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type PublisherConfig struct {
	// Bucket and PublicHost build the fallback https://<host>/<bucket>/<key>
	Bucket     string
	PublicHost string
	// Prefix is the store's base prefix, prepended to keys in public URLs
	Prefix     string
	URLExpiry  time.Duration
}

// Publisher writes objects and resolves their access URLs
type Publisher struct {
	fs     fsx.FileWriter
	signer fsx.URLSigner
	cfg    PublisherConfig
	now    func() time.Time

	mu         sync.Mutex
	lastMillis int64
}

// NewPublisher creates a publisher. signer may be nil, in which case every
// URL is the public fallback.
func NewPublisher(fs fsx.FileWriter, signer fsx.URLSigner, cfg PublisherConfig) *Publisher {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 7 * 24 * time.Hour
	}
	if cfg.PublicHost == "" {
		cfg.PublicHost = "storage.googleapis.com"
	}
	return &Publisher{
		fs:     fs,
		signer: signer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// nextMillis returns the current unix milliseconds, bumped past the previous
// value so keys from one publisher never repeat
func (p *Publisher) nextMillis() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	ms := p.now().UnixMilli()
	if ms <= p.lastMillis {
		ms = p.lastMillis + 1
	}
	p.lastMillis = ms
	return ms
}

// StorageKey builds <subjectID>/<prefix>_<unixMillis>.pdf
func StorageKey(subjectID, prefix string, millis int64) string {
	return subjectID + "/" + prefix + "_" + strconv.FormatInt(millis, 10) + ".pdf"
}

// Publish uploads a PDF for subjectID under a fresh timestamped key
func (p *Publisher) Publish(ctx context.Context, data []byte, subjectID, keyPrefix string) (*PublishedArtifact, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrValidation().WithDetail("field", "subject_id")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	created := p.now().UTC()
	return p.PublishObject(ctx, Object{
		Key:         StorageKey(subjectID, keyPrefix, p.nextMillis()),
		Data:        data,
		ContentType: ContentTypePDF,
		Metadata: map[string]string{
			"created-at": created.Format(time.RFC3339),
			"subject-id": subjectID,
			"source":     sourceTag,
		},
	})
}

// PublishObject uploads obj in one shot and resolves its access URL. Signing
// failures degrade to the public URL and are never returned.
func (p *Publisher) PublishObject(ctx context.Context, obj Object) (*PublishedArtifact, error) {
	if obj.Key == "" {
		return nil, ErrValidation().WithDetail("field", "key")
	}
	if len(obj.Data) == 0 {
		return nil, ErrUploadFailed(errors.New("refusing to store an empty object")).
			WithDetail("storage_key", obj.Key)
	}

	opts := []fsx.WriteOption{fsx.WithMetadata(obj.Metadata)}
	if obj.ContentType != "" {
		opts = append(opts, fsx.WithContentType(obj.ContentType))
	}
	if err := p.fs.WriteFile(ctx, obj.Key, obj.Data, opts...); err != nil {
		return nil, ErrUploadFailed(err).WithDetail("storage_key", obj.Key)
	}

	artifact := &PublishedArtifact{
		StorageKey: obj.Key,
		SizeBytes:  int64(len(obj.Data)),
	}
	p.resolveURL(ctx, artifact)

	logx.Infof("Published %s (%d bytes, signed=%t)", artifact.StorageKey, artifact.SizeBytes, artifact.Signed)
	return artifact, nil
}

func (p *Publisher) resolveURL(ctx context.Context, a *PublishedArtifact) {
	if p.signer != nil {
		signed, err := p.signer.SignedURL(ctx, a.StorageKey, p.cfg.URLExpiry)
		if err == nil && signed != "" {
			expires := p.now().Add(p.cfg.URLExpiry).UTC()
			a.AccessURL = signed
			a.Signed = true
			a.ExpiresAt = &expires
			return
		}
		if err == nil {
			err = errors.New("signer returned an empty url")
		}
		logx.Warnf("Signed URL unavailable for %s, using public URL: %v", a.StorageKey, err)
	}
	a.AccessURL = p.PublicURL(a.StorageKey)
}

// PublicURL builds https://<host>/<bucket>/[<prefix>/]<key>
func (p *Publisher) PublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if prefix := strings.Trim(p.cfg.Prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://%s/%s/%s", p.cfg.PublicHost, p.cfg.Bucket, strings.Join(segments, "/"))
}
