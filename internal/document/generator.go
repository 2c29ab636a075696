package document

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
)

const LogoField = "LOGO_URL"

// Renderer fills a template with fields
type Renderer interface {
	Render(ctx context.Context, data TemplateContext) (string, error)
}

// HTMLRasterizer turns HTML into PDF bytes
type HTMLRasterizer interface {
	Rasterize(ctx context.Context, html string) ([]byte, error)
}

// ArtifactPublisher stores PDF bytes for a subject
type ArtifactPublisher interface {
	Publish(ctx context.Context, data []byte, subjectID, keyPrefix string) (*PublishedArtifact, error)
}

// PageCounter inspects a rendered PDF
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

type GeneratorConfig struct {
	DefaultLogoURL string
	// RasterRetries is the number of extra rasterization attempts after a
	// timeout or engine failure
	RasterRetries int
	RetryBackoff  time.Duration
}

// Generator runs render, rasterize and publish in sequence
type Generator struct {
	renderer   Renderer
	rasterizer HTMLRasterizer
	publisher  ArtifactPublisher
	inspector  PageCounter
	cfg        GeneratorConfig
}

func NewGenerator(renderer Renderer, rasterizer HTMLRasterizer, publisher ArtifactPublisher, cfg GeneratorConfig) *Generator {
	if cfg.RasterRetries < 0 {
		cfg.RasterRetries = 0
	}
	return &Generator{
		renderer:   renderer,
		rasterizer: rasterizer,
		publisher:  publisher,
		cfg:        cfg,
	}
}

// WithPageCounter enables page counting of rendered documents. Inspection
// problems are logged and never fail generation.
func (g *Generator) WithPageCounter(pc PageCounter) *Generator {
	g.inspector = pc
	return g
}

// GenerateAndPublish renders fields into a PDF and uploads it under
// <subjectID>/<keyPrefix>_<millis>.pdf. Nothing is persisted beyond the
// object store write.
func (g *Generator) GenerateAndPublish(ctx context.Context, subjectID string, fields TemplateContext, keyPrefix string) (*PublishedArtifact, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrValidation().WithDetail("field", "subject_id")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	data := fields.Clone()
	if data.Value(LogoField) == "" {
		data[LogoField] = g.cfg.DefaultLogoURL
	}

	start := time.Now()
	log := logx.With("subject_id", subjectID, "prefix", keyPrefix)

	html, err := g.renderer.Render(ctx, data)
	if err != nil {
		return nil, stageError(err, subjectID, "render")
	}

	pdf, err := g.rasterize(ctx, subjectID, html)
	if err != nil {
		return nil, stageError(err, subjectID, "rasterize")
	}

	pages := g.countPages(subjectID, pdf)

	artifact, err := g.publisher.Publish(ctx, pdf, subjectID, keyPrefix)
	if err != nil {
		return nil, stageError(err, subjectID, "publish")
	}
	artifact.PageCount = pages

	log.Infof("Generated %s (%d bytes, %d pages) in %s", artifact.StorageKey, artifact.SizeBytes, pages, time.Since(start))
	return artifact, nil
}

func (g *Generator) rasterize(ctx context.Context, subjectID, html string) ([]byte, error) {
	attempts := g.cfg.RasterRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pdf, err := g.rasterizer.Rasterize(ctx, html)
		if err == nil {
			return pdf, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == attempts || ctx.Err() != nil {
			break
		}

		logx.With("subject_id", subjectID, "attempt", attempt).
			Warnf("Rasterization failed, retrying: %v", err)

		if g.cfg.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(g.cfg.RetryBackoff):
			}
		}
	}
	return nil, lastErr
}

func (g *Generator) countPages(subjectID string, pdf []byte) int {
	if g.inspector == nil {
		return 0
	}
	pages, err := g.inspector.PageCount(pdf)
	if err != nil {
		logx.With("subject_id", subjectID).Warnf("Could not inspect rendered PDF: %v", err)
		return 0
	}
	return pages
}

// stageError annotates a stage failure with the subject and stage. Errors
// from outside the registry are wrapped as internal.
func stageError(err error, subjectID, stage string) error {
	e, ok := errx.As(err)
	if !ok {
		e = errx.Wrap(err, "document generation failed", errx.TypeInternal)
	}
	return e.WithDetail("subject_id", subjectID).WithDetail("stage", stage)
}
