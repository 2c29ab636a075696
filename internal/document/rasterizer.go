package document

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
)

const mmPerInch = 25.4

// PrintOptions describes the page surface and the print output
type PrintOptions struct {
	ViewportWidth  int64
	ViewportHeight int64
	PaperWidthIn   float64
	PaperHeightIn  float64
	MarginIn       float64
	// IdleSettle is how long the network must stay quiet before printing
	IdleSettle time.Duration
	// GracePeriod caps the wait for images to finish decoding after idle
	GracePeriod time.Duration
}

// DefaultPrintOptions is A4 with 12 mm margins on a 1200x800 viewport
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{
		ViewportWidth:  1200,
		ViewportHeight: 800,
		PaperWidthIn:   8.27,
		PaperHeightIn:  11.69,
		MarginIn:       MillimetersToInches(12),
		IdleSettle:     500 * time.Millisecond,
		GracePeriod:    5 * time.Second,
	}
}

func MillimetersToInches(mm float64) float64 {
	return mm / mmPerInch
}

// Engine launches isolated rendering engine instances
type Engine interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one launched engine instance. Close releases it and must be
// safe to call after any Print outcome.
type Session interface {
	Print(ctx context.Context, html string, opts PrintOptions) ([]byte, error)
	Close() error
}

type RasterizerConfig struct {
	Timeout time.Duration
	Print   PrintOptions
}

func DefaultRasterizerConfig() RasterizerConfig {
	return RasterizerConfig{
		Timeout: 60 * time.Second,
		Print:   DefaultPrintOptions(),
	}
}

// Rasterizer turns filled HTML into PDF bytes using a fresh engine instance
// per call
type Rasterizer struct {
	engine Engine
	cfg    RasterizerConfig
}

func NewRasterizer(engine Engine, cfg RasterizerConfig) *Rasterizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRasterizerConfig().Timeout
	}
	return &Rasterizer{engine: engine, cfg: cfg}
}

// Rasterize renders html to PDF. The engine instance is closed exactly once on
// every path after a successful launch.
func (r *Rasterizer) Rasterize(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyInput()
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	session, err := r.engine.Launch(ctx)
	if err != nil {
		return nil, classifyRenderError(ctx, err).WithDetail("step", "launch")
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logx.Warnf("Failed to release rendering engine: %v", cerr)
		}
	}()

	pdf, err := session.Print(ctx, html, r.cfg.Print)
	if err != nil {
		return nil, classifyRenderError(ctx, err).
			WithDetail("step", "print").
			WithDetail("elapsed_ms", time.Since(start).Milliseconds())
	}
	if len(pdf) == 0 {
		return nil, ErrRenderFailed(errors.New("engine produced an empty document")).WithDetail("step", "print")
	}

	logx.Debugf("Rasterized %d bytes of HTML into %d bytes of PDF in %s", len(html), len(pdf), time.Since(start))
	return pdf, nil
}

func classifyRenderError(ctx context.Context, err error) *errx.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrRenderTimeout(err)
	}
	return ErrRenderFailed(err)
}
