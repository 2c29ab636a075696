package document

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

type ChromeConfig struct {
	ExecPath  string
	NoSandbox bool
}

// ChromeEngine starts a headless Chrome with its own throwaway profile for
// every Launch
type ChromeEngine struct {
	cfg ChromeConfig
}

var _ Engine = (*ChromeEngine)(nil)

func NewChromeEngine(cfg ChromeConfig) *ChromeEngine {
	return &ChromeEngine{cfg: cfg}
}

// flags are the command line switches added on top of chromedp's defaults
func (e *ChromeEngine) flags() map[string]any {
	f := map[string]any{
		"disable-gpu":           true,
		"disable-dev-shm-usage": true,
		"hide-scrollbars":       true,
		"font-render-hinting":   "none",
	}
	if e.cfg.NoSandbox {
		f["no-sandbox"] = true
	}
	return f
}

func (e *ChromeEngine) allocatorOptions(profileDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserDataDir(profileDir))
	for name, value := range e.flags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if e.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.ExecPath))
	}
	return opts
}

// Launch starts the browser and opens its first tab. The returned session
// inherits ctx's deadline; the browser process is killed when it expires.
func (e *ChromeEngine) Launch(ctx context.Context) (Session, error) {
	profileDir, err := os.MkdirTemp("", "hojavida-chrome-*")
	if err != nil {
		return nil, fmt.Errorf("create chrome profile dir: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, e.allocatorOptions(profileDir)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		profileDir:  profileDir,
	}

	// An empty Run starts the browser and attaches the first target
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return s, nil
}

type chromeSession struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	profileDir  string

	closeOnce sync.Once
	closeErr  error
}

// Close shuts the browser down, waits for the process and removes the profile
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.tabCtx); err != nil {
			logx.Debugf("chrome graceful close: %v", err)
		}
		s.tabCancel()
		s.allocCancel()
		s.closeErr = os.RemoveAll(s.profileDir)
	})
	return s.closeErr
}

func (s *chromeSession) Print(ctx context.Context, html string, opts PrintOptions) ([]byte, error) {
	// Abort the tab if the caller gives up first
	stop := context.AfterFunc(ctx, s.tabCancel)
	defer stop()

	tracker := newRequestTracker()
	chromedp.ListenTarget(s.tabCtx, tracker.observe)

	var pdf []byte
	err := chromedp.Run(s.tabCtx,
		network.Enable(),
		chromedp.EmulateViewport(opts.ViewportWidth, opts.ViewportHeight),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return tracker.waitIdle(ctx, opts.IdleSettle)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForImages(ctx, opts.GracePeriod)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(opts.PaperWidthIn).
				WithPaperHeight(opts.PaperHeightIn).
				WithMarginTop(opts.MarginIn).
				WithMarginBottom(opts.MarginIn).
				WithMarginLeft(opts.MarginIn).
				WithMarginRight(opts.MarginIn).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, err
	}
	return pdf, nil
}

// requestTracker counts in-flight network requests of a tab
type requestTracker struct {
	mu         sync.Mutex
	inflight   map[network.RequestID]struct{}
	lastChange time.Time
}

func newRequestTracker() *requestTracker {
	return &requestTracker{
		inflight:   make(map[network.RequestID]struct{}),
		lastChange: time.Now(),
	}
}

func (t *requestTracker) observe(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.lastChange = time.Now()
}

func (t *requestTracker) idleFor() (int, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight), time.Since(t.lastChange)
}

// waitIdle blocks until no request has been in flight for settle
func (t *requestTracker) waitIdle(ctx context.Context, settle time.Duration) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if n, quiet := t.idleFor(); n == 0 && quiet >= settle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

const decodeImagesScript = `Promise.all(Array.from(document.images).map(function (img) {
	return img.decode ? img.decode().catch(function () { return null; }) : null;
})).then(function () { return document.images.length; })`

// waitForImages waits for every <img> to decode or fail, up to grace. Running
// out of grace is not an error; printing proceeds with whatever has loaded.
func waitForImages(ctx context.Context, grace time.Duration) error {
	if grace <= 0 {
		return nil
	}
	gctx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()

	var count int
	err := chromedp.Evaluate(decodeImagesScript, &count, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}).Do(gctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logx.Warnf("Images not ready after %s, printing anyway: %v", grace, err)
	return nil
}
