package document

import (
	"context"
	"embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"golang.org/x/net/html"
)

//go:embed templates/hoja_vida.html
var templatesFS embed.FS

// TemplateContext maps placeholder names to substitution values
type TemplateContext map[string]any

// Value returns the stringified value for key. Nil and absent keys yield "".
func (c TemplateContext) Value(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy
func (c TemplateContext) Clone() TemplateContext {
	out := make(TemplateContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ============================================================================
// Template sources
// ============================================================================

// TemplateSource loads raw template text
type TemplateSource interface {
	Load(ctx context.Context) (string, error)
	Name() string
}

type fileTemplate struct{ path string }

// FileTemplate reads the template from disk on every render
func FileTemplate(path string) TemplateSource { return fileTemplate{path: path} }

func (t fileTemplate) Name() string { return "file:" + t.path }

func (t fileTemplate) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type storageTemplate struct {
	reader fsx.FileReader
	key    string
}

// StorageTemplate reads the template from the object store
func StorageTemplate(reader fsx.FileReader, key string) TemplateSource {
	return storageTemplate{reader: reader, key: key}
}

func (t storageTemplate) Name() string { return "storage:" + t.key }

func (t storageTemplate) Load(ctx context.Context) (string, error) {
	data, err := t.reader.ReadFile(ctx, t.key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type staticTemplate struct{ text string }

// StaticTemplate serves a fixed string
func StaticTemplate(text string) TemplateSource { return staticTemplate{text: text} }

func (t staticTemplate) Name() string { return "static" }

func (t staticTemplate) Load(context.Context) (string, error) { return t.text, nil }

type embeddedTemplate struct{ name string }

// DefaultTemplate is the résumé layout compiled into the binary
func DefaultTemplate() TemplateSource { return embeddedTemplate{name: "templates/hoja_vida.html"} }

func (t embeddedTemplate) Name() string { return "embedded:" + t.name }

func (t embeddedTemplate) Load(context.Context) (string, error) {
	data, err := templatesFS.ReadFile(t.name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ============================================================================
// Substitution
// ============================================================================

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_]+)\s*\}\}`)

// Report lists placeholders left unresolved and context keys never used
type Report struct {
	Unresolved []string
	Unused     []string
}

// StripOnError removes inline onerror handlers from every tag. Tags without
// one, text and comments are copied byte for byte.
func StripOnError(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or a read error that cannot happen on a strings.Reader
			return b.String()
		}
		// Token lowercases the tokenizer buffer in place, so keep the raw text first
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if tok := z.Token(); hasOnError(tok.Attr) {
				tok.Attr = withoutOnError(tok.Attr)
				b.WriteString(tok.String())
				continue
			}
		}
		b.WriteString(raw)
	}
}

func hasOnError(attrs []html.Attribute) bool {
	for _, a := range attrs {
		if a.Key == "onerror" {
			return true
		}
	}
	return false
}

func withoutOnError(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if a.Key != "onerror" {
			kept = append(kept, a)
		}
	}
	return kept
}

// Fill strips onerror handlers and substitutes every placeholder whose key is
// present in data. Placeholders without a value are left untouched.
func Fill(raw string, data TemplateContext) (string, Report) {
	sanitized := StripOnError(raw)

	used := make(map[string]bool, len(data))
	unresolved := make(map[string]bool)

	out := placeholderPattern.ReplaceAllStringFunc(sanitized, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if _, ok := data[key]; !ok {
			unresolved[key] = true
			return match
		}
		used[key] = true
		return data.Value(key)
	})

	var report Report
	for key := range unresolved {
		report.Unresolved = append(report.Unresolved, key)
	}
	for key := range data {
		if !used[key] {
			report.Unused = append(report.Unused, key)
		}
	}
	sort.Strings(report.Unresolved)
	sort.Strings(report.Unused)

	return out, report
}

// TemplateRenderer fills a template source with field values
type TemplateRenderer struct {
	source TemplateSource
}

func NewTemplateRenderer(source TemplateSource) *TemplateRenderer {
	return &TemplateRenderer{source: source}
}

// Render loads the template and fills it with data
func (r *TemplateRenderer) Render(ctx context.Context, data TemplateContext) (string, error) {
	raw, err := r.source.Load(ctx)
	if err != nil {
		return "", ErrTemplateRead(err).WithDetail("template", r.source.Name())
	}

	out, report := Fill(raw, data)

	if len(report.Unresolved) > 0 {
		logx.With("template", r.source.Name(), "unresolved", report.Unresolved).
			Warnf("%d placeholders left unresolved", len(report.Unresolved))
	}
	if len(report.Unused) > 0 {
		logx.With("template", r.source.Name(), "unused", report.Unused).
			Debugf("%d context keys not referenced by template", len(report.Unused))
	}

	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyDocument().WithDetail("template", r.source.Name())
	}
	return out, nil
}
