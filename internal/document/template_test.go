package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Load(context.Context) (string, error) { return "", errors.New("disk gone") }
func (failingSource) Name() string                         { return "failing" }

func TestFill_SubstitutesEveryPresentKey(t *testing.T) {
	out, report := Fill("<p>{{ A }} and {{B}} and {{  A  }}</p>", TemplateContext{"A": "x", "B": 7})

	assert.Equal(t, "<p>x and 7 and x</p>", out)
	assert.Empty(t, report.Unresolved)
	assert.Empty(t, report.Unused)
}

func TestFill_MissingKeyLeftLiteral(t *testing.T) {
	out, report := Fill("<p>{{ NAME }} / {{ MISSING }}</p>", TemplateContext{"NAME": "Ana", "EXTRA": "z"})

	assert.Equal(t, "<p>Ana / {{ MISSING }}</p>", out)
	assert.Equal(t, []string{"MISSING"}, report.Unresolved)
	assert.Equal(t, []string{"EXTRA"}, report.Unused)
}

func TestFill_NilBecomesEmpty(t *testing.T) {
	var nilName *string
	out, report := Fill("[{{ A }}][{{ B }}]", TemplateContext{"A": nil, "B": nilName})

	assert.Equal(t, "[][]", out)
	assert.Empty(t, report.Unresolved)
}

func TestFill_ValuesAreNotRescanned(t *testing.T) {
	out, _ := Fill("{{ A }}", TemplateContext{"A": "{{ B }}", "B": "boom"})
	assert.Equal(t, "{{ B }}", out)
}

func TestStripOnError(t *testing.T) {
	cases := map[string]string{
		`<img src="a.png" onerror="alert(1)">`:      `<img src="a.png">`,
		`<img src="a.png" ONERROR='x()' alt="f">`:   `<img src="a.png" alt="f">`,
		`<img src="a.png" onerror=fallback()>`:      `<img src="a.png">`,
		`<p>onerror is a word</p>`:                  `<p>onerror is a word</p>`,
		`<img src="{{ PHOTO_URL }}" onerror="h()">`: `<img src="{{ PHOTO_URL }}">`,
		`<img src="a.png"onerror="alert(1)">`:       `<img src="a.png">`,
		`<img/onerror="alert(1)" src="a.png">`:      `<img src="a.png">`,
		`<img src="a.png" onerror="x()"/>`:          `<img src="a.png"/>`,
		`<p>Use onerror=handler to debug</p>`:       `<p>Use onerror=handler to debug</p>`,
		`<DIV Class="x">Hola &amp; adiós</DIV>`:     `<DIV Class="x">Hola &amp; adiós</DIV>`,
		`<!-- <img onerror="x()"> --><br>`:          `<!-- <img onerror="x()"> --><br>`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripOnError(in), in)
	}
}

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer(StaticTemplate(`<h1>{{ NOMBRE_COMPLETO }}</h1><img src="{{ LOGO_URL }}" onerror="x()">`))

	html, err := r.Render(context.Background(), TemplateContext{
		"NOMBRE_COMPLETO": "Ana Gómez",
		"LOGO_URL":        "https://example.com/logo.png",
	})

	require.NoError(t, err)
	assert.Equal(t, `<h1>Ana Gómez</h1><img src="https://example.com/logo.png">`, html)
}

func TestTemplateRenderer_SourceFailure(t *testing.T) {
	_, err := NewTemplateRenderer(failingSource{}).Render(context.Background(), TemplateContext{})

	require.Error(t, err)
	assert.True(t, errx.IsCode(err, CodeTemplateRead))
	e, _ := errx.As(err)
	assert.Equal(t, "failing", e.Details["template"])
}

func TestTemplateRenderer_EmptyTemplate(t *testing.T) {
	_, err := NewTemplateRenderer(StaticTemplate("  \n\t ")).Render(context.Background(), TemplateContext{"A": "b"})

	assert.True(t, errx.IsCode(err, CodeEmptyDocument))
}

func TestTemplateRenderer_StorageSource(t *testing.T) {
	store := newMemoryStore()
	store.objects["templates/hv.html"] = []byte("<b>{{ IDENTIFICACION }}</b>")

	html, err := NewTemplateRenderer(StorageTemplate(store, "templates/hv.html")).
		Render(context.Background(), TemplateContext{"IDENTIFICACION": "12345"})

	require.NoError(t, err)
	assert.Equal(t, "<b>12345</b>", html)
}

func TestDefaultTemplate_ResolvesWithFullContext(t *testing.T) {
	raw, err := DefaultTemplate().Load(context.Background())
	require.NoError(t, err)

	data := TemplateContext{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(raw, -1) {
		data[m[1]] = "v"
	}
	require.Contains(t, data, "NOMBRE_COMPLETO")
	require.Contains(t, data, "LOGO_URL")

	out, report := Fill(raw, data)
	assert.Empty(t, report.Unresolved)
	assert.False(t, strings.Contains(out, "{{"))
}
