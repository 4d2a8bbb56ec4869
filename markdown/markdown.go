// Package markdown renders post bodies to HTML with goldmark and exposes
// them as templ components.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures a Renderer.
type Options struct {
	// Extensions by name: gfm, table, strikethrough, linkify, tasklist,
	// definition, footnote. Empty selects gfm, linkify, tasklist and footnote.
	Extensions []string
	// HardWraps turns soft line breaks into <br>.
	HardWraps bool
	// AllowHTML passes raw HTML in the source through untouched.
	AllowHTML bool
}

// Renderer converts Markdown to HTML. It is stateless after construction and
// safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a goldmark engine for opts.
func NewRenderer(opts Options) *Renderer {
	engineOptions := []goldmark.Option{}
	htmlOptions := []renderer.Option{html.WithXHTML()}
	if opts.HardWraps {
		htmlOptions = append(htmlOptions, html.WithHardWraps())
	}
	if opts.AllowHTML {
		htmlOptions = append(htmlOptions, html.WithUnsafe())
	}
	engineOptions = append(engineOptions,
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOptions...),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	)
	return &Renderer{md: goldmark.New(engineOptions...)}
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList, extension.Footnote}
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Component returns a templ.Component that renders content as HTML.
func (r *Renderer) Component(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := r.Render([]byte(content))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}

var defaultRenderer = NewRenderer(Options{})

// Markdown renders content with the default options.
func Markdown(content string) templ.Component {
	return defaultRenderer.Component(content)
}
