package views

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// writer emits HTML and keeps the first write error.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.out, p)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes an href attribute; unsafe schemes are replaced by templ.
func (w *writer) href(u string) {
	w.attr("href", string(templ.URL(u)))
}

// document wraps main in the shared page shell.
func document(meta pubsite.PageMeta, main func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{out: out}
		w.raw("<!doctype html>\n<html lang=\"en\">\n<head>\n",
			"<meta charset=\"utf-8\">\n",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n",
			"<title>")
		w.text(meta.Title)
		w.raw("</title>\n")
		if meta.Description != "" {
			w.raw(`<meta name="description"`)
			w.attr("content", meta.Description)
			w.raw(">\n")
		}
		if meta.URL != "" {
			w.raw(`<link rel="canonical"`)
			w.href(meta.URL)
			w.raw(">\n", `<meta property="og:url"`)
			w.attr("content", meta.URL)
			w.raw(">\n")
		}
		w.raw(`<meta property="og:title"`)
		w.attr("content", meta.Title)
		w.raw(">\n")
		if meta.Description != "" {
			w.raw(`<meta property="og:description"`)
			w.attr("content", meta.Description)
			w.raw(">\n")
		}
		if meta.OGType != "" {
			w.raw(`<meta property="og:type"`)
			w.attr("content", meta.OGType)
			w.raw(">\n")
		}
		if meta.Image != "" {
			w.raw(`<meta property="og:image"`)
			w.attr("content", meta.Image)
			w.raw(">\n", `<meta name="twitter:card" content="summary_large_image">`, "\n")
		}
		if meta.JSONLD != "" {
			w.raw(`<script type="application/ld+json">`, strings.ReplaceAll(meta.JSONLD, "</", `<\/`), "</script>\n")
		}
		w.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`, "\n",
			`<link rel="stylesheet" href="/public/pubsite.css">`, "\n",
			"</head>\n<body>\n",
			`<header class="site-header"><a href="/">Home</a> <a href="/feed.xml">RSS</a></header>`, "\n",
			"<main>\n")
		main(w)
		w.raw("</main>\n</body>\n</html>\n")
		return w.err
	})
}

// cards writes a post listing.
func cards(w *writer, posts []pubsite.StoredPost, loc *time.Location) {
	w.raw("<ul>")
	for _, p := range posts {
		w.raw(`<li class="card"><a`)
		w.href(PostURL(p))
		w.raw("><h3>")
		w.text(p.Title)
		w.raw("</h3></a>")
		dateLine(w, DateOf(p.BlogPost, loc))
		w.raw("<p>")
		w.text(p.Description)
		w.raw("</p></li>\n")
	}
	w.raw("</ul>\n")
}

func dateLine(w *writer, d PostDate) {
	w.raw("<time")
	w.attr("datetime", d.ISO)
	w.raw(">")
	if d.Updated {
		w.raw("Updated: ")
	}
	w.text(d.Text)
	w.raw("</time>")
}

// csrfForm writes a single-button POST form carrying the CSRF token.
func csrfForm(w *writer, action, token, label string) {
	w.raw(`<form method="post"`)
	w.attr("action", action)
	w.raw(`><input type="hidden" name="_csrf"`)
	w.attr("value", token)
	w.raw(`><button type="submit">`)
	w.text(label)
	w.raw("</button></form>\n")
}
