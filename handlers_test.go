package pubsite_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/views"
)

var siteNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func coverPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1200, 630))))
	return buf.Bytes()
}

func siteFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"blog/hello-world.md": {Data: []byte(`---
title: Hello World
description: The first post
author: Jane Doe
pubDatetime: 2024-05-01T10:00:00Z
tags: [Go, web]
ogImage: ./cover.png
---
# Hello

Some *text*.
`)},
		"blog/cover.png": {Data: coverPNG(t)},
		"blog/draft.md": {Data: []byte(`---
title: Draft Post
description: Not ready
pubDatetime: 2024-05-02T10:00:00Z
draft: true
tags: [go]
---
`)},
		"blog/scheduled.md": {Data: []byte(`---
title: Scheduled Post
description: Next month
pubDatetime: 2024-07-01T10:00:00Z
tags: [go]
---
`)},
		"blog/soon.md": {Data: []byte(`---
title: Almost Now
description: Inside the margin
pubDatetime: 2024-06-01T12:10:00Z
tags: [news]
---
`)},
		"blog/broken.md": {Data: []byte(`---
description: No title here
pubDatetime: 2024-05-03
---
`)},
		"authors/jane.md": {Data: []byte(`---
name: Jane Doe
avatar: /assets/authors/jane.png
occupation: Engineer
company: Acme
email: jane@example.com
github: https://github.com/jane
---
`)},
	}
}

func newTestApp(t *testing.T) *pubsite.App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := pubsite.New(pubsite.SiteConfig{
		Name:          "Notes",
		URL:           "https://example.com",
		Author:        "Site Owner",
		DatabasePath:  filepath.Join(t.TempDir(), "site.db"),
		AdminPassword: "hunter2",
		SessionSecret: "test-session-secret-of-32-bytes!",
	}, views.Default(),
		pubsite.WithContentFS(siteFS(t)),
		pubsite.WithClock(func() time.Time { return siteNow }),
		pubsite.WithStaticDir(t.TempDir()),
		pubsite.WithLogger(log),
	)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { app.Close() })
	return app
}

func serve(app *pubsite.App, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *pubsite.App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return serve(app, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func postForm(app *pubsite.App, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(app, req, cookies...)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHomeListsPublishedPosts(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "Almost Now")
	assert.NotContains(t, body, "Draft Post")
	assert.NotContains(t, body, "Scheduled Post")
	assert.Contains(t, body, `href="/tags/go/"`)
	assert.Contains(t, body, `"@type":"WebSite"`)
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/blog/hello-world/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hello World</h1>")
	assert.Contains(t, body, "<em>text</em>")
	assert.Contains(t, body, `<a href="/authors/jane/">Jane Doe</a>`)
	assert.Contains(t, body, `content="https://example.com/assets/blog/cover.png"`)
	assert.Contains(t, body, `<link rel="canonical" href="https://example.com/blog/hello-world/">`)
	assert.Contains(t, body, "BlogPosting")
}

func TestPostPageNotPublished(t *testing.T) {
	app := newTestApp(t)
	for _, slug := range []string{"draft", "scheduled", "broken", "missing"} {
		rec := get(app, "/blog/"+slug+"/")
		assert.Equal(t, http.StatusNotFound, rec.Code, slug)
		assert.Contains(t, rec.Body.String(), "Page not found", slug)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), slug)
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/blog/hello-world")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/hello-world/", rec.Header().Get("Location"))
}

func TestTagPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/tags/go/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tag: Go")
	assert.Contains(t, rec.Body.String(), "Hello World")
	assert.NotContains(t, rec.Body.String(), "Scheduled Post")

	assert.Equal(t, http.StatusNotFound, get(app, "/tags/nope/").Code)
}

func TestAuthorPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/authors/jane/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Engineer at Acme")
	assert.Contains(t, body, `href="https://github.com/jane"`)
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, `"@type":"Person"`)

	assert.Equal(t, http.StatusNotFound, get(app, "/authors/nobody/").Code)
}

func TestFeedAndSitemap(t *testing.T) {
	app := newTestApp(t)

	feed := get(app, "/feed.xml")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, feed.Body.String(), "<link>https://example.com/blog/hello-world/</link>")
	assert.Contains(t, feed.Body.String(), "<category>Go</category>")
	assert.NotContains(t, feed.Body.String(), "Draft Post")

	sitemap := get(app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, sitemap.Code)
	body := sitemap.Body.String()
	assert.Contains(t, body, "https://example.com/blog/hello-world/")
	assert.Contains(t, body, "https://example.com/tags/go/")
	assert.Contains(t, body, "https://example.com/authors/jane/")
	assert.NotContains(t, body, "/blog/scheduled/")

	robots := get(app, "/robots.txt")
	assert.Contains(t, robots.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestContentAssets(t *testing.T) {
	app := newTestApp(t)

	rec := get(app, "/assets/blog/cover.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	rec = get(app, "/assets/blog/cover.png?w=300")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, _, err := image.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)

	assert.Equal(t, http.StatusBadRequest, get(app, "/assets/blog/cover.png?w=0").Code)
	assert.Equal(t, http.StatusNotFound, get(app, "/assets/blog/hello-world.md").Code)
	assert.Equal(t, http.StatusNotFound, get(app, "/assets/blog/missing.png").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.CounterReloads.WithLabelValues("ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(app.Metrics.GaugeDocuments.WithLabelValues("blog", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.GaugeDocuments.WithLabelValues("blog", "rejected")))

	rec := get(app, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pubsite_content_documents")
	assert.Contains(t, rec.Body.String(), "pubsite_content_reloads_total")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdminLoginAndReload(t *testing.T) {
	app := newTestApp(t)

	rec := get(app, "/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)
	assert.Contains(t, rec.Body.String(), `value="`+csrf.Value+`"`)

	rec = postForm(app, "/admin/login/", url.Values{"password": {"hunter2"}}, csrf)
	assert.Equal(t, http.StatusForbidden, rec.Code, "missing token must be rejected")

	rec = postForm(app, "/admin/login/", url.Values{"password": {"wrong"}, "_csrf": {csrf.Value}}, csrf)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.CounterLoginFailures))

	rec = postForm(app, "/admin/login/", url.Values{"password": {"hunter2"}, "_csrf": {csrf.Value}}, csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	sess := cookieNamed(rec, "admin_session")
	require.NotNil(t, sess)

	rec = get(app, "/admin/", csrf, sess)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "blog: 4 valid, 1 rejected")
	assert.Contains(t, body, "blog/broken.md")
	assert.Contains(t, body, "MissingRequiredField")
	assert.Contains(t, body, "scheduled")
	assert.Contains(t, body, "draft")

	rec = postForm(app, "/admin/reload/", url.Values{"_csrf": {csrf.Value}}, csrf, sess)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg="+url.QueryEscape("Reloaded: 5 valid, 1 rejected."), rec.Header().Get("Location"))
	assert.Equal(t, 2.0, testutil.ToFloat64(app.Metrics.CounterReloads.WithLabelValues("ok")))
}

func TestAdminReloadRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	rec := get(app, "/admin/")
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)

	rec = postForm(app, "/admin/reload/", url.Values{"_csrf": {csrf.Value}}, csrf)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.CounterReloads.WithLabelValues("ok")))
}
