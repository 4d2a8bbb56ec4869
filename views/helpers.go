package views

import (
	"net/url"
	"time"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
)

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// TagURL returns the site path of a tag's listing.
func TagURL(tag string) string {
	return "/tags/" + url.PathEscape(content.Slugify(tag)) + "/"
}

// PostURL returns the site path of a post.
func PostURL(p pubsite.StoredPost) string {
	return "/blog/" + url.PathEscape(p.Slug) + "/"
}

// FormatDate formats t in loc the way listings and post headers show it.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2 January 2006")
}

// PostDate is the date line of a post: its display time, machine-readable
// and formatted, and whether it shows an update.
type PostDate struct {
	ISO     string
	Text    string
	Updated bool
}

// DateOf returns the date line of p in loc.
func DateOf(p content.BlogPost, loc *time.Location) PostDate {
	t, updated := p.DisplayDatetime()
	return PostDate{
		ISO:     t.Format(time.RFC3339),
		Text:    FormatDate(t, loc),
		Updated: updated,
	}
}
