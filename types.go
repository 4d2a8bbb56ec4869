package pubsite

import (
	"time"

	"github.com/eringen/pubsite/content"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website", "article" or "profile"
	Image       string // absolute og:image URL, empty for none
	JSONLD      string
}

// Pagination describes one page of a post listing. Pages count from 1.
type Pagination struct {
	Page       int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns the posts of page and the resulting pagination. Pages out
// of range are clamped.
func Paginate(posts []StoredPost, page, perPage int) ([]StoredPost, Pagination) {
	if perPage <= 0 {
		perPage = len(posts)
	}
	total := 1
	if perPage > 0 && len(posts) > 0 {
		total = (len(posts) + perPage - 1) / perPage
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(posts) {
		start = len(posts)
	}
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end], Pagination{Page: page, TotalPages: total}
}

// HomePage is rendered at "/".
type HomePage struct {
	Site       SiteConfig
	Meta       PageMeta
	Featured   []StoredPost
	Posts      []StoredPost
	Tags       []Tag
	Pagination Pagination
}

// PostPage is rendered at "/blog/:slug/".
type PostPage struct {
	Site     SiteConfig
	Meta     PageMeta
	Post     StoredPost
	Body     []byte
	Author   *content.Author
	Related  []StoredPost
	EditHref string
	EditText string
}

// TagPage is rendered at "/tags/:tag/".
type TagPage struct {
	Site  SiteConfig
	Meta  PageMeta
	Tag   Tag
	Posts []StoredPost
}

// AuthorPage is rendered at "/authors/:slug/".
type AuthorPage struct {
	Site   SiteConfig
	Meta   PageMeta
	Author content.Author
	Posts  []StoredPost
}

// DashboardPage is the admin view of the content and the last load.
type DashboardPage struct {
	Site      SiteConfig
	Meta      PageMeta
	Posts     []StoredPost
	Report    Report
	Message   string
	CSRFToken string
	Now       time.Time
}

// Report summarizes a content load.
type Report struct {
	LoadedAt    time.Time
	Duration    time.Duration
	Collections []CollectionReport
}

// CollectionReport is the outcome of loading one collection.
type CollectionReport struct {
	Name     string
	Valid    int
	Rejected []RejectedDocument
}

// RejectedDocument is a document left out of the published set.
type RejectedDocument struct {
	ID     string
	Path   string
	Error  string
	Issues []content.Issue
}

// RejectedCount returns the number of rejected documents across collections.
func (r Report) RejectedCount() int {
	n := 0
	for _, c := range r.Collections {
		n += len(c.Rejected)
	}
	return n
}

func newCollectionReport(name string, valid int, rejected []content.Rejection) CollectionReport {
	cr := CollectionReport{Name: name, Valid: valid}
	for _, rej := range rejected {
		cr.Rejected = append(cr.Rejected, RejectedDocument{
			ID:     rej.ID,
			Path:   rej.Path,
			Error:  rej.Err.Error(),
			Issues: content.Issues(rej.Err),
		})
	}
	return cr
}
