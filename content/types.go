// Package content validates Markdown front-matter and turns it into typed
// blog post and author records.
//
// Records are built once per document at load time and are not mutated
// afterwards. A reload builds a fresh set.
package content

import (
	"path"
	"strings"
	"time"
	"unicode"
)

// Category classifies a blog post.
type Category string

const (
	CategoryResearch   Category = "Research"
	CategoryDeepDive   Category = "Deep Dive"
	CategoryTutorial   Category = "Tutorial"
	DefaultCategory             = CategoryTutorial
	defaultTag                  = "others"
	MinOGImageWidth             = 1200
	MinOGImageHeight            = 630
	ogImageTooSmallMsg          = "OpenGraph image must be at least 1200 X 630 pixels!"
)

// Categories lists the allowed categories in display order.
var Categories = []Category{CategoryResearch, CategoryDeepDive, CategoryTutorial}

// ImageAsset is a local image whose dimensions are known.
type ImageAsset struct {
	Src    string
	Width  int
	Height int
	Format string
}

// OGImageKind tells which case of OGImage is set.
type OGImageKind int

const (
	OGImageAsset OGImageKind = iota + 1
	OGImageURL
)

// OGImage is either an image asset or a plain URL string.
type OGImage struct {
	Kind  OGImageKind
	Asset ImageAsset
	URL   string
}

// Src returns the location of the image regardless of its kind.
func (o *OGImage) Src() string {
	if o == nil {
		return ""
	}
	if o.Kind == OGImageAsset {
		return o.Asset.Src
	}
	return o.URL
}

// EditPost configures the "suggest changes" link of a post.
type EditPost struct {
	Disabled       bool
	URL            string
	Text           string
	AppendFilePath bool
}

// EditPostOverride is the editPost record of a single post. Nil fields were
// not written and fall back to the site value; set fields win even when
// empty or false.
type EditPostOverride struct {
	Disabled       *bool   `json:"disabled,omitempty"`
	URL            *string `json:"url,omitempty"`
	Text           *string `json:"text,omitempty"`
	AppendFilePath *bool   `json:"appendFilePath,omitempty"`
}

// BlogPost is a validated post document.
type BlogPost struct {
	ID       string
	Slug     string
	FilePath string
	Body     string

	Author       string
	PubDatetime  time.Time
	ModDatetime  *time.Time
	Title        string
	Description  string
	Featured     bool
	Draft        bool
	Tags         []string
	Category     Category
	OGImage      *OGImage
	CanonicalURL string
	EditPost     *EditPostOverride
}

// Social is one outbound profile link of an author.
type Social struct {
	Name      string
	Href      string
	LinkTitle string
	Active    bool
}

// Author is a validated author profile document.
type Author struct {
	ID   string
	Slug string

	Name       string
	Avatar     string
	Occupation string
	Company    string
	Email      string
	Socials    []Social
}

// Defaults are the site-wide values the schema falls back to.
type Defaults struct {
	Author   string
	EditPost EditPost
}

// SlugFromID derives a URL slug from a document identifier such as
// "2024/hello-world.md".
func SlugFromID(id string) string {
	return Slugify(strings.TrimSuffix(id, path.Ext(id)))
}

// Slugify converts a title or path to a URL-safe slug. Letters and digits of
// any script are kept lowercased; every other run of characters becomes a
// single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prev = false
		case unicode.IsMark(r) && b.Len() > 0 && !prev:
			b.WriteRune(r)
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
