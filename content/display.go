package content

import (
	"sort"
	"strings"
	"time"
)

// DefaultScheduledPostMargin is how far ahead of now a post may be dated and
// still be published.
const DefaultScheduledPostMargin = 15 * time.Minute

// LastModified returns the modification time only when it is later than the
// publication time.
func (p BlogPost) LastModified() (time.Time, bool) {
	if p.ModDatetime == nil || !p.ModDatetime.After(p.PubDatetime) {
		return time.Time{}, false
	}
	return *p.ModDatetime, true
}

// DisplayDatetime returns the time a post should show and whether it is an
// update rather than the original publication.
func (p BlogPost) DisplayDatetime() (time.Time, bool) {
	if t, ok := p.LastModified(); ok {
		return t, true
	}
	return p.PubDatetime, false
}

// SortTime is the time listings order by.
func (p BlogPost) SortTime() time.Time {
	t, _ := p.DisplayDatetime()
	return t
}

// Published reports whether the post belongs to the public set at now.
func (p BlogPost) Published(now time.Time, margin time.Duration) bool {
	if p.Draft {
		return false
	}
	return !p.PubDatetime.After(now.Add(margin))
}

// HasTag reports whether the post carries tag, ignoring case and spacing.
func (p BlogPost) HasTag(tag string) bool {
	want := Slugify(tag)
	for _, t := range p.Tags {
		if Slugify(t) == want {
			return true
		}
	}
	return false
}

// EditLink merges the post's edit settings over site field by field and
// returns the link target and its text. ok is false when the link is
// disabled or has no URL.
func (p BlogPost) EditLink(site EditPost) (href, text string, ok bool) {
	cfg := site
	if cfg.Text == "" {
		cfg.Text = "Suggest Changes"
	}
	if o := p.EditPost; o != nil {
		if o.Disabled != nil {
			cfg.Disabled = *o.Disabled
		}
		if o.URL != nil {
			cfg.URL = *o.URL
		}
		if o.Text != nil {
			cfg.Text = *o.Text
		}
		if o.AppendFilePath != nil {
			cfg.AppendFilePath = *o.AppendFilePath
		}
	}
	if cfg.Disabled || cfg.URL == "" {
		return "", "", false
	}
	href = cfg.URL
	if cfg.AppendFilePath && p.FilePath != "" {
		href = strings.TrimRight(href, "/") + "/" + strings.TrimLeft(p.FilePath, "/")
	}
	return href, cfg.Text, true
}

// SortPosts orders posts newest first by SortTime, breaking ties by slug.
func SortPosts(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, tj := posts[i].SortTime(), posts[j].SortTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// FilterPublished keeps the posts that are published at now.
func FilterPublished(posts []BlogPost, now time.Time, margin time.Duration) []BlogPost {
	out := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.Published(now, margin) {
			out = append(out, p)
		}
	}
	return out
}
