package pubsite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/pubsite/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsoluteURL resolves ref against the site URL. Absolute refs pass through.
func AbsoluteURL(base, ref string) string {
	if ref == "" || content.IsURL(ref) {
		return ref
	}
	u, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.ResolveReference(r).String()
}

// PostURL returns the canonical URL of a post: its canonicalURL when set,
// otherwise its page on the site.
func PostURL(cfg SiteConfig, post content.BlogPost) string {
	if post.CanonicalURL != "" {
		return post.CanonicalURL
	}
	return BuildURL(cfg.URL, "blog", post.Slug)
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current content.BlogPost, posts []StoredPost) []StoredPost {
	var related []StoredPost
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range current.Tags {
			if p.HasTag(t) {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.BlogPost, cfg SiteConfig) string {
	postURL := PostURL(cfg, post)
	data := map[string]interface{}{
		"@context":       "https://schema.org",
		"@type":          "BlogPosting",
		"headline":       post.Title,
		"description":    post.Description,
		"datePublished":  post.PubDatetime.Format(time.RFC3339),
		"url":            postURL,
		"articleSection": string(post.Category),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if mod, ok := post.LastModified(); ok {
		data["dateModified"] = mod.Format(time.RFC3339)
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if img := post.OGImage.Src(); img != "" {
		data["image"] = AbsoluteURL(cfg.URL, img)
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	return marshalJsonLD(data)
}

// PersonJsonLD returns a JSON-LD string for an author profile.
func PersonJsonLD(author content.Author, cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     author.Name,
		"jobTitle": author.Occupation,
		"worksFor": map[string]string{
			"@type": "Organization",
			"name":  author.Company,
		},
		"url": BuildURL(cfg.URL, "authors", author.Slug),
	}
	if author.Avatar != "" {
		data["image"] = AbsoluteURL(cfg.URL, author.Avatar)
	}
	sameAs := make([]string, 0, len(author.Socials))
	for _, s := range author.Socials {
		if s.Active {
			sameAs = append(sameAs, s.Href)
		}
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
