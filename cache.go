package pubsite

import (
	"database/sql"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"github.com/eringen/pubsite/markdown"
)

// ErrNotFound is returned when a requested post or author does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published posts and tags with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []StoredPost
	tags    []Tag
	fetched time.Time
	ttl     time.Duration
	store   *Store
	cutoff  func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store. cutoff returns
// the latest publication time that counts as published.
func NewPostCache(s *Store, ttl time.Duration, cutoff func() time.Time) *PostCache {
	return &PostCache{store: s, ttl: ttl, cutoff: cutoff}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	cutoff := c.cutoff()
	posts, err := c.store.ListPosts("", cutoff)
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(cutoff)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []StoredPost{}
	}
	c.posts = posts
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]StoredPost, []Tag, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]StoredPost, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	var filtered []StoredPost
	for _, p := range posts {
		if p.HasTag(tag) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ListFeatured returns published posts marked as featured.
func (c *PostCache) ListFeatured() ([]StoredPost, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var featured []StoredPost
	for _, p := range posts {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// ListTags returns all unique tags from published posts.
func (c *PostCache) ListTags() ([]Tag, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (StoredPost, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return StoredPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return StoredPost{}, ErrNotFound
}

// BodyCache keeps rendered post bodies keyed by slug and source checksum,
// so an edited document never serves stale HTML.
type BodyCache struct {
	cache    *freecache.Cache
	renderer *markdown.Renderer
}

// NewBodyCache creates a cache of size bytes in front of renderer.
func NewBodyCache(size int, renderer *markdown.Renderer) *BodyCache {
	return &BodyCache{cache: freecache.NewCache(size), renderer: renderer}
}

// HTML returns the rendered body of post.
func (b *BodyCache) HTML(post StoredPost) ([]byte, error) {
	key := []byte(post.Slug + "@" + post.Checksum)
	if html, err := b.cache.Get(key); err == nil {
		return html, nil
	}
	html, err := b.renderer.Render([]byte(post.Body))
	if err != nil {
		return nil, err
	}
	// freecache rejects entries larger than 1/1024 of its size; those are
	// simply rendered on every request.
	_ = b.cache.Set(key, html, 0)
	return html, nil
}

// Clear drops every cached body.
func (b *BodyCache) Clear() {
	b.cache.Clear()
}

// Len returns the number of cached bodies.
func (b *BodyCache) Len() int64 {
	return b.cache.EntryCount()
}
