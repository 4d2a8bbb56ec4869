package pubsite

import (
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/eringen/pubsite/content"
)

// SiteConfig holds all configuration for a pubsite site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and meta tags
	Author      string `toml:"author"`      // Default post author
	OGImage     string `toml:"og_image"`    // Fallback OpenGraph image
	Timezone    string `toml:"timezone"`    // IANA zone dates are shown in (default "UTC")

	PostsPerPage        int            `toml:"posts_per_page"`        // default 4
	ScheduledPostMargin time.Duration  `toml:"scheduled_post_margin"` // default 15m
	EditPost            EditPostConfig `toml:"edit_post"`

	ContentDir string `toml:"content_dir"` // default "content"
	BlogDir    string `toml:"blog_dir"`    // relative to ContentDir (default "blog")
	AuthorsDir string `toml:"authors_dir"` // relative to ContentDir (default "authors")
	AllowHTML  bool   `toml:"allow_html"`  // pass raw HTML in post bodies through

	Addr         string `toml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `toml:"database_path"` // SQLite path (default "data/site.db")

	AdminPassword string `toml:"-"` // Required: admin login password
	SessionSecret string `toml:"-"` // Required: session encryption secret
	CookieSecure  bool   `toml:"cookie_secure"`

	PostCacheTTL   time.Duration `toml:"post_cache_ttl"`   // default 5m
	BodyCacheSize  int           `toml:"body_cache_size"`  // bytes (default 16MB)
	ImageCacheSize int           `toml:"image_cache_size"` // bytes (default 32MB)

	Log LogConfig `toml:"log"`
}

// EditPostConfig is the site-wide default of a post's edit link.
type EditPostConfig struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Text           string `toml:"text"`
	AppendFilePath bool   `toml:"append_file_path"`
}

// LogConfig configures application logging.
type LogConfig struct {
	Level    string `toml:"level"`     // default "info"
	File     string `toml:"file"`      // rotate into this file when set
	ToStdout bool   `toml:"to_stdout"` // also write to stdout when File is set
	JSON     bool   `toml:"json"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.PostsPerPage <= 0 {
		c.PostsPerPage = 4
	}
	if c.ScheduledPostMargin == 0 {
		c.ScheduledPostMargin = content.DefaultScheduledPostMargin
	}
	if c.EditPost.Text == "" {
		c.EditPost.Text = "Suggest Changes"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.BlogDir == "" {
		c.BlogDir = "blog"
	}
	if c.AuthorsDir == "" {
		c.AuthorsDir = "authors"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.BodyCacheSize <= 0 {
		c.BodyCacheSize = 16 << 20
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = 32 << 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ContentDefaults returns the values the front-matter schema falls back to.
func (c SiteConfig) ContentDefaults() content.Defaults {
	return content.Defaults{
		Author: c.Author,
		EditPost: content.EditPost{
			Disabled:       !c.EditPost.Enabled,
			URL:            c.EditPost.URL,
			Text:           c.EditPost.Text,
			AppendFilePath: c.EditPost.AppendFilePath,
		},
	}
}

// Location returns the configured time zone, falling back to UTC.
func (c SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig decodes a TOML config file. Keys missing from the file keep
// their zero value and pick up defaults when the App is created.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return SiteConfig{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentFS reads content from fsys instead of Config.ContentDir.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithClock replaces time.Now when deciding which posts are published.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithLogger sets the logger used for content loading and requests.
func WithLogger(log *logrus.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}
