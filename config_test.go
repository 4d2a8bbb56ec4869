package pubsite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/pubsite/content"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.Name != "Blog" || cfg.URL != "http://localhost:3000" || cfg.Addr != ":3000" {
		t.Errorf("site defaults = %q %q %q", cfg.Name, cfg.URL, cfg.Addr)
	}
	if cfg.PostsPerPage != 4 {
		t.Errorf("PostsPerPage = %d, want 4", cfg.PostsPerPage)
	}
	if cfg.ScheduledPostMargin != 15*time.Minute {
		t.Errorf("ScheduledPostMargin = %v", cfg.ScheduledPostMargin)
	}
	if cfg.BlogDir != "blog" || cfg.AuthorsDir != "authors" || cfg.ContentDir != "content" {
		t.Errorf("dirs = %q %q %q", cfg.ContentDir, cfg.BlogDir, cfg.AuthorsDir)
	}
	if cfg.EditPost.Text != "Suggest Changes" {
		t.Errorf("EditPost.Text = %q", cfg.EditPost.Text)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestSetDefaultsKeepsValues(t *testing.T) {
	cfg := SiteConfig{Name: "Mine", PostsPerPage: 10, ScheduledPostMargin: time.Hour}
	cfg.setDefaults()
	if cfg.Name != "Mine" || cfg.PostsPerPage != 10 || cfg.ScheduledPostMargin != time.Hour {
		t.Errorf("overwritten: %+v", cfg)
	}
}

func TestContentDefaults(t *testing.T) {
	cfg := SiteConfig{
		Author: "Jane Doe",
		EditPost: EditPostConfig{
			Enabled: true, URL: "https://github.com/me/site/edit/main", AppendFilePath: true,
		},
	}
	cfg.setDefaults()
	d := cfg.ContentDefaults()
	want := content.Defaults{
		Author: "Jane Doe",
		EditPost: content.EditPost{
			URL: "https://github.com/me/site/edit/main", Text: "Suggest Changes", AppendFilePath: true,
		},
	}
	if d != want {
		t.Errorf("ContentDefaults = %+v, want %+v", d, want)
	}

	cfg.EditPost.Enabled = false
	if !cfg.ContentDefaults().EditPost.Disabled {
		t.Error("disabled edit link should carry Disabled")
	}
}

func TestLocation(t *testing.T) {
	if loc := (SiteConfig{Timezone: "Asia/Bangkok"}).Location(); loc.String() != "Asia/Bangkok" {
		t.Errorf("Location = %v", loc)
	}
	if loc := (SiteConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Errorf("invalid zone should fall back to UTC, got %v", loc)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
name = "Notes"
url = "https://notes.example"
author = "Jane Doe"
timezone = "Europe/Berlin"
scheduled_post_margin = "30m"
post_cache_ttl = "1m"

[edit_post]
enabled = true
url = "https://github.com/me/notes/edit/main"

[log]
level = "debug"
json = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Notes" || cfg.URL != "https://notes.example" || cfg.Author != "Jane Doe" {
		t.Errorf("site = %+v", cfg)
	}
	if cfg.ScheduledPostMargin != 30*time.Minute || cfg.PostCacheTTL != time.Minute {
		t.Errorf("durations = %v %v", cfg.ScheduledPostMargin, cfg.PostCacheTTL)
	}
	if !cfg.EditPost.Enabled || cfg.EditPost.URL != "https://github.com/me/notes/edit/main" {
		t.Errorf("EditPost = %+v", cfg.EditPost)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.PostsPerPage != 0 {
		t.Errorf("LoadConfig must not apply defaults, PostsPerPage = %d", cfg.PostsPerPage)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "name = \"x\"\nadmin_password = \"secret\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "admin_password") {
		t.Errorf("err = %v, want unknown key error", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
