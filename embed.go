package pubsite

import "embed"

// EmbeddedAssets holds the stylesheet of the default views, served at
// /public/pubsite.css.
//
//go:embed embedded/pubsite.css
var EmbeddedAssets embed.FS
